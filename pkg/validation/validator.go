package validation

import (
	"errors"
	"strings"

	"github.com/cybershield-id/registration-relay/pkg/types"
	"github.com/go-playground/validator/v10"
)

// Validator evaluates the registration rule table. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks every field that applies to the profile and reports all
// violations together. Rules apply to the trimmed values as typed. On
// success it returns the typed submission, with free text escaped for relay.
func (v *Validator) Validate(profile types.FormProfile, raw types.RawFields) (types.RegistrationSubmission, error) {
	clean := normalize(raw)

	errs := Errors{}
	for _, r := range rules {
		if !r.applies(profile) {
			continue
		}
		value, _ := clean.Get(r.field)
		if msg := v.check(r, value); msg != "" {
			errs[r.field] = msg
		}
	}
	if len(errs) > 0 {
		return types.RegistrationSubmission{}, errs
	}

	sub := types.RegistrationSubmission{
		Name:       sanitizeText(clean.Name),
		Email:      clean.Email,
		Phone:      clean.Phone,
		Education:  clean.Education,
		Experience: clean.Experience,
	}
	if profile.RequirePackage {
		sub.Package = clean.Package
	}
	if profile.RequireMotivation {
		sub.Motivation = sanitizeText(clean.Motivation)
	}
	return sub, nil
}

// ValidateField returns the message for a single field value, or "" if the
// value is acceptable or the field does not belong to the profile.
func (v *Validator) ValidateField(profile types.FormProfile, field, value string) string {
	r, ok := ruleFor(field)
	if !ok || !r.applies(profile) {
		return ""
	}
	var single types.RawFields
	single.Set(field, value)
	value, _ = normalize(single).Get(field)
	return v.check(r, value)
}

func (v *Validator) check(r rule, value string) string {
	err := v.validate.Var(value, r.tag)
	if err == nil {
		return ""
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return r.message(fieldErrs[0].Tag())
	}
	return r.message("")
}

func normalize(raw types.RawFields) types.RawFields {
	return types.RawFields{
		Name:       strings.TrimSpace(raw.Name),
		Email:      strings.TrimSpace(raw.Email),
		Phone:      strings.TrimSpace(raw.Phone),
		Education:  strings.TrimSpace(raw.Education),
		Experience: strings.TrimSpace(raw.Experience),
		Package:    strings.TrimSpace(raw.Package),
		Motivation: strings.TrimSpace(raw.Motivation),
	}
}
