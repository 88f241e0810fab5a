package types

// Variant selects which registration flow a form instance follows.
type Variant string

const (
	VariantPackage      Variant = "package"       // package + motivation, no payment proof
	VariantPaymentProof Variant = "payment-proof" // payment proof, no package or motivation
)

// Field names as they appear in inbound forms and in the relayed payload.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldEducation    = "education"
	FieldExperience   = "experience"
	FieldPackage      = "package"
	FieldMotivation   = "motivation"
	FieldPaymentProof = "paymentProof"
)

var (
	EducationLevels  = []string{"sma", "d3", "s1", "s2", "other"}
	ExperienceLevels = []string{"none", "less-1", "1-3", "3-5", "more-5"}
	Packages         = []string{"self-paced", "full", "enterprise"}
)

// FormProfile parameterises the single submission pipeline shared by both variants.
type FormProfile struct {
	Variant             Variant `json:"variant"`
	RequirePackage      bool    `json:"requirePackage"`
	RequireMotivation   bool    `json:"requireMotivation"`
	RequirePaymentProof bool    `json:"requirePaymentProof"`
}

// ProfileFor returns the profile of a known variant.
func ProfileFor(v Variant) (FormProfile, bool) {
	switch v {
	case VariantPackage:
		return FormProfile{Variant: v, RequirePackage: true, RequireMotivation: true}, true
	case VariantPaymentProof:
		return FormProfile{Variant: v, RequirePaymentProof: true}, true
	default:
		return FormProfile{}, false
	}
}

// RawFields holds field values exactly as typed by the user.
type RawFields struct {
	Name       string `form:"name" json:"name"`
	Email      string `form:"email" json:"email"`
	Phone      string `form:"phone" json:"phone"`
	Education  string `form:"education" json:"education"`
	Experience string `form:"experience" json:"experience"`
	Package    string `form:"package" json:"package"`
	Motivation string `form:"motivation" json:"motivation"`
}

// Get returns the value of the named field.
func (r RawFields) Get(field string) (string, bool) {
	switch field {
	case FieldName:
		return r.Name, true
	case FieldEmail:
		return r.Email, true
	case FieldPhone:
		return r.Phone, true
	case FieldEducation:
		return r.Education, true
	case FieldExperience:
		return r.Experience, true
	case FieldPackage:
		return r.Package, true
	case FieldMotivation:
		return r.Motivation, true
	}
	return "", false
}

// Set updates the named field. It reports false for unknown names.
func (r *RawFields) Set(field, value string) bool {
	switch field {
	case FieldName:
		r.Name = value
	case FieldEmail:
		r.Email = value
	case FieldPhone:
		r.Phone = value
	case FieldEducation:
		r.Education = value
	case FieldExperience:
		r.Experience = value
	case FieldPackage:
		r.Package = value
	case FieldMotivation:
		r.Motivation = value
	default:
		return false
	}
	return true
}

// RegistrationSubmission is a validated registration. Package and Motivation
// are set for VariantPackage only, PaymentProof for VariantPaymentProof only.
type RegistrationSubmission struct {
	Name         string
	Email        string
	Phone        string
	Education    string
	Experience   string
	Package      string
	Motivation   string
	PaymentProof *EncodedArtifact
}

type EncodedArtifact struct {
	Filename    string
	MimeType    string
	SizeBytes   uint64
	EncodedBody string
}
