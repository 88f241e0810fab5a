package validation

import (
	"strings"

	"github.com/cybershield-id/registration-relay/pkg/types"
)

// rule binds a field to a validator tag and to the message shown for each
// failing tag. The "" key is the fallback message.
type rule struct {
	field    string
	tag      string
	messages map[string]string
	applies  func(types.FormProfile) bool
}

func always(types.FormProfile) bool { return true }

var rules = []rule{
	{
		field: types.FieldName,
		tag:   "min=2,max=100",
		messages: map[string]string{
			"":    "Nama minimal 2 karakter",
			"max": "Nama terlalu panjang",
		},
		applies: always,
	},
	{
		field: types.FieldEmail,
		tag:   "email,max=255",
		messages: map[string]string{
			"":    "Email tidak valid",
			"max": "Email terlalu panjang",
		},
		applies: always,
	},
	{
		field: types.FieldPhone,
		tag:   "min=10,max=15",
		messages: map[string]string{
			"":    "Nomor HP minimal 10 digit",
			"max": "Nomor HP terlalu panjang",
		},
		applies: always,
	},
	{
		field:    types.FieldEducation,
		tag:      "required,oneof=" + strings.Join(types.EducationLevels, " "),
		messages: map[string]string{"": "Pilih pendidikan terakhir"},
		applies:  always,
	},
	{
		field:    types.FieldExperience,
		tag:      "required,oneof=" + strings.Join(types.ExperienceLevels, " "),
		messages: map[string]string{"": "Pilih pengalaman IT"},
		applies:  always,
	},
	{
		field:    types.FieldPackage,
		tag:      "required,oneof=" + strings.Join(types.Packages, " "),
		messages: map[string]string{"": "Pilih paket bootcamp"},
		applies:  func(p types.FormProfile) bool { return p.RequirePackage },
	},
	{
		field: types.FieldMotivation,
		tag:   "min=10,max=1000",
		messages: map[string]string{
			"":    "Ceritakan motivasimu minimal 10 karakter",
			"max": "Motivasi terlalu panjang",
		},
		applies: func(p types.FormProfile) bool { return p.RequireMotivation },
	},
}

func ruleFor(field string) (rule, bool) {
	for _, r := range rules {
		if r.field == field {
			return r, true
		}
	}
	return rule{}, false
}

func (r rule) message(tag string) string {
	if msg, ok := r.messages[tag]; ok {
		return msg
	}
	return r.messages[""]
}
