package dispatch

import "github.com/cybershield-id/registration-relay/pkg/types"

// Payload is the JSON body relayed to the remote form endpoint. Package and
// motivation travel with the package variant, the payment proof fields with
// the payment-proof variant.
type Payload struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Education          string `json:"education"`
	Experience         string `json:"experience"`
	Package            string `json:"package,omitempty"`
	Motivation         string `json:"motivation,omitempty"`
	PaymentProofName   string `json:"paymentProofName,omitempty"`
	PaymentProofType   string `json:"paymentProofType,omitempty"`
	PaymentProofBase64 string `json:"paymentProofBase64,omitempty"`
}

func NewPayload(sub types.RegistrationSubmission) Payload {
	p := Payload{
		Name:       sub.Name,
		Email:      sub.Email,
		Phone:      sub.Phone,
		Education:  sub.Education,
		Experience: sub.Experience,
		Package:    sub.Package,
		Motivation: sub.Motivation,
	}
	if sub.PaymentProof != nil {
		p.PaymentProofName = sub.PaymentProof.Filename
		p.PaymentProofType = sub.PaymentProof.MimeType
		p.PaymentProofBase64 = sub.PaymentProof.EncodedBody
	}
	return p
}
