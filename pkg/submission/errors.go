package submission

import (
	"errors"

	"github.com/cybershield-id/registration-relay/pkg/validation"
)

var (
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrSessionClosed      = errors.New("registration already submitted")
	ErrUnknownField       = errors.New("unknown field")
	ErrNoPaymentProof     = errors.New("form does not take a payment proof")
)

// GenericFailureMessage is shown for any encoding or dispatch failure.
const GenericFailureMessage = "Terjadi kesalahan. Silakan coba lagi."

const missingArtifactMessage = "Bukti pembayaran wajib diunggah"

type ErrorKind string

const (
	KindFieldValidation ErrorKind = "field_validation"
	KindMissingArtifact ErrorKind = "missing_artifact"
	KindEncoding        ErrorKind = "encoding_failure"
	KindDispatch        ErrorKind = "dispatch_failure"
)

// SubmitError is returned by Session.Submit. Fields is set for the two
// validation kinds and holds every invalid field, payment proof included.
type SubmitError struct {
	Kind   ErrorKind
	Fields validation.Errors
	Err    error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Recoverable reports whether the user only has to fix the form.
func (e *SubmitError) Recoverable() bool {
	return e.Kind == KindFieldValidation || e.Kind == KindMissingArtifact
}
