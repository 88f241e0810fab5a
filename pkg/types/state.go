package types

type StateKind string

const (
	StateIdle       StateKind = "idle"
	StateValidating StateKind = "validating"
	StateSubmitting StateKind = "submitting"
	StateSucceeded  StateKind = "succeeded"
	StateFailed     StateKind = "failed"
)

// SubmissionState drives what a client shows for a form instance. Reason is
// only set for StateFailed.
type SubmissionState struct {
	Kind   StateKind `json:"kind"`
	Reason string    `json:"reason,omitempty"`
}

func (s SubmissionState) IsTerminal() bool {
	return s.Kind == StateSucceeded
}

// InProgress reports whether a submit is currently running.
func (s SubmissionState) InProgress() bool {
	return s.Kind == StateValidating || s.Kind == StateSubmitting
}
