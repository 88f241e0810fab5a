package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coneno/logger"
	"github.com/cybershield-id/registration-relay/pkg/artifact"
	"github.com/cybershield-id/registration-relay/pkg/dispatch"
	"github.com/cybershield-id/registration-relay/pkg/types"
	"github.com/cybershield-id/registration-relay/pkg/validation"
	"golang.org/x/sync/semaphore"
)

// Outcome describes a submit that reached the dispatch step.
type Outcome struct {
	State   types.SubmissionState
	Attempt dispatch.Attempt
}

// AttachmentInfo summarises the attached payment proof without its content.
type AttachmentInfo struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Size      int64  `json:"size"`
}

// Session is one form instance: the field values being edited, the attached
// payment proof and the submission state. At most one Submit runs at a time.
type Session struct {
	ID string

	profile    types.FormProfile
	validator  *validation.Validator
	dispatcher dispatch.Dispatcher
	inFlight   *semaphore.Weighted

	mu         sync.Mutex
	fields     types.RawFields
	attachment *artifact.File
	state      types.SubmissionState
	lastSeen   time.Time
}

func NewSession(id string, profile types.FormProfile, v *validation.Validator, d dispatch.Dispatcher) *Session {
	return &Session{
		ID:         id,
		profile:    profile,
		validator:  v,
		dispatcher: d,
		inFlight:   semaphore.NewWeighted(1),
		state:      types.SubmissionState{Kind: types.StateIdle},
		lastSeen:   time.Now(),
	}
}

func (s *Session) Profile() types.FormProfile {
	return s.profile
}

func (s *Session) State() types.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Fields() types.RawFields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields
}

// SetField stores a value as typed and returns the live message for it, ""
// when the value is acceptable.
func (s *Session) SetField(field, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsTerminal() {
		return "", ErrSessionClosed
	}
	if !s.fields.Set(field, value) {
		return "", ErrUnknownField
	}
	s.touch()
	return s.validator.ValidateField(s.profile, field, value), nil
}

// SetFields replaces all field values at once.
func (s *Session) SetFields(raw types.RawFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsTerminal() {
		return ErrSessionClosed
	}
	s.fields = raw
	s.touch()
	return nil
}

// Attach replaces the payment proof if f passes the file constraints. A
// rejected file leaves the previous attachment in place.
func (s *Session) Attach(f artifact.File) error {
	if !s.profile.RequirePaymentProof {
		return ErrNoPaymentProof
	}
	if err := artifact.CheckFile(f); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsTerminal() {
		return ErrSessionClosed
	}
	s.attachment = &f
	s.touch()
	return nil
}

func (s *Session) RemoveAttachment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachment = nil
	s.touch()
}

func (s *Session) Attachment() (AttachmentInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attachment == nil {
		return AttachmentInfo{}, false
	}
	return AttachmentInfo{
		Name:      s.attachment.Name,
		MediaType: s.attachment.MediaType,
		Size:      s.attachment.Size,
	}, true
}

// Submit validates the form, encodes the payment proof and dispatches the
// payload once. It returns ErrSubmissionInFlight while another Submit on the
// same session is running and ErrSessionClosed after a success.
func (s *Session) Submit(ctx context.Context) (Outcome, error) {
	if !s.inFlight.TryAcquire(1) {
		return Outcome{}, ErrSubmissionInFlight
	}
	defer s.inFlight.Release(1)

	s.mu.Lock()
	if s.state.IsTerminal() {
		s.mu.Unlock()
		return Outcome{}, ErrSessionClosed
	}
	s.state = types.SubmissionState{Kind: types.StateValidating}
	raw := s.fields
	var file *artifact.File
	if s.attachment != nil {
		f := *s.attachment
		file = &f
	}
	s.touch()
	s.mu.Unlock()

	sub, err := s.validate(raw, file)
	if err != nil {
		s.setState(types.SubmissionState{Kind: types.StateIdle})
		return Outcome{State: s.State()}, err
	}

	s.setState(types.SubmissionState{Kind: types.StateSubmitting})

	if file != nil {
		encoded, err := artifact.Encode(*file)
		if err != nil {
			logger.Error.Printf("session %s: %v", s.ID, err)
			return s.fail(&SubmitError{Kind: KindEncoding, Err: err})
		}
		sub.PaymentProof = &encoded
	}

	attempt, err := s.dispatcher.Dispatch(ctx, dispatch.NewPayload(sub))
	// the encoded body is not kept past the attempt
	sub.PaymentProof = nil
	if err != nil {
		logger.Error.Printf("session %s: %v", s.ID, err)
		return s.fail(&SubmitError{Kind: KindDispatch, Err: err})
	}

	s.mu.Lock()
	s.state = types.SubmissionState{Kind: types.StateSucceeded}
	s.fields = types.RawFields{}
	s.attachment = nil
	state := s.state
	s.mu.Unlock()

	logger.Info.Printf("session %s: registration (%s) dispatched", s.ID, s.profile.Variant)
	return Outcome{State: state, Attempt: attempt}, nil
}

func (s *Session) validate(raw types.RawFields, file *artifact.File) (types.RegistrationSubmission, error) {
	sub, err := s.validator.Validate(s.profile, raw)

	fieldErrs := validation.Errors{}
	if err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			return sub, err
		}
		for field, msg := range verrs {
			fieldErrs[field] = msg
		}
	}

	missingArtifact := s.profile.RequirePaymentProof && file == nil
	if missingArtifact {
		fieldErrs[types.FieldPaymentProof] = missingArtifactMessage
	}

	if len(fieldErrs) == 0 {
		return sub, nil
	}
	kind := KindFieldValidation
	if missingArtifact && len(fieldErrs) == 1 {
		kind = KindMissingArtifact
	}
	return types.RegistrationSubmission{}, &SubmitError{Kind: kind, Fields: fieldErrs}
}

func (s *Session) fail(err *SubmitError) (Outcome, error) {
	state := types.SubmissionState{Kind: types.StateFailed, Reason: GenericFailureMessage}
	s.setState(state)
	return Outcome{State: state}, err
}

func (s *Session) setState(state types.SubmissionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// touch must be called with mu held.
func (s *Session) touch() {
	s.lastSeen = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
