package handlers

import (
	"github.com/cybershield-id/registration-relay/pkg/artifact"
	"github.com/cybershield-id/registration-relay/pkg/submission"
)

// room for the form fields and multipart framing around the payment proof
const maxPayloadBytes = artifact.MaxSizeBytes + 1<<20

type HttpEndpoints struct {
	store           *submission.Store
	allowedReferers []string
}

func NewHTTPHandler(
	store *submission.Store,
	allowedReferers []string,
) *HttpEndpoints {
	return &HttpEndpoints{
		store:           store,
		allowedReferers: allowedReferers,
	}
}
