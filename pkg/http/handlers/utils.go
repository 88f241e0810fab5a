package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/coneno/logger"
	"github.com/cybershield-id/registration-relay/pkg/artifact"
	"github.com/cybershield-id/registration-relay/pkg/submission"
	"github.com/gin-gonic/gin"
)

const successMessage = "Tim kami akan menghubungimu dalam 1x24 jam."

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// writeRequestError reports a body that could not be read or bound. Bodies
// cut off by LimitPayload get the same 413 as an oversize Content-Length.
func writeRequestError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func submitAndRespond(c *gin.Context, s *submission.Session) bool {
	outcome, err := s.Submit(c.Request.Context())
	if err != nil {
		writeSubmitError(c, s, err)
		return false
	}
	c.JSON(http.StatusOK, gin.H{
		"msg":       successMessage,
		"sessionID": s.ID,
		"state":     outcome.State,
		// opaque: the request was sent, delivery is not confirmed
		"opaque": outcome.Attempt.Opaque,
	})
	return true
}

func writeSubmitError(c *gin.Context, s *submission.Session, err error) {
	var serr *submission.SubmitError
	switch {
	case errors.Is(err, submission.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, submission.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.As(err, &serr) && serr.Recoverable():
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid registration",
			"kind":   serr.Kind,
			"fields": serr.Fields,
		})
	case errors.As(err, &serr):
		logger.Warning.Printf("session %s: submission failed: %s", s.ID, serr.Kind)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": submission.GenericFailureMessage,
			"kind":  serr.Kind,
			"state": s.State(),
		})
	default:
		logger.Error.Printf("session %s: unexpected submit error: %v", s.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": submission.GenericFailureMessage})
	}
}

// writeAttachError reports a rejected payment proof. It returns false when
// err is not an attachment problem.
func writeAttachError(c *gin.Context, err error) bool {
	var ce *artifact.ConstraintError
	switch {
	case errors.As(err, &ce):
		c.JSON(http.StatusBadRequest, gin.H{"error": ce.Message, "constraint": ce.Constraint})
	case errors.Is(err, submission.ErrNoPaymentProof):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, submission.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		return false
	}
	return true
}
