package handlers

import (
	"errors"
	"net/http"

	"github.com/coneno/logger"
	"github.com/cybershield-id/registration-relay/pkg/artifact"
	mw "github.com/cybershield-id/registration-relay/pkg/http/middlewares"
	"github.com/cybershield-id/registration-relay/pkg/submission"
	"github.com/cybershield-id/registration-relay/pkg/types"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddRegistrationAPI(rg *gin.RouterGroup) {
	g := rg.Group("/registration")
	g.Use(mw.HasAllowedReferer(h.allowedReferers))
	{
		g.POST("/:variant", mw.RequirePayload(), mw.LimitPayload(maxPayloadBytes), h.registerParticipant)
	}
}

// registerParticipant runs a whole form session in one request: JSON for
// the package variant, multipart with a paymentProof file for the other.
func (h *HttpEndpoints) registerParticipant(c *gin.Context) {
	s, err := h.store.Transient(types.Variant(c.Param("variant")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req types.RawFields
	if err := c.ShouldBind(&req); err != nil {
		writeRequestError(c, err)
		return
	}
	if err := s.SetFields(req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if isMultipart(c) {
		fh, err := c.FormFile(types.FieldPaymentProof)
		switch {
		case errors.Is(err, http.ErrMissingFile):
			// reported by Submit when the variant needs one
		case err != nil:
			writeRequestError(c, err)
			return
		default:
			err = s.Attach(artifact.FromFileHeader(fh))
			if errors.Is(err, submission.ErrNoPaymentProof) {
				logger.Debug.Printf("ignoring payment proof sent for variant %s", s.Profile().Variant)
			} else if err != nil {
				if !writeAttachError(c, err) {
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				}
				return
			}
		}
	}

	submitAndRespond(c, s)
}
