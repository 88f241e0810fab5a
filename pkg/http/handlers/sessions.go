package handlers

import (
	"errors"
	"net/http"

	"github.com/cybershield-id/registration-relay/pkg/artifact"
	mw "github.com/cybershield-id/registration-relay/pkg/http/middlewares"
	"github.com/cybershield-id/registration-relay/pkg/submission"
	"github.com/cybershield-id/registration-relay/pkg/types"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddSessionAPI(rg *gin.RouterGroup) {
	g := rg.Group("/sessions")
	g.Use(mw.HasAllowedReferer(h.allowedReferers))
	{
		g.POST("", mw.RequirePayload(), h.createSession)
	}

	sg := g.Group("/:sessionID")
	sg.Use(mw.HasValidSessionID())
	{
		sg.GET("", h.getSession)
		sg.DELETE("", h.abandonSession)
		sg.PUT("/fields/:field", mw.RequirePayload(), h.setSessionField)
		sg.PUT("/payment-proof", mw.RequirePayload(), mw.LimitPayload(maxPayloadBytes), h.attachPaymentProof)
		sg.DELETE("/payment-proof", h.removePaymentProof)
		sg.POST("/submit", h.submitSession)
	}
}

type CreateSessionReq struct {
	Variant types.Variant `json:"variant" binding:"required"`
}

type SetFieldReq struct {
	Value string `json:"value"`
}

func (h *HttpEndpoints) createSession(c *gin.Context) {
	var req CreateSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeRequestError(c, err)
		return
	}
	s, err := h.store.Create(req.Variant)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"sessionID": s.ID,
		"profile":   s.Profile(),
		"state":     s.State(),
	})
}

func (h *HttpEndpoints) getSession(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}
	resp := gin.H{
		"sessionID": s.ID,
		"profile":   s.Profile(),
		"state":     s.State(),
		"fields":    s.Fields(),
	}
	if info, ok := s.Attachment(); ok {
		resp["paymentProof"] = info
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HttpEndpoints) abandonSession(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}
	h.store.Delete(s.ID)
	c.JSON(http.StatusOK, gin.H{"msg": "session closed"})
}

func (h *HttpEndpoints) setSessionField(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req SetFieldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeRequestError(c, err)
		return
	}

	field := c.Param("field")
	msg, err := s.SetField(field, req.Value)
	switch {
	case errors.Is(err, submission.ErrUnknownField):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, submission.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"field": field}
	if msg != "" {
		resp["error"] = msg
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HttpEndpoints) attachPaymentProof(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}
	fh, err := c.FormFile(types.FieldPaymentProof)
	if err != nil {
		writeRequestError(c, err)
		return
	}

	candidate := artifact.FromFileHeader(fh)
	if err := artifact.CheckFile(candidate); err != nil {
		writeAttachError(c, err)
		return
	}

	// the upload is removed once this request ends, keep the bytes
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	buffered, err := artifact.Buffered(candidate.Name, candidate.MediaType, f, artifact.MaxSizeBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.Attach(buffered); err != nil {
		if !writeAttachError(c, err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	info, _ := s.Attachment()
	c.JSON(http.StatusOK, gin.H{"paymentProof": info})
}

func (h *HttpEndpoints) removePaymentProof(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}
	s.RemoveAttachment()
	c.JSON(http.StatusOK, gin.H{"msg": "payment proof removed"})
}

func (h *HttpEndpoints) submitSession(c *gin.Context) {
	s, ok := h.loadSession(c)
	if !ok {
		return
	}
	if submitAndRespond(c, s) {
		h.store.Delete(s.ID)
	}
}

func (h *HttpEndpoints) loadSession(c *gin.Context) (*submission.Session, bool) {
	s, ok := h.store.Get(c.Param("sessionID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}
