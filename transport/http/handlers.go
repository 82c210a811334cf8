package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/service"
	"go.uber.org/zap"
)

// sessionCookieName is the HTTP-only session credential cookie.
const sessionCookieName = "auth_token"

// sessionCookieMaxAge matches the session token TTL.
const sessionCookieMaxAge = int(service.DefaultSessionTTL / time.Second)

// Handlers contains the HTTP handlers for the mint-gating pipeline.
type Handlers struct {
	auth       *service.AuthService
	milestones *service.MilestoneService
	mints      *service.MintService
	logger     *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(auth *service.AuthService, milestones *service.MilestoneService, mints *service.MintService, logger *zap.Logger) *Handlers {
	return &Handlers{
		auth:       auth,
		milestones: milestones,
		mints:      mints,
		logger:     logger,
	}
}

// Challenge issues a fresh nonce bound to a session.
func (h *Handlers) Challenge(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-Id")

	challenge, err := h.auth.Challenge(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to issue challenge", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.Header("X-Session-Id", challenge.SessionID)
	c.JSON(http.StatusOK, gin.H{
		"nonce":            challenge.Nonce,
		"sessionId":        challenge.SessionID,
		"expiresInSeconds": challenge.ExpiresIn,
	})
}

// Verify validates a signed sign-in message and establishes a session.
func (h *Handlers) Verify(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Address   string `json:"address" binding:"required"`
		SessionID string `json:"sessionId"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields: message, signature, and address"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.GetHeader("X-Session-Id")
	}

	identity, err := h.auth.Verify(c.Request.Context(), req.Message, req.Signature, req.Address, sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		reason := "Verification failed"

		switch {
		case errors.Is(err, core.ErrMalformedMessage):
			status = http.StatusBadRequest
			reason = "Malformed sign-in message"
		case errors.Is(err, core.ErrInvalidOrExpiredNonce):
			status = http.StatusBadRequest
			reason = "Invalid or expired nonce"
		case errors.Is(err, core.ErrInvalidSignature):
			status = http.StatusUnauthorized
			reason = "Invalid signature"
		case errors.Is(err, core.ErrDomainMismatch):
			status = http.StatusUnauthorized
			reason = "Sign-in domain mismatch"
		}

		c.JSON(status, gin.H{"success": false, "error": reason})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookieName, identity.SessionToken, sessionCookieMaxAge, "/", "", true, true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"identity": gin.H{
			"address":        identity.Address,
			"verified":       true,
			"session_expiry": identity.SessionExpiry,
		},
		"token": identity.SessionToken,
	})
}

// Me returns the authenticated identity.
func (h *Handlers) Me(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":        identity.Address,
		"verified_at":    identity.VerifiedAt,
		"session_expiry": identity.SessionExpiry,
	})
}

// Milestones evaluates the account's social metrics against the declared
// milestone set.
func (h *Handlers) Milestones(c *gin.Context) {
	accountID := c.Param("accountId")

	verdict, err := h.milestones.Evaluate(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrSnapshotUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Social metrics unavailable, retry later"})
			return
		}
		h.logger.Error("milestone evaluation failed", zap.String("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Evaluation failed"})
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// Mint requests an idempotent mint for an achieved milestone.
func (h *Handlers) Mint(c *gin.Context) {
	var req struct {
		AccountID   string `json:"accountId" binding:"required"`
		MilestoneID string `json:"milestoneId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: accountId and milestoneId"})
		return
	}

	identity := identityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	milestone, ok := h.milestones.Set().Lookup(req.MilestoneID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown milestone"})
		return
	}

	verdict, err := h.milestones.Evaluate(c.Request.Context(), req.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrSnapshotUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Social metrics unavailable, retry later"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Evaluation failed"})
		return
	}

	record, err := h.mints.RequestMint(c.Request.Context(), identity, verdict, milestone)
	h.respondMint(c, record, err)
}

// Airdrop submits a batch transfer on behalf of the authenticated identity.
func (h *Handlers) Airdrop(c *gin.Context) {
	var req struct {
		RequestID  string   `json:"requestId"`
		Recipients []string `json:"recipients" binding:"required"`
		Amounts    []string `json:"amounts" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: recipients and amounts"})
		return
	}

	identity := identityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.mints.RequestAirdrop(c.Request.Context(), identity, req.RequestID, req.Recipients, req.Amounts)
	h.respondMint(c, record, err)
}

// MintStatus returns the ledger record for a (recipient, milestone) pair so
// retries are traceable.
func (h *Handlers) MintStatus(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.mints.Status(c.Request.Context(), identity.Address, c.Param("milestoneId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No mint request for this milestone"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handlers) respondMint(c *gin.Context, record *core.MintRecord, err error) {
	if err == nil {
		c.JSON(http.StatusOK, record)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrMilestoneNotMet):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrMintInFlight):
		status = http.StatusConflict
	case errors.Is(err, core.ErrConfirmationTimeout):
		// The transaction may still confirm; the record says so.
		status = http.StatusAccepted
	case errors.Is(err, core.ErrReverted), errors.Is(err, core.ErrSubmissionFailed):
		status = http.StatusBadGateway
	}

	body := gin.H{"error": err.Error()}
	if record != nil {
		body["record"] = record
		body["idempotency_key"] = record.Key
	}
	c.JSON(status, body)
}
