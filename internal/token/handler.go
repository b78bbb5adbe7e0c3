package token

import (
	"net/http"
	"time"

	"webdialer/pkg/logger"
	"webdialer/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Handler serves POST /token.
//
// A nil Minter means the process booted without provider credentials; that is
// a server-configuration error, reported before any signing is attempted.
type Handler struct {
	Minter *Minter

	Now func() time.Time
}

func (h Handler) IssueToken(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Minter == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token service not configured"})
		return
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	tok, err := h.Minter.Mint(now())
	if err != nil {
		log.Error("token mint failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	metrics.TokensIssued.Inc()
	log.Debug("token issued", "identity", tok.Identity, "expires_at", tok.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"token": tok.JWT, "identity": tok.Identity})
}
