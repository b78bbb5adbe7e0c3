package numbers

import (
	"net/http"

	"webdialer/pkg/logger"
	"webdialer/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Handler serves GET /numbers.
//
// Error policy: the client always sees a generic message; the provider's raw
// error text goes to the server log only, so account details never leak.
type Handler struct {
	Lister Lister
}

func (h Handler) ListNumbers(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Lister == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "number service not configured"})
		return
	}

	nums, err := h.Lister.List(c.Request.Context(), DefaultLimit)
	if err != nil {
		metrics.NumberListings.WithLabelValues("error").Inc()
		log.Error("number listing failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "number listing failed"})
		return
	}

	if nums == nil {
		nums = []PhoneNumber{}
	}
	c.JSON(http.StatusOK, nums)
}
