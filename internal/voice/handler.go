package voice

import (
	"net/http"

	"webdialer/pkg/logger"
	"webdialer/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// WebhookHandler converts the voice webhook form into a dial plan and writes
// TwiML. No business state lives here; every request is decided on its own.
type WebhookHandler struct {
	// Greeting overrides the spoken fallback; empty means DefaultGreeting.
	Greeting string
}

func (h WebhookHandler) HandleVoice(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseInboundCall(c.Request)
	if err != nil {
		log.Warn("voice webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	plan := PlanCall(form.To, form.CallerID)
	metrics.VoiceDecisions.WithLabelValues(string(plan.Action)).Inc()

	twiml, err := RenderTwiML(plan, h.Greeting)
	if err != nil {
		log.Error("twiml render failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}

	log.Debug("voice webhook answered",
		"call_sid", form.CallSid,
		"plan", string(plan.Action),
	)
	c.Data(http.StatusOK, "text/xml", []byte(twiml))
}
