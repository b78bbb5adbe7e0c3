package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TokensIssued counts successfully minted access tokens.
	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "webdialer",
		Name:      "tokens_issued_total",
		Help:      "Access tokens minted for browser clients",
	})

	// NumberListings counts provisioned-number listings by source.
	NumberListings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webdialer",
		Name:      "number_listings_total",
		Help:      "Number listing requests by result source",
	}, []string{"source"}) // provider, cache, error

	// VoiceDecisions counts voice webhook outcomes by dial plan.
	VoiceDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webdialer",
		Name:      "voice_decisions_total",
		Help:      "Voice webhook dial-plan decisions",
	}, []string{"plan"}) // number, client, greeting
)

// Handler exposes the default registry for GET /metrics.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
