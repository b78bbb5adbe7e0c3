package main

import (
	"webdialer/internal/numbers"
	"webdialer/internal/token"
	"webdialer/internal/voice"
	"webdialer/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// apiDeps groups the wired handlers for route registration.
type apiDeps struct {
	Token   token.Handler
	Numbers numbers.Handler
	Voice   voice.WebhookHandler

	// VoiceSignature guards the webhook when signature validation is on.
	VoiceSignature gin.HandlerFunc

	rdb *redis.Client
}

func (d apiDeps) close() {
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps apiDeps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// Browser-facing endpoints. They are intentionally unauthenticated: the
	// minted token is itself the credential the browser hands to the provider.
	r.POST("/token", deps.Token.IssueToken)
	r.GET("/numbers", deps.Numbers.ListNumbers)

	// Provider webhook.
	if deps.VoiceSignature != nil {
		r.POST("/voice", deps.VoiceSignature, deps.Voice.HandleVoice)
	} else {
		r.POST("/voice", deps.Voice.HandleVoice)
	}
}
