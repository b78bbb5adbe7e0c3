package voice

import (
	"net/http"

	"webdialer/pkg/logger"

	"github.com/gin-gonic/gin"
	twclient "github.com/twilio/twilio-go/client"
)

const headerSignature = "X-Twilio-Signature"

// RequireSignature verifies the X-Twilio-Signature header against the account
// auth token before the webhook handler runs. Requests that fail verification
// are rejected with 403.
func RequireSignature(authToken string) gin.HandlerFunc {
	validator := twclient.NewRequestValidator(authToken)
	return func(c *gin.Context) {
		log := logger.FromGin(c)

		sig := c.GetHeader(headerSignature)
		if sig == "" {
			log.Warn("voice webhook missing signature")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "signature required"})
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
			return
		}

		params := make(map[string]string, len(c.Request.PostForm))
		for k, vals := range c.Request.PostForm {
			if len(vals) > 0 {
				params[k] = vals[0]
			}
		}

		if !validator.Validate(requestURL(c.Request), params, sig) {
			log.Warn("voice webhook signature mismatch")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}

// requestURL reconstructs the URL the provider signed, honoring proxy headers.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	host := r.Host
	if h := r.Header.Get("X-Forwarded-Host"); h != "" {
		host = h
	}
	return scheme + "://" + host + r.URL.RequestURI()
}
