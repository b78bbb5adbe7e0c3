package token

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTokenRouter(h Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/token", h.IssueToken)
	return r
}

func TestIssueToken_MissingCredentialsIs500(t *testing.T) {
	r := newTokenRouter(Handler{Minter: nil})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected json error body: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("expected error message")
	}
	if body["token"] != "" {
		t.Fatalf("expected no token in error response")
	}
}

func TestIssueToken_ReturnsTokenAndIdentity(t *testing.T) {
	m, err := NewMinter(testTwilioConfig(), time.Hour)
	if err != nil {
		t.Fatalf("expected minter, got %v", err)
	}
	r := newTokenRouter(Handler{Minter: m})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected json body: %v", err)
	}
	if body["token"] == "" {
		t.Fatalf("expected token in response")
	}
	if body["identity"] == "" {
		t.Fatalf("expected identity in response")
	}
}
