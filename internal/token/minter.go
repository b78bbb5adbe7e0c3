package token

import (
	"errors"
	"fmt"
	"time"

	"webdialer/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Minter issues Twilio voice access tokens: short-lived JWTs carrying a
// "grants" claim that allows outbound dialing through the TwiML application
// and inbound delivery to a per-session client identity.
//
// The token format is provider-defined; only claim assembly happens here.
// Signing is HS256 with the API key secret.
type Minter struct {
	accountSID   string
	apiKeySID    string
	apiKeySecret []byte
	twimlAppSID  string
	ttl          time.Duration
}

func NewMinter(cfg config.TwilioConfig, ttl time.Duration) (*Minter, error) {
	var errs []error
	if cfg.AccountSID == "" {
		errs = append(errs, errors.New("account SID is required"))
	}
	if cfg.APIKeySID == "" {
		errs = append(errs, errors.New("API key SID is required"))
	}
	if cfg.APIKeySecret == "" {
		errs = append(errs, errors.New("API key secret is required"))
	}
	if cfg.TwimlAppSID == "" {
		errs = append(errs, errors.New("TwiML app SID is required"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("token: %w", errors.Join(errs...))
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Minter{
		accountSID:   cfg.AccountSID,
		apiKeySID:    cfg.APIKeySID,
		apiKeySecret: []byte(cfg.APIKeySecret),
		twimlAppSID:  cfg.TwimlAppSID,
		ttl:          ttl,
	}, nil
}

// Token is a minted credential plus the identity it was bound to.
type Token struct {
	JWT       string
	Identity  string
	ExpiresAt time.Time
}

// Grants is the provider-defined capability claim.
type Grants struct {
	Identity string     `json:"identity"`
	Voice    VoiceGrant `json:"voice"`
}

type VoiceGrant struct {
	Outgoing OutgoingGrant `json:"outgoing"`
	Incoming IncomingGrant `json:"incoming"`
}

type OutgoingGrant struct {
	ApplicationSID string `json:"application_sid"`
}

type IncomingGrant struct {
	Allow bool `json:"allow"`
}

// Claims is the full access-token claim set.
type Claims struct {
	jwt.RegisteredClaims

	Grants Grants `json:"grants"`
}

// Mint issues a token for a fresh random identity.
// Identities are random 128-bit values, so concurrent sessions never collide.
func (m *Minter) Mint(now time.Time) (Token, error) {
	identity := "user_" + uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", m.apiKeySID, now.Unix()),
			Issuer:    m.apiKeySID,
			Subject:   m.accountSID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Grants: Grants{
			Identity: identity,
			Voice: VoiceGrant{
				Outgoing: OutgoingGrant{ApplicationSID: m.twimlAppSID},
				Incoming: IncomingGrant{Allow: true},
			},
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// Content-type header required by the provider's token format.
	t.Header["cty"] = "twilio-fat;v=1"

	signed, err := t.SignedString(m.apiKeySecret)
	if err != nil {
		return Token{}, fmt.Errorf("token: sign: %w", err)
	}
	return Token{JWT: signed, Identity: identity, ExpiresAt: now.Add(m.ttl)}, nil
}
