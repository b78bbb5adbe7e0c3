package call

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"webdialer/internal/config"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// RestTransport places calls through the provider's REST API, bound to the
// same TwiML application the browser clients use, so the voice webhook decides
// how the leg is bridged. There is no media path here: mute and DTMF need an
// SDK transport and report ErrUnsupported.
type RestTransport struct {
	client *twilio.RestClient
	appSID string
	log    *slog.Logger

	identity string
}

func NewRestTransport(cfg config.TwilioConfig, log *slog.Logger) (*RestTransport, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("call: account SID and auth token are required")
	}
	if cfg.TwimlAppSID == "" {
		return nil, errors.New("call: TwiML app SID is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &RestTransport{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		appSID: cfg.TwimlAppSID,
		log:    log,
	}, nil
}

// Register is a no-op beyond remembering the identity: REST calls are
// authenticated per request, and inbound delivery to this identity requires an
// SDK transport anyway.
func (t *RestTransport) Register(_ context.Context, _, identity string) error {
	t.identity = identity
	t.log.Debug("rest transport registered", "identity", identity)
	return nil
}

func (t *RestTransport) Connect(_ context.Context, p ConnectParams, events CallEvents) (ActiveCall, error) {
	params := &openapi.CreateCallParams{}
	params.SetTo(p.To)
	params.SetFrom(p.CallerID)
	params.SetApplicationSid(t.appSID)

	resp, err := t.client.Api.CreateCall(params)
	if err != nil {
		return nil, fmt.Errorf("call: create: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	t.log.Info("outbound call created", "call_sid", sid, "to", p.To)

	// The REST API accepted the call; report establishment asynchronously so
	// the session observes connecting before connected.
	if events.Accepted != nil {
		go events.Accepted()
	}
	return &restCall{client: t.client, sid: sid}, nil
}

func (t *RestTransport) Release() error {
	t.identity = ""
	return nil
}

type restCall struct {
	client *twilio.RestClient
	sid    string
}

func (c *restCall) Mute(bool) error {
	return ErrUnsupported
}

func (c *restCall) SendDigits(string) error {
	return ErrUnsupported
}

func (c *restCall) Disconnect() error {
	params := &openapi.UpdateCallParams{}
	params.SetStatus("completed")
	if _, err := c.client.Api.UpdateCall(c.sid, params); err != nil {
		return fmt.Errorf("call: hangup: %w", err)
	}
	return nil
}
