package numbers

import (
	"context"
	"errors"
	"fmt"

	"webdialer/internal/config"
	"webdialer/pkg/metrics"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioLister lists incoming phone numbers through the Twilio REST API.
type TwilioLister struct {
	client *twilio.RestClient
}

func NewTwilioLister(cfg config.TwilioConfig) (*TwilioLister, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("numbers: account SID and auth token are required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioLister{client: client}, nil
}

// List fetches up to limit provisioned numbers.
// The SDK does not take a context; ctx is accepted for interface symmetry.
func (l *TwilioLister) List(_ context.Context, limit int) ([]PhoneNumber, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	params := &openapi.ListIncomingPhoneNumberParams{}
	params.SetLimit(limit)

	recs, err := l.client.Api.ListIncomingPhoneNumber(params)
	if err != nil {
		return nil, fmt.Errorf("numbers: provider listing: %w", err)
	}

	out := make([]PhoneNumber, 0, len(recs))
	for _, rec := range recs {
		out = append(out, PhoneNumber{
			FriendlyName: deref(rec.FriendlyName),
			PhoneNumber:  deref(rec.PhoneNumber),
		})
	}
	metrics.NumberListings.WithLabelValues("provider").Inc()
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
