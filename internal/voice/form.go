package voice

import (
	"net/http"
	"strings"
)

// InboundForm captures the subset of voice webhook fields we care about.
// Twilio sends application/x-www-form-urlencoded by default.
// Ref: https://www.twilio.com/docs/voice/twiml
//
// Keep it minimal and provider-adapter-only.
// The dial-plan decision is not made here.

type InboundForm struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	CallerID   string
	Direction  string
	CallStatus string
}

func ParseInboundCall(r *http.Request) (InboundForm, error) {
	if err := r.ParseForm(); err != nil {
		return InboundForm{}, err
	}
	f := InboundForm{
		CallSid:    r.PostFormValue("CallSid"),
		AccountSid: r.PostFormValue("AccountSid"),
		From:       strings.TrimSpace(r.PostFormValue("From")),
		To:         strings.TrimSpace(r.PostFormValue("To")),
		CallerID:   strings.TrimSpace(r.PostFormValue("callerId")),
		Direction:  r.PostFormValue("Direction"),
		CallStatus: r.PostFormValue("CallStatus"),
	}
	return f, nil
}
