package voice

import (
	"bytes"
	"encoding/xml"
	"errors"
)

// TwiML is a minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency.
//
// Only include primitives we need at the adapter boundary.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlDial struct {
	XMLName  xml.Name `xml:"Dial"`
	CallerID string   `xml:"callerId,attr,omitempty"`
	Number   string   `xml:"Number,omitempty"`
	Client   string   `xml:"Client,omitempty"`
}

// DefaultGreeting is spoken when no destination was supplied.
const DefaultGreeting = "Welcome to the web dialer."

// RenderTwiML maps a DialPlan to TwiML.
func RenderTwiML(plan DialPlan, greeting string) (string, error) {
	var r twimlResponse

	switch plan.Action {
	case PlanGreet:
		if greeting == "" {
			greeting = DefaultGreeting
		}
		r.Verbs = append(r.Verbs, twimlSay{Text: greeting})
	case PlanDialNumber:
		if plan.Target == "" {
			return "", errors.New("voice: target required for number dial")
		}
		r.Verbs = append(r.Verbs, twimlDial{CallerID: plan.CallerID, Number: plan.Target})
	case PlanDialClient:
		if plan.Target == "" {
			return "", errors.New("voice: target required for client dial")
		}
		r.Verbs = append(r.Verbs, twimlDial{CallerID: plan.CallerID, Client: plan.Target})
	default:
		return "", errors.New("voice: unknown plan action")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
