package voice

import "regexp"

// PlanAction describes what the webhook response should instruct the provider
// to do with the call leg.
type PlanAction string

const (
	PlanDialNumber PlanAction = "number"
	PlanDialClient PlanAction = "client"
	PlanGreet      PlanAction = "greeting"
)

// DialPlan is the decision derived from the inbound form.
type DialPlan struct {
	Action   PlanAction
	Target   string
	CallerID string
}

// phoneShaped matches PSTN-number-looking destinations: digits with optional
// +, -, parentheses and spaces. Anything else is a client identity.
var phoneShaped = regexp.MustCompile(`^[0-9+\-() ]+$`)

// PlanCall decides between bridging to a PSTN number, bridging to a client
// identity, and speaking a greeting. A greeting is the fallback whenever
// either the destination or the caller ID is missing.
func PlanCall(to, callerID string) DialPlan {
	if to == "" || callerID == "" {
		return DialPlan{Action: PlanGreet}
	}
	if phoneShaped.MatchString(to) {
		return DialPlan{Action: PlanDialNumber, Target: to, CallerID: callerID}
	}
	return DialPlan{Action: PlanDialClient, Target: to, CallerID: callerID}
}
