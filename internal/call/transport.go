package call

import (
	"context"
	"errors"
)

// Transport is the client-side endpoint abstraction: a registered,
// ready-to-call device. Production implementations delegate all signaling and
// media to the provider; tests use a fake.
type Transport interface {
	// Register binds the device to a minted access token so the provider can
	// route inbound calls to the token's identity.
	Register(ctx context.Context, jwt, identity string) error

	// Connect starts an outbound call. Lifecycle notifications arrive through
	// events; the returned ActiveCall controls the in-flight leg.
	Connect(ctx context.Context, params ConnectParams, events CallEvents) (ActiveCall, error)

	// Release tears the device down and frees transport resources.
	Release() error
}

// ConnectParams carry the destination and the presented caller ID, exactly the
// two call parameters the voice webhook reads back out.
type ConnectParams struct {
	To       string
	CallerID string
}

// CallEvents fan transport signaling back into the session.
type CallEvents struct {
	// Accepted fires when the far end establishes the call.
	Accepted func()
	// Disconnected fires when an established call ends.
	Disconnected func()
	// Failed fires when call setup fails.
	Failed func(error)
}

// ActiveCall controls one in-flight call leg.
type ActiveCall interface {
	Mute(muted bool) error
	SendDigits(digits string) error
	Disconnect() error
}

// ErrUnsupported is returned by transports that cannot perform an in-call
// operation (the REST transport has no media path for DTMF or mute).
var ErrUnsupported = errors.New("call: operation not supported by this transport")
