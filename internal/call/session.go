package call

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// Session states.
const (
	StateIdle       = "idle"
	StateConnecting = "connecting"
	StateConnected  = "connected"
)

// FSM events.
const (
	eventDial   = "dial"
	eventAccept = "accept"
	eventFail   = "fail"
	eventHangup = "hangup"
)

var (
	ErrNoDevice      = errors.New("call: no device registered")
	ErrNoDestination = errors.New("call: destination is required")
	ErrNoCallerID    = errors.New("call: caller id is required")
	ErrBusy          = errors.New("call: another call is in progress")
	ErrNotConnected  = errors.New("call: no connected call")
	ErrBadDigit      = errors.New("call: invalid DTMF digit")
)

// TokenSource mints or fetches the access token the device registers with.
type TokenSource interface {
	Token(ctx context.Context) (jwt, identity string, err error)
}

// Session owns the device and at most one active call. The constructor mints
// a token, builds the device and registers it; Close disconnects any active
// call and releases the device. State moves idle -> connecting -> connected
// and back; every exit from connected resets duration and mute.
type Session struct {
	mu sync.Mutex

	log       *slog.Logger
	transport Transport
	machine   *fsm.FSM

	identity   string
	callerID   string
	registered bool

	active   ActiveCall
	muted    bool
	digits   strings.Builder
	duration int
	stopTick chan struct{}
}

func NewSession(ctx context.Context, tokens TokenSource, transport Transport, log *slog.Logger) (*Session, error) {
	if tokens == nil || transport == nil {
		return nil, errors.New("call: token source and transport are required")
	}
	if log == nil {
		log = slog.Default()
	}

	jwt, identity, err := tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("call: token: %w", err)
	}
	if err := transport.Register(ctx, jwt, identity); err != nil {
		return nil, fmt.Errorf("call: register: %w", err)
	}

	s := &Session{
		log:        log.With("identity", identity),
		transport:  transport,
		identity:   identity,
		registered: true,
	}
	s.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventDial, Src: []string{StateIdle}, Dst: StateConnecting},
			{Name: eventAccept, Src: []string{StateConnecting}, Dst: StateConnected},
			{Name: eventFail, Src: []string{StateConnecting}, Dst: StateIdle},
			{Name: eventHangup, Src: []string{StateConnected, StateConnecting}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"after_event": func(_ context.Context, e *fsm.Event) {
				s.log.Debug("call state", "event", e.Event, "from", e.Src, "to", e.Dst)
			},
		},
	)
	return s, nil
}

// Identity is the inbound-call identity minted into the session token.
func (s *Session) Identity() string {
	return s.identity
}

// SetCallerID selects the number presented to called parties.
func (s *Session) SetCallerID(number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callerID = number
}

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Current()
}

func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Duration is the connected time in whole seconds.
func (s *Session) Duration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Digits is the DTMF buffer accumulated during the current call.
func (s *Session) Digits() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.digits.String()
}

// Dial places an outbound call. Guards: a registered device, a non-empty
// destination and a selected caller ID; a guard failure performs no state
// transition and no transport side effect.
func (s *Session) Dial(ctx context.Context, destination string) error {
	s.mu.Lock()
	if !s.registered {
		s.mu.Unlock()
		return ErrNoDevice
	}
	if strings.TrimSpace(destination) == "" {
		s.mu.Unlock()
		return ErrNoDestination
	}
	if s.callerID == "" {
		s.mu.Unlock()
		return ErrNoCallerID
	}
	if err := s.machine.Event(ctx, eventDial); err != nil {
		s.mu.Unlock()
		return ErrBusy
	}
	params := ConnectParams{To: destination, CallerID: s.callerID}
	s.digits.Reset()
	s.mu.Unlock()

	active, err := s.transport.Connect(ctx, params, CallEvents{
		Accepted:     s.onAccepted,
		Disconnected: s.onDisconnected,
		Failed:       s.onFailed,
	})
	if err != nil {
		s.onFailed(err)
		return fmt.Errorf("call: connect: %w", err)
	}

	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
	return nil
}

// Hangup ends the active call and returns the session to idle.
func (s *Session) Hangup() error {
	s.mu.Lock()
	active := s.active
	if err := s.machine.Event(context.Background(), eventHangup); err != nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.resetLocked()
	s.mu.Unlock()

	if active != nil {
		return active.Disconnect()
	}
	return nil
}

// ToggleMute flips the mute flag and informs the transport.
// Only meaningful while connected.
func (s *Session) ToggleMute() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.Current() != StateConnected || s.active == nil {
		return false, ErrNotConnected
	}
	next := !s.muted
	if err := s.active.Mute(next); err != nil {
		return s.muted, err
	}
	s.muted = next
	return s.muted, nil
}

const dtmfAlphabet = "0123456789*#w"

// SendDigit forwards one DTMF symbol to the transport and appends it to the
// visible digit buffer.
func (s *Session) SendDigit(d rune) error {
	if !strings.ContainsRune(dtmfAlphabet, d) {
		return ErrBadDigit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.Current() != StateConnected || s.active == nil {
		return ErrNotConnected
	}
	if err := s.active.SendDigits(string(d)); err != nil {
		return err
	}
	s.digits.WriteRune(d)
	return nil
}

// Close is the session destructor: disconnect any active call, stop the
// duration ticker and release the device. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	active := s.active
	_ = s.machine.Event(context.Background(), eventHangup)
	s.resetLocked()
	wasRegistered := s.registered
	s.registered = false
	s.mu.Unlock()

	var errs []error
	if active != nil {
		if err := active.Disconnect(); err != nil {
			errs = append(errs, err)
		}
	}
	if wasRegistered {
		if err := s.transport.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) onAccepted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.machine.Event(context.Background(), eventAccept); err != nil {
		return
	}
	s.startTickerLocked()
}

func (s *Session) onDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.machine.Event(context.Background(), eventHangup); err != nil {
		return
	}
	s.resetLocked()
}

func (s *Session) onFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Warn("call setup failed", "err", err)
	if ferr := s.machine.Event(context.Background(), eventFail); ferr != nil {
		return
	}
	s.resetLocked()
}

// startTickerLocked starts the one-second duration counter.
// Caller holds s.mu.
func (s *Session) startTickerLocked() {
	s.duration = 0
	stop := make(chan struct{})
	s.stopTick = stop
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.mu.Lock()
				s.duration++
				s.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// resetLocked clears per-call state on any transition out of a call.
// Caller holds s.mu.
func (s *Session) resetLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
	s.active = nil
	s.muted = false
	s.duration = 0
	s.digits.Reset()
}
