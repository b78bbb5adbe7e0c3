package call

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	err error
}

func (s staticTokens) Token(context.Context) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return "signed-jwt", "user_test", nil
}

type fakeCall struct {
	muted        []bool
	digits       string
	disconnected bool
}

func (c *fakeCall) Mute(m bool) error {
	c.muted = append(c.muted, m)
	return nil
}

func (c *fakeCall) SendDigits(d string) error {
	c.digits += d
	return nil
}

func (c *fakeCall) Disconnect() error {
	c.disconnected = true
	return nil
}

type fakeTransport struct {
	registerErr error
	connectErr  error

	registeredJWT      string
	registeredIdentity string
	connects           []ConnectParams
	events             CallEvents
	call               *fakeCall
	released           bool
}

func (t *fakeTransport) Register(_ context.Context, jwt, identity string) error {
	if t.registerErr != nil {
		return t.registerErr
	}
	t.registeredJWT = jwt
	t.registeredIdentity = identity
	return nil
}

func (t *fakeTransport) Connect(_ context.Context, p ConnectParams, events CallEvents) (ActiveCall, error) {
	if t.connectErr != nil {
		return nil, t.connectErr
	}
	t.connects = append(t.connects, p)
	t.events = events
	t.call = &fakeCall{}
	return t.call, nil
}

func (t *fakeTransport) Release() error {
	t.released = true
	return nil
}

func newTestSession(t *testing.T) (*Session, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	s, err := NewSession(context.Background(), staticTokens{}, tr, nil)
	require.NoError(t, err)
	return s, tr
}

func dialAndAccept(t *testing.T, s *Session, tr *fakeTransport) {
	t.Helper()
	s.SetCallerID("+15557654321")
	require.NoError(t, s.Dial(context.Background(), "+15551234567"))
	tr.events.Accepted()
	require.Equal(t, StateConnected, s.Status())
}

func TestNewSession_RegistersDeviceWithMintedToken(t *testing.T) {
	s, tr := newTestSession(t)
	assert.Equal(t, "signed-jwt", tr.registeredJWT)
	assert.Equal(t, "user_test", tr.registeredIdentity)
	assert.Equal(t, "user_test", s.Identity())
	assert.Equal(t, StateIdle, s.Status())
}

func TestNewSession_TokenFailure(t *testing.T) {
	_, err := NewSession(context.Background(), staticTokens{err: errors.New("mint down")}, &fakeTransport{}, nil)
	require.Error(t, err)
}

func TestNewSession_RegisterFailure(t *testing.T) {
	tr := &fakeTransport{registerErr: errors.New("register down")}
	_, err := NewSession(context.Background(), staticTokens{}, tr, nil)
	require.Error(t, err)
}

func TestDial_Guards(t *testing.T) {
	s, tr := newTestSession(t)

	// No caller id selected yet.
	err := s.Dial(context.Background(), "+15551234567")
	assert.ErrorIs(t, err, ErrNoCallerID)

	s.SetCallerID("+15557654321")
	err = s.Dial(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoDestination)

	// Guard failures leave the machine idle and the transport untouched.
	assert.Equal(t, StateIdle, s.Status())
	assert.Empty(t, tr.connects)
}

func TestDial_NoDeviceAfterClose(t *testing.T) {
	s, tr := newTestSession(t)
	require.NoError(t, s.Close())

	s.SetCallerID("+15557654321")
	err := s.Dial(context.Background(), "+15551234567")
	assert.ErrorIs(t, err, ErrNoDevice)
	assert.Equal(t, StateIdle, s.Status())
	assert.Empty(t, tr.connects)
}

func TestDial_ConnectingThenAccepted(t *testing.T) {
	s, tr := newTestSession(t)
	s.SetCallerID("+15557654321")

	require.NoError(t, s.Dial(context.Background(), "+15551234567"))
	assert.Equal(t, StateConnecting, s.Status())
	require.Len(t, tr.connects, 1)
	assert.Equal(t, "+15551234567", tr.connects[0].To)
	assert.Equal(t, "+15557654321", tr.connects[0].CallerID)

	tr.events.Accepted()
	assert.Equal(t, StateConnected, s.Status())
}

func TestDial_BusyWhileInProgress(t *testing.T) {
	s, tr := newTestSession(t)
	dialAndAccept(t, s, tr)

	err := s.Dial(context.Background(), "+15550000000")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, tr.connects, 1)
}

func TestDial_ConnectFailureReturnsToIdle(t *testing.T) {
	s, tr := newTestSession(t)
	tr.connectErr = errors.New("transport down")
	s.SetCallerID("+15557654321")

	err := s.Dial(context.Background(), "+15551234567")
	require.Error(t, err)
	assert.Equal(t, StateIdle, s.Status())
}

func TestFailedSignalReturnsToIdle(t *testing.T) {
	s, tr := newTestSession(t)
	s.SetCallerID("+15557654321")
	require.NoError(t, s.Dial(context.Background(), "+15551234567"))

	tr.events.Failed(errors.New("busy here"))
	assert.Equal(t, StateIdle, s.Status())
	assert.Zero(t, s.Duration())
}

func TestToggleMute(t *testing.T) {
	s, tr := newTestSession(t)

	_, err := s.ToggleMute()
	assert.ErrorIs(t, err, ErrNotConnected)

	dialAndAccept(t, s, tr)

	muted, err := s.ToggleMute()
	require.NoError(t, err)
	assert.True(t, muted)

	muted, err = s.ToggleMute()
	require.NoError(t, err)
	assert.False(t, muted)

	assert.Equal(t, []bool{true, false}, tr.call.muted)
}

func TestSendDigit(t *testing.T) {
	s, tr := newTestSession(t)

	err := s.SendDigit('5')
	assert.ErrorIs(t, err, ErrNotConnected)

	dialAndAccept(t, s, tr)

	require.NoError(t, s.SendDigit('1'))
	require.NoError(t, s.SendDigit('#'))
	assert.Equal(t, "1#", s.Digits())
	assert.Equal(t, "1#", tr.call.digits)

	assert.ErrorIs(t, s.SendDigit('x'), ErrBadDigit)
	assert.Equal(t, "1#", s.Digits())
}

func TestHangup_ResetsCallState(t *testing.T) {
	s, tr := newTestSession(t)
	dialAndAccept(t, s, tr)

	_, err := s.ToggleMute()
	require.NoError(t, err)
	require.NoError(t, s.SendDigit('7'))

	require.NoError(t, s.Hangup())
	assert.Equal(t, StateIdle, s.Status())
	assert.Zero(t, s.Duration())
	assert.False(t, s.Muted())
	assert.Empty(t, s.Digits())
	assert.True(t, tr.call.disconnected)
}

func TestHangup_WithoutCall(t *testing.T) {
	s, _ := newTestSession(t)
	assert.ErrorIs(t, s.Hangup(), ErrNotConnected)
}

func TestRemoteDisconnectResets(t *testing.T) {
	s, tr := newTestSession(t)
	dialAndAccept(t, s, tr)

	tr.events.Disconnected()
	assert.Equal(t, StateIdle, s.Status())
	assert.Zero(t, s.Duration())
	assert.False(t, s.Muted())
}

func TestClose_ReleasesDeviceAndActiveCall(t *testing.T) {
	s, tr := newTestSession(t)
	dialAndAccept(t, s, tr)

	require.NoError(t, s.Close())
	assert.True(t, tr.call.disconnected)
	assert.True(t, tr.released)
	assert.Equal(t, StateIdle, s.Status())

	// Closing twice is fine.
	require.NoError(t, s.Close())
}
