package session

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"remotekey/internal/input"
	"remotekey/internal/keymap"
	"remotekey/internal/network"
	"remotekey/internal/protocol"
	"remotekey/internal/simulator"
	"remotekey/internal/state"
	"remotekey/internal/telemetry"
)

type harness struct {
	m    *Manager
	rec  *input.Recorder
	addr string
}

func newHarness(t *testing.T, tracker func(*state.Tracker) Tracker, mutate func(*Options)) *harness {
	t.Helper()

	rec := input.NewRecorder()
	sim := simulator.New(keymap.New(nil), rec)
	tr := state.NewTracker(sim, zerolog.Nop())

	opts := Options{
		Credential:  "default123",
		AuthTimeout: 2 * time.Second,
		Logger:      zerolog.Nop(),
		Metrics:     telemetry.NewMetrics(sdkmetric.NewMeterProvider()),
	}
	if mutate != nil {
		mutate(&opts)
	}

	var tk Tracker = tr
	if tracker != nil {
		tk = tracker(tr)
	}

	m := NewManager(sim, tk, opts)
	srv := httptest.NewServer(m)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, m.Shutdown(ctx))
		srv.Close()
	})

	return &harness{m: m, rec: rec, addr: strings.TrimPrefix(srv.URL, "http://")}
}

func (h *harness) dial(t *testing.T) *network.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := network.Dial(ctx, h.addr)
	require.NoError(t, err)
	c.ReplyTimeout = 5 * time.Second
	t.Cleanup(func() { c.Close() })
	return c
}

func (h *harness) login(t *testing.T) *network.Client {
	t.Helper()
	c := h.dial(t)
	require.NoError(t, c.Authenticate("default123"))
	return c
}

func (h *harness) waitIdle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return !h.m.IsConnected() }, 5*time.Second, 10*time.Millisecond)
}

func strPtr(s string) *string { return &s }

func TestAuthSuccessAndKey(t *testing.T) {
	h := newHarness(t, nil, nil)
	c := h.login(t)

	reply, err := c.Key("A")
	require.NoError(t, err)
	require.Equal(t, "Key A pressed and released", reply)
	require.Equal(t, []string{"down:a", "up:a"}, h.rec.Strings())

	info := h.m.Info()
	require.True(t, info.Connected)
	require.True(t, info.Authenticated)
	require.NotEmpty(t, info.SessionID)
}

func TestAuthWhitespaceTrimmed(t *testing.T) {
	h := newHarness(t, nil, nil)
	c := h.dial(t)

	reply, err := c.Send("AUTH:  default123 ")
	require.NoError(t, err)
	require.Equal(t, protocol.ReplyAuthSuccess, reply)
}

func TestAuthFailed(t *testing.T) {
	h := newHarness(t, nil, nil)
	c := h.dial(t)

	reply, err := c.Send("AUTH:wrong")
	require.NoError(t, err)
	require.Equal(t, protocol.ReplyAuthFailed, reply)

	_, err = c.Read()
	require.Error(t, err)
	h.waitIdle(t)
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t, nil, nil)
	c := h.dial(t)

	reply, err := c.Key("A")
	require.NoError(t, err)
	require.Equal(t, protocol.ReplyAuthRequired, reply)

	_, err = c.Read()
	require.Error(t, err)
	require.Empty(t, h.rec.Strings())
}

func TestAuthTimeoutClosesWithoutReply(t *testing.T) {
	h := newHarness(t, nil, func(o *Options) { o.AuthTimeout = 100 * time.Millisecond })
	c := h.dial(t)

	_, err := c.Read()
	require.Error(t, err)
	h.waitIdle(t)

	// the slot is free again
	h.login(t)
}

func TestSecondClientRejected(t *testing.T) {
	h := newHarness(t, nil, nil)
	first := h.login(t)

	second := h.dial(t)
	reply, err := second.Read()
	require.NoError(t, err)
	require.Equal(t, protocol.ReplyBusy, reply)
	_, err = second.Read()
	require.Error(t, err)

	reply, err = first.Key("B")
	require.NoError(t, err)
	require.Equal(t, "Key B pressed and released", reply)
}

func TestStateDiff(t *testing.T) {
	h := newHarness(t, nil, nil)
	c := h.login(t)

	reply, err := c.Send(`STATE:{"keys":["A","B"],"mouse":null,"scroll":null}`)
	require.NoError(t, err)
	require.Equal(t, state.UpdatedMessage, reply)

	reply, err = c.Send(`STATE:{"keys":["B"],"mouse":null,"scroll":null}`)
	require.NoError(t, err)
	require.Equal(t, state.UpdatedMessage, reply)

	require.Equal(t, []string{"down:a", "down:b", "up:a"}, h.rec.Strings())
	require.Equal(t, []string{"B"}, h.m.Snapshot().ActiveKeys)
}

func TestStateMouseAndScroll(t *testing.T) {
	h := newHarness(t, nil, nil)
	c := h.login(t)

	scroll := -1
	_, err := c.State(protocol.StatePayload{Mouse: strPtr("MOUSE_MOVE_RIGHT_2"), Scroll: &scroll})
	require.NoError(t, err)
	_, err = c.State(protocol.StatePayload{Mouse: strPtr("MOUSE_MOVE_RIGHT_2"), Scroll: &scroll})
	require.NoError(t, err)

	require.Equal(t, []string{"move:15,0", "scroll:-3", "scroll:-3"}, h.rec.Strings())
	snap := h.m.Snapshot()
	require.True(t, snap.MouseActive)
	require.Equal(t, "MOUSE_MOVE_RIGHT_2", snap.MouseCommand)
}

func TestMalformedStateLeavesKeys(t *testing.T) {
	h := newHarness(t, nil, nil)
	c := h.login(t)

	_, err := c.State(protocol.StatePayload{Keys: []string{"A"}})
	require.NoError(t, err)

	reply, err := c.Send("STATE:{not json}")
	require.NoError(t, err)
	require.Equal(t, protocol.ReplyInvalidState, reply)
	require.Equal(t, []string{"A"}, h.m.Snapshot().ActiveKeys)

	// the session is still usable
	reply, err = c.Key("MOUSE_LEFT")
	require.NoError(t, err)
	require.Equal(t, "Mouse left clicked", reply)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, nil, nil)
	c := h.login(t)

	for _, frame := range []string{"HELLO", "AUTH:default123", "key:a"} {
		reply, err := c.Send(frame)
		require.NoError(t, err)
		require.Equal(t, protocol.ReplyUnknown, reply, frame)
	}
}

func TestClientCloseReleasesHeldKeys(t *testing.T) {
	h := newHarness(t, nil, nil)
	c := h.login(t)

	_, err := c.State(protocol.StatePayload{Keys: []string{"SHIFT", "A"}})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	h.waitIdle(t)
	require.Equal(t, []string{"down:shift", "down:a", "up:a", "up:shift"}, h.rec.Strings())
	require.Empty(t, h.m.Snapshot().ActiveKeys)
}

func TestOperatorDisconnect(t *testing.T) {
	h := newHarness(t, nil, nil)
	require.False(t, h.m.Disconnect())

	c := h.login(t)
	_, err := c.State(protocol.StatePayload{Keys: []string{"CTRL"}})
	require.NoError(t, err)

	require.True(t, h.m.Disconnect())
	_, err = c.Read()
	require.Error(t, err)

	h.waitIdle(t)
	require.Equal(t, []string{"down:ctrl", "up:ctrl"}, h.rec.Strings())
}

func TestSetCredential(t *testing.T) {
	var (
		mu      sync.Mutex
		persist []string
	)
	h := newHarness(t, nil, func(o *Options) {
		o.OnCredentialChange = func(secret string) error {
			mu.Lock()
			defer mu.Unlock()
			persist = append(persist, secret)
			return nil
		}
	})

	ctx := context.Background()
	require.ErrorIs(t, h.m.SetCredential(ctx, "  "), ErrEmptyCredential)

	c := h.login(t)
	require.NoError(t, h.m.SetCredential(ctx, "rotated"))
	require.False(t, h.m.IsConnected())
	_, err := c.Read()
	require.Error(t, err)

	require.Equal(t, "rotated", h.m.Credential())
	mu.Lock()
	require.Equal(t, []string{"rotated"}, persist)
	mu.Unlock()

	old := h.dial(t)
	require.ErrorIs(t, old.Authenticate("default123"), network.ErrAuthRejected)
	h.waitIdle(t)

	fresh := h.dial(t)
	require.NoError(t, fresh.Authenticate("rotated"))
}

// blockingTracker holds teardown inside ResetAll until release is closed.
type blockingTracker struct {
	*state.Tracker
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingTracker) ResetAll() {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	b.Tracker.ResetAll()
}

func TestSetCredentialAppliesBeforeTeardown(t *testing.T) {
	bt := &blockingTracker{entered: make(chan struct{}), release: make(chan struct{})}
	h := newHarness(t, func(tr *state.Tracker) Tracker {
		bt.Tracker = tr
		return bt
	}, nil)
	h.login(t)

	errCh := make(chan error, 1)
	go func() { errCh <- h.m.SetCredential(context.Background(), "rotated") }()

	select {
	case <-bt.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("session teardown did not start")
	}

	require.True(t, h.m.checkCredential("rotated"))
	require.False(t, h.m.checkCredential("default123"))

	close(bt.release)
	require.NoError(t, <-errCh)
	require.False(t, h.m.IsConnected())
}

func TestSetCredentialSaveFailure(t *testing.T) {
	h := newHarness(t, nil, func(o *Options) {
		o.OnCredentialChange = func(string) error { return errors.New("disk full") }
	})

	err := h.m.SetCredential(context.Background(), "rotated")
	require.ErrorIs(t, err, ErrCredentialNotSaved)
	require.Equal(t, "rotated", h.m.Credential())

	c := h.dial(t)
	require.NoError(t, c.Authenticate("rotated"))
}

type panickingTracker struct {
	*state.Tracker
}

func (panickingTracker) Reconcile([]string, *string, *int) string {
	panic("boom")
}

func TestStatePanicIsReported(t *testing.T) {
	h := newHarness(t, func(tr *state.Tracker) Tracker { return panickingTracker{tr} }, nil)
	c := h.login(t)

	reply, err := c.Send(`STATE:{"keys":["A"]}`)
	require.NoError(t, err)
	require.Equal(t, "Error processing state: boom", reply)

	reply, err = c.Key("A")
	require.NoError(t, err)
	require.Equal(t, "Key A pressed and released", reply)
}

func TestServeShutdown(t *testing.T) {
	rec := input.NewRecorder()
	sim := simulator.New(keymap.New(nil), rec)
	m := NewManager(sim, state.NewTracker(sim, zerolog.Nop()), Options{
		Credential:   "default123",
		PingInterval: time.Second,
		Logger:       zerolog.Nop(),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Serve(ctx, ln) }()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	c, err := network.Dial(dialCtx, ln.Addr().String())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Authenticate("default123"))

	_, err = c.State(protocol.StatePayload{Keys: []string{"ALT"}})
	require.NoError(t, err)

	require.True(t, m.IsConnected())
	require.True(t, m.Info().Running)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}

	require.False(t, m.IsConnected())
	require.False(t, m.Info().Running)
	require.Equal(t, []string{"down:alt", "up:alt"}, rec.Strings())
}
