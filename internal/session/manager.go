// Package session accepts the single remote client over WebSocket, checks its
// credential and feeds its KEY: and STATE: frames to the simulator and the
// state tracker.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"remotekey/internal/protocol"
	"remotekey/internal/simulator"
	"remotekey/internal/state"
	"remotekey/internal/telemetry"
)

const (
	defaultAuthTimeout = 10 * time.Second
	defaultReadLimit   = 64 * 1024
	writeWait          = 10 * time.Second
	shutdownTimeout    = 5 * time.Second
)

// Dispatcher performs single KEY: commands.
type Dispatcher interface {
	Tap(token string) simulator.Outcome
	DispatchMouse(command string) simulator.Outcome
}

// Tracker holds the held-key state of the session.
type Tracker interface {
	Reconcile(keys []string, mouse *string, scroll *int) string
	ResetAll()
	Snapshot() state.Snapshot
}

// Options configures a Manager. Zero values select defaults.
type Options struct {
	Credential   string
	AuthTimeout  time.Duration
	PingInterval time.Duration
	ReadLimit    int64

	// IP and Port are reported by Info.
	IP   string
	Port int

	Logger  zerolog.Logger
	Metrics *telemetry.Metrics

	// OnCredentialChange is called after SetCredential takes effect.
	OnCredentialChange func(secret string) error
}

// Info describes the server and its current client.
type Info struct {
	IP            string    `json:"ip"`
	Port          int       `json:"port"`
	Running       bool      `json:"running"`
	Connected     bool      `json:"connected"`
	Authenticated bool      `json:"authenticated"`
	RemoteAddr    string    `json:"remote_addr,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
	ConnectedAt   time.Time `json:"connected_at,omitempty"`
}

// Manager owns the single session slot. It is an http.Handler; every request
// is upgraded to a WebSocket.
type Manager struct {
	dispatcher Dispatcher
	tracker    Tracker
	opts       Options
	log        zerolog.Logger
	metrics    *telemetry.Metrics
	upgrader   websocket.Upgrader

	running atomic.Bool
	wg      sync.WaitGroup

	mu         sync.Mutex
	credential string
	current    *session
	closing    bool
}

// NewManager creates a Manager.
func NewManager(dispatcher Dispatcher, tracker Tracker, opts Options) *Manager {
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = defaultAuthTimeout
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.GetMetrics()
	}

	return &Manager{
		dispatcher: dispatcher,
		tracker:    tracker,
		opts:       opts,
		log:        opts.Logger.With().Str("component", "session").Logger(),
		metrics:    metrics,
		credential: opts.Credential,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin; the credential is the access control
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the request and runs the session in the calling goroutine.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Failed to upgrade connection")
		return
	}

	s, err := m.claim(conn, r.RemoteAddr)
	if err != nil {
		m.reject(conn, r.RemoteAddr, err)
		return
	}

	m.run(s)
}

// claim takes the slot for a new session or reports why it cannot.
func (m *Manager) claim(conn *websocket.Conn, remote string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closing {
		return nil, ErrShuttingDown
	}
	if m.current != nil {
		return nil, ErrSessionBusy
	}

	s := newSession(conn, remote, m.log)
	m.current = s
	m.wg.Add(1)
	return s, nil
}

func (m *Manager) reject(conn *websocket.Conn, remote string, reason error) {
	m.log.Info().Err(reason).Str("remote", remote).Msg("Connection rejected")
	m.metrics.RejectedTotal.Add(context.Background(), 1)

	if errors.Is(reason, ErrSessionBusy) {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(protocol.ReplyBusy))
	}
	closeConn(conn, websocket.CloseNormalClosure)
}

// release frees the slot held by s.
func (m *Manager) release(s *session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == s {
		m.current = nil
	}
}

// Info returns the server address and current client details.
func (m *Manager) Info() Info {
	info := Info{
		IP:      m.opts.IP,
		Port:    m.opts.Port,
		Running: m.running.Load(),
	}

	m.mu.Lock()
	s := m.current
	m.mu.Unlock()

	if s != nil {
		info.Connected = true
		info.Authenticated = s.authenticated.Load()
		info.RemoteAddr = s.remote
		info.SessionID = s.id
		info.ConnectedAt = s.connectedAt
	}
	return info
}

// IsConnected reports whether a client currently holds the slot.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Snapshot returns the tracked key and mouse state.
func (m *Manager) Snapshot() state.Snapshot {
	return m.tracker.Snapshot()
}

// Credential returns the secret clients must present.
func (m *Manager) Credential() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credential
}

// Disconnect asks the current session to close. It returns false when no
// client is connected. The session closes asynchronously.
func (m *Manager) Disconnect() bool {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()

	if s == nil {
		return false
	}
	s.post(cmdDisconnect)
	return true
}

// SetCredential replaces the secret. The new secret applies to every
// connection accepted after the call starts; an active session is then
// disconnected and waited for. A failing OnCredentialChange hook is reported
// as ErrCredentialNotSaved while the new secret stays in effect.
func (m *Manager) SetCredential(ctx context.Context, secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ErrEmptyCredential
	}

	m.mu.Lock()
	m.credential = secret
	s := m.current
	m.mu.Unlock()

	m.log.Info().Msg("Credential changed")

	var saveErr error
	if m.opts.OnCredentialChange != nil {
		if err := m.opts.OnCredentialChange(secret); err != nil {
			m.log.Warn().Err(err).Msg("Credential applied but not saved")
			saveErr = fmt.Errorf("%w: %v", ErrCredentialNotSaved, err)
		}
	}

	if s != nil {
		s.post(cmdDisconnect)
		select {
		case <-s.done:
		case <-ctx.Done():
			return errors.Join(ctx.Err(), saveErr)
		}
	}
	return saveErr
}

// Shutdown stops accepting sessions, closes the current one and waits for
// its teardown.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closing = true
	s := m.current
	m.mu.Unlock()

	if s != nil {
		s.post(cmdShutdown)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Serve runs an HTTP server for m on ln until ctx is cancelled.
func (m *Manager) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           m,
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.running.Store(true)
	defer m.running.Store(false)

	m.log.Info().Str("addr", ln.Addr().String()).Msg("WebSocket server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked connections are not tracked by http.Server.
	err := errors.Join(srv.Shutdown(shutdownCtx), m.Shutdown(shutdownCtx))
	<-errCh
	m.log.Info().Msg("WebSocket server stopped")
	return err
}

func (m *Manager) checkCredential(secret string) bool {
	m.mu.Lock()
	want := m.credential
	m.mu.Unlock()
	return subtle.ConstantTimeCompare([]byte(secret), []byte(want)) == 1
}

func closeConn(conn *websocket.Conn, code int) {
	msg := websocket.FormatCloseMessage(code, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}
