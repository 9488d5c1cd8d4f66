package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"remotekey/internal/keymap"
	"remotekey/internal/protocol"
)

// logPreview bounds how much of each frame is logged.
const logPreview = 50

type command int

const (
	cmdDisconnect command = iota
	cmdShutdown
)

type frame struct {
	data string
	err  error
}

// session is one client connection. Its run goroutine is the only writer to
// conn and the only caller into the dispatcher and tracker.
type session struct {
	id          string
	conn        *websocket.Conn
	remote      string
	connectedAt time.Time
	log         zerolog.Logger

	authenticated atomic.Bool

	inbox chan command
	done  chan struct{}
}

func newSession(conn *websocket.Conn, remote string, log zerolog.Logger) *session {
	id := uuid.NewString()
	return &session{
		id:          id,
		conn:        conn,
		remote:      remote,
		connectedAt: time.Now(),
		log:         log.With().Str("session", id).Str("remote", remote).Logger(),
		inbox:       make(chan command, 1),
		done:        make(chan struct{}),
	}
}

// post queues cmd for the session goroutine. A full inbox already holds a
// close request, so the extra one is dropped.
func (s *session) post(cmd command) {
	select {
	case s.inbox <- cmd:
	default:
	}
}

// readPump forwards frames until a read fails. pongWait > 0 enables the
// keepalive read deadline.
func (s *session) readPump(frames chan<- frame, pongWait time.Duration) {
	for {
		_, data, err := s.conn.ReadMessage()
		select {
		case frames <- frame{data: string(data), err: err}:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
		if pongWait > 0 {
			s.conn.SetReadDeadline(time.Now().Add(pongWait))
		}
	}
}

func (s *session) write(text string) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// run drives s from authentication to teardown.
func (m *Manager) run(s *session) {
	ctx := context.Background()
	m.metrics.ConnectionsTotal.Add(ctx, 1)
	s.log.Info().Msg("Client connected")

	defer m.teardown(s)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Session aborted")
		}
	}()

	s.conn.SetReadLimit(m.opts.ReadLimit)

	var pongWait time.Duration
	if m.opts.PingInterval > 0 {
		pongWait = 2 * m.opts.PingInterval
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.conn.SetPongHandler(func(string) error {
			s.conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
	}

	frames := make(chan frame)
	go s.readPump(frames, pongWait)

	if err := m.authenticate(ctx, s, frames); err != nil {
		s.log.Info().Err(err).Msg("Authentication did not complete")
		return
	}

	var ping <-chan time.Time
	if m.opts.PingInterval > 0 {
		ticker := time.NewTicker(m.opts.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case f := <-frames:
			if f.err != nil {
				if websocket.IsUnexpectedCloseError(f.err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.log.Warn().Err(f.err).Msg("Read error")
				}
				return
			}
			if err := s.write(m.handle(ctx, s, f.data)); err != nil {
				s.log.Warn().Err(err).Msg("Write error")
				return
			}

		case <-ping:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.log.Warn().Err(err).Msg("Ping failed")
				return
			}

		case cmd := <-s.inbox:
			code := websocket.CloseNormalClosure
			if cmd == cmdShutdown {
				code = websocket.CloseGoingAway
			}
			s.log.Info().Err(ErrDisconnected).Msg("Closing session")
			closeConn(s.conn, code)
			return
		}
	}
}

// authenticate waits for the AUTH: frame. Every failure closes the connection.
func (m *Manager) authenticate(ctx context.Context, s *session, frames <-chan frame) error {
	timer := time.NewTimer(m.opts.AuthTimeout)
	defer timer.Stop()

	var f frame
	select {
	case f = <-frames:
	case <-timer.C:
		m.metrics.CountAuthFailure(ctx, "timeout")
		closeConn(s.conn, websocket.CloseNormalClosure)
		return ErrAuthTimeout
	case <-s.inbox:
		closeConn(s.conn, websocket.CloseNormalClosure)
		return ErrDisconnected
	}
	if f.err != nil {
		return f.err
	}

	msg := protocol.Classify(f.data)
	if msg.Kind != protocol.KindAuth {
		m.metrics.CountAuthFailure(ctx, "required")
		_ = s.write(protocol.ReplyAuthRequired)
		closeConn(s.conn, websocket.CloseNormalClosure)
		return ErrAuthRequired
	}

	if !m.checkCredential(msg.Body) {
		m.metrics.CountAuthFailure(ctx, "failed")
		_ = s.write(protocol.ReplyAuthFailed)
		closeConn(s.conn, websocket.CloseNormalClosure)
		return ErrAuthFailed
	}

	if err := s.write(protocol.ReplyAuthSuccess); err != nil {
		return err
	}
	s.authenticated.Store(true)
	m.metrics.ActiveSessions.Add(ctx, 1)
	s.log.Info().Msg("Client authenticated")
	return nil
}

// handle applies one post-authentication frame and returns the reply.
func (m *Manager) handle(ctx context.Context, s *session, raw string) string {
	msg := protocol.Classify(raw)
	m.metrics.CountMessage(ctx, msg.Kind.String())
	s.log.Debug().Str("kind", msg.Kind.String()).Str("frame", preview(raw)).Msg("Received")

	switch msg.Kind {
	case protocol.KindKey:
		if keymap.IsMouseCommand(msg.Body) {
			return m.dispatcher.DispatchMouse(msg.Body).Message
		}
		return m.dispatcher.Tap(msg.Body).Message

	case protocol.KindState:
		return m.applyState(s, msg.Body)

	default:
		return protocol.ReplyUnknown
	}
}

// applyState reconciles a STATE body. A panic while reconciling is reported
// to the client and the session continues.
func (m *Manager) applyState(s *session, body string) (reply string) {
	p, err := protocol.ParseState(body)
	if err != nil {
		s.log.Warn().Err(err).Msg("Rejected STATE message")
		return protocol.ReplyInvalidState
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("State processing failed")
			reply = protocol.ProcessingError(r)
		}
	}()

	return m.tracker.Reconcile(p.Keys, p.Mouse, p.Scroll)
}

// teardown releases everything the session held. Keys are released before
// the slot is freed.
func (m *Manager) teardown(s *session) {
	s.conn.Close()

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Interface("panic", r).Msg("Reset failed")
			}
		}()
		m.tracker.ResetAll()
	}()

	m.release(s)
	close(s.done)

	ctx := context.Background()
	if s.authenticated.Load() {
		m.metrics.ActiveSessions.Add(ctx, -1)
	}
	m.metrics.SessionDuration.Record(ctx, time.Since(s.connectedAt).Seconds())
	s.log.Info().Dur("duration", time.Since(s.connectedAt)).Msg("Client disconnected")
	m.wg.Done()
}

func preview(raw string) string {
	if len(raw) <= logPreview {
		return raw
	}
	return fmt.Sprintf("%s... (%d bytes)", raw[:logPreview], len(raw))
}
