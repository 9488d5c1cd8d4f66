package network

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"remotekey/internal/protocol"
)

// ErrAuthRejected is returned by Authenticate when the server does not reply AUTH_SUCCESS.
var ErrAuthRejected = errors.New("authentication rejected")

const defaultReplyTimeout = 10 * time.Second

// Client is a synchronous client for the remote key protocol: every frame
// sent is answered by exactly one text reply.
type Client struct {
	conn *websocket.Conn

	// ReplyTimeout bounds the wait for each reply.
	ReplyTimeout time.Duration

	mu sync.Mutex
}

// Dial connects to addr, which is host:port or a ws:// URL.
func Dial(ctx context.Context, addr string) (*Client, error) {
	target := addr
	if !strings.HasPrefix(addr, "ws://") && !strings.HasPrefix(addr, "wss://") {
		u := url.URL{Scheme: "ws", Host: addr, Path: "/"}
		target = u.String()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn, ReplyTimeout: defaultReplyTimeout}, nil
}

// Send writes one text frame and waits for the reply.
func (c *Client) Send(frame string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.ReplyTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	return c.read()
}

// Read waits for the next text frame without sending anything.
func (c *Client) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

func (c *Client) read() (string, error) {
	c.conn.SetReadDeadline(time.Now().Add(c.ReplyTimeout))
	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if typ == websocket.TextMessage {
			return string(data), nil
		}
	}
}

// Authenticate sends AUTH:<secret> and returns ErrAuthRejected unless the
// server accepts it.
func (c *Client) Authenticate(secret string) error {
	reply, err := c.Send(protocol.Auth(secret))
	if err != nil {
		return err
	}
	if reply != protocol.ReplyAuthSuccess {
		return fmt.Errorf("%w: %s", ErrAuthRejected, reply)
	}
	return nil
}

// Key sends a single KEY: frame.
func (c *Client) Key(token string) (string, error) {
	return c.Send(protocol.Key(token))
}

// State sends a STATE: frame.
func (c *Client) State(p protocol.StatePayload) (string, error) {
	frame, err := protocol.State(p)
	if err != nil {
		return "", err
	}
	return c.Send(frame)
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
