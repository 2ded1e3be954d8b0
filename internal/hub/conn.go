// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Configuration constants for the hub connection.
const (
	// dialTimeout bounds the WebSocket handshake.
	dialTimeout = 10 * time.Second

	// writeTimeout bounds each outbound frame write.
	writeTimeout = 10 * time.Second

	// pongTimeout is how long to wait for traffic before declaring the
	// connection dead. The server pings inside this window.
	pongTimeout = 60 * time.Second

	// reconnectBaseDelay is the first reconnect backoff step.
	reconnectBaseDelay = time.Second

	// reconnectMaxDelay caps the exponential backoff.
	reconnectMaxDelay = 30 * time.Second

	// sendBuffer is the outbound frame queue size.
	sendBuffer = 16
)

// Error variables for hub operations.
var (
	// ErrNotConnected indicates an invoke was attempted while the
	// connection is down.
	ErrNotConnected = errors.New("hub not connected")

	// ErrClosed indicates the connection was shut down by Stop.
	ErrClosed = errors.New("hub connection closed")
)

// =============================================================================
// CONNECTION STATE
// =============================================================================

// State is the hub connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the state name for logs and the status bar.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// =============================================================================
// CONNECTION
// =============================================================================

// TokenSource supplies the bearer credential for the handshake.
type TokenSource func() string

// Handler receives decoded hub events. It is called from the connection's
// reader goroutine; implementations must hand off to their own loop
// (the TUI forwards into the bubbletea program).
type Handler func(Event)

// Conn is one hub connection with automatic reconnect.
//
// Lifecycle: Start dials and begins the reconnect loop; Stop tears the
// connection down for good. Between those, the reconnect loop keeps
// re-dialing with exponential backoff and re-joins every group the
// client was a member of before the drop.
type Conn struct {
	url     string
	token   TokenSource
	handler Handler

	mu      sync.Mutex
	state   State
	ws      *websocket.Conn
	send    chan *frame
	groups  map[string]string // group id -> join target
	started bool
	closed  chan struct{}
}

// New creates an unstarted connection for the given hub endpoint.
// baseURL is the backend http(s) base URL; hubPath is e.g. "/chathub".
func New(baseURL, hubPath string, token TokenSource, handler Handler) (*Conn, error) {
	wsURL, err := toWebSocketURL(baseURL, hubPath)
	if err != nil {
		return nil, err
	}
	return &Conn{
		url:     wsURL,
		token:   token,
		handler: handler,
		state:   StateDisconnected,
		groups:  make(map[string]string),
		closed:  make(chan struct{}),
	}, nil
}

// toWebSocketURL rewrites an http(s) base URL plus hub path into a ws(s)
// URL.
func toWebSocketURL(baseURL, hubPath string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + hubPath)
	if err != nil {
		return "", fmt.Errorf("hub URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("hub URL scheme %q not supported", u.Scheme)
	}
	return u.String(), nil
}

// State returns the current connection state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start dials the hub and launches the reconnect loop. It returns after
// the first dial attempt completes; if that attempt failed the loop keeps
// retrying in the background and the error is returned for logging only.
// Calling Start on a started connection re-dials if currently down and is
// otherwise a no-op (re-authentication reuses the same Conn).
func (c *Conn) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started && c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	err := c.dial(ctx)
	go c.reconnectLoop()
	return err
}

// Stop closes the connection and disables reconnection. The Conn can be
// started again later; a fresh login reuses it.
func (c *Conn) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	close(c.closed)
	c.closed = make(chan struct{})
	ws := c.ws
	c.ws = nil
	c.groups = make(map[string]string)
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	if ws != nil {
		// Best effort close handshake; the read pump exits on error.
		deadline := time.Now().Add(writeTimeout)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = ws.Close()
	}
}

// dial performs one handshake attempt and, on success, starts the pumps.
func (c *Conn) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}

	header := make(map[string][]string)
	if tok := c.token(); tok != "" {
		header["Authorization"] = []string{"Bearer " + tok}
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	ws, _, err := dialer.DialContext(dialCtx, c.url, header)
	if err != nil {
		c.mu.Lock()
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		return fmt.Errorf("hub dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	if !c.started {
		// Stop ran while the handshake was in flight; the fresh socket
		// must not outlive it.
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		_ = ws.Close()
		return ErrClosed
	}
	c.ws = ws
	c.send = make(chan *frame, sendBuffer)
	c.setStateLocked(StateConnected)
	send := c.send
	closed := c.closed
	c.mu.Unlock()

	go c.writePump(ws, send, closed)
	go c.readPump(ws)
	return nil
}

// reconnectLoop re-dials after drops with exponential backoff and
// re-joins all groups held before the drop. It exits when Stop is called.
func (c *Conn) reconnectLoop() {
	delay := reconnectBaseDelay
	for {
		c.mu.Lock()
		started := c.started
		state := c.state
		closed := c.closed
		c.mu.Unlock()

		if !started {
			return
		}

		if state == StateConnected {
			delay = reconnectBaseDelay
			select {
			case <-closed:
				return
			case <-time.After(time.Second):
			}
			continue
		}

		c.mu.Lock()
		c.setStateLocked(StateConnecting)
		c.mu.Unlock()

		if err := c.dial(context.Background()); err != nil {
			log.Printf("hub: reconnect failed: %v (retrying in %s)", err, delay)
			select {
			case <-closed:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
			continue
		}

		c.rejoinGroups()
	}
}

// rejoinGroups re-invokes the join target for every group the client was
// in before the connection dropped.
func (c *Conn) rejoinGroups() {
	c.mu.Lock()
	groups := make(map[string]string, len(c.groups))
	for id, target := range c.groups {
		groups[id] = target
	}
	c.mu.Unlock()

	for id, target := range groups {
		var err error
		if id == userGroupKey {
			err = c.invoke(target)
		} else {
			err = c.invoke(target, id)
		}
		if err != nil {
			log.Printf("hub: rejoin %s failed: %v", id, err)
		}
	}
}

// setStateLocked transitions the state and notifies the handler. Callers
// hold c.mu.
func (c *Conn) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.handler != nil {
		// Notify outside the lock.
		go c.handler(StateChanged{State: s})
	}
}

// =============================================================================
// PUMPS
// =============================================================================

// readPump decodes inbound frames until the connection drops.
func (c *Conn) readPump(ws *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.ws == ws {
			c.ws = nil
			c.setStateLocked(StateDisconnected)
		}
		c.mu.Unlock()
		_ = ws.Close()
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongTimeout))
	ws.SetPingHandler(func(appData string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongTimeout))
		return ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeTimeout))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("hub: read: %v", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongTimeout))

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			log.Printf("hub: dropping malformed frame: %v", err)
			continue
		}
		event, err := decodeEvent(&f)
		if err != nil {
			log.Printf("hub: dropping frame: %v", err)
			continue
		}
		if c.handler != nil {
			c.handler(event)
		}
	}
}

// writePump serializes outbound frames onto the socket.
func (c *Conn) writePump(ws *websocket.Conn, send chan *frame, closed chan struct{}) {
	for {
		select {
		case <-closed:
			return
		case f, ok := <-send:
			if !ok {
				return
			}
			data, err := json.Marshal(f)
			if err != nil {
				log.Printf("hub: encoding frame: %v", err)
				continue
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("hub: write: %v", err)
				return
			}
		}
	}
}

// =============================================================================
// INVOCATIONS
// =============================================================================

// invoke queues one invocation frame.
func (c *Conn) invoke(target string, args ...any) error {
	c.mu.Lock()
	if c.state != StateConnected || c.send == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	send := c.send
	c.mu.Unlock()

	f := &frame{
		InvocationID: uuid.NewString(),
		Target:       target,
		Arguments:    make([]json.RawMessage, 0, len(args)),
	}
	for _, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return fmt.Errorf("encoding %s argument: %w", target, err)
		}
		f.Arguments = append(f.Arguments, raw)
	}

	select {
	case send <- f:
		return nil
	case <-time.After(writeTimeout):
		return fmt.Errorf("invoke %s: send queue full", target)
	}
}

// JoinGroup joins a conversation's broadcast group. The membership is
// remembered and re-established after reconnects.
func (c *Conn) JoinGroup(conversationID string) error {
	c.mu.Lock()
	c.groups[conversationID] = TargetAddToGroup
	c.mu.Unlock()
	return c.invoke(TargetAddToGroup, conversationID)
}

// LeaveGroup leaves a conversation's broadcast group. Best effort: the
// membership is forgotten even when the invoke fails.
func (c *Conn) LeaveGroup(conversationID string) error {
	c.mu.Lock()
	delete(c.groups, conversationID)
	c.mu.Unlock()
	return c.invoke(TargetRemoveFromGroup, conversationID)
}

// userGroupKey marks the user-targeted group in the membership map. It is
// not a conversation ID; the join invocation carries no arguments.
const userGroupKey = "__user__"

// JoinUserGroup joins the user-targeted group on the connect hub, where
// the blocked signal arrives.
func (c *Conn) JoinUserGroup() error {
	c.mu.Lock()
	c.groups[userGroupKey] = TargetAddToGroupConnection
	c.mu.Unlock()
	return c.invoke(TargetAddToGroupConnection)
}

// LeaveUserGroup leaves the user-targeted group.
func (c *Conn) LeaveUserGroup() error {
	c.mu.Lock()
	delete(c.groups, userGroupKey)
	c.mu.Unlock()
	return c.invoke(TargetRemoveFromGroupConnection)
}
