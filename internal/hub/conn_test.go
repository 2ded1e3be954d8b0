// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// hubServer is a minimal fake hub: it records the handshake, echoes
// nothing, and lets tests push frames to the client.
type hubServer struct {
	*httptest.Server
	authHeader chan string
	inbound    chan frame
	conns      chan *websocket.Conn
}

func newHubServer(t *testing.T) *hubServer {
	t.Helper()
	hs := &hubServer{
		authHeader: make(chan string, 4),
		inbound:    make(chan frame, 16),
		conns:      make(chan *websocket.Conn, 4),
	}
	hs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hs.authHeader <- r.Header.Get("Authorization")
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hs.conns <- ws
		go func() {
			for {
				_, data, err := ws.ReadMessage()
				if err != nil {
					return
				}
				var f frame
				if json.Unmarshal(data, &f) == nil {
					hs.inbound <- f
				}
			}
		}()
	}))
	t.Cleanup(hs.Close)
	return hs
}

func waitForState(t *testing.T, c *Conn, want State) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", c.State(), want)
}

// =============================================================================
// CONNECTION TESTS
// =============================================================================

func TestConn_DialSendsBearerToken(t *testing.T) {
	server := newHubServer(t)

	conn, err := New(server.URL, "/chathub", func() string { return "tok-123" }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer conn.Stop()

	if err := conn.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case auth := <-server.authHeader:
		if auth != "Bearer tok-123" {
			t.Errorf("Authorization = %q", auth)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no handshake received")
	}
	waitForState(t, conn, StateConnected)
}

func TestConn_JoinGroupSendsInvocation(t *testing.T) {
	server := newHubServer(t)

	conn, err := New(server.URL, "/chathub", func() string { return "tok" }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer conn.Stop()
	if err := conn.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForState(t, conn, StateConnected)

	if err := conn.JoinGroup("conv-1"); err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}

	select {
	case f := <-server.inbound:
		if f.Target != TargetAddToGroup {
			t.Errorf("target = %q, want %q", f.Target, TargetAddToGroup)
		}
		if f.InvocationID == "" {
			t.Error("invocation ID should be set")
		}
		var arg string
		if err := json.Unmarshal(f.Arguments[0], &arg); err != nil || arg != "conv-1" {
			t.Errorf("argument = %q (%v), want conv-1", arg, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no invocation received")
	}
}

func TestConn_DeliversServerEvents(t *testing.T) {
	server := newHubServer(t)
	events := make(chan Event, 16)

	conn, err := New(server.URL, "/chathub", func() string { return "tok" }, func(e Event) {
		events <- e
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer conn.Stop()
	if err := conn.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForState(t, conn, StateConnected)

	ws := <-server.conns
	push := `{"target":"ReceiveMessage","arguments":[{"messageId":"m1","content":"hi","conversationId":"conv-1","creationTimeUnix":42}]}`
	if err := ws.WriteMessage(websocket.TextMessage, []byte(push)); err != nil {
		t.Fatalf("server write: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-events:
			if mr, ok := e.(MessageReceived); ok {
				if mr.Message.MessageID != "m1" || mr.Message.Content != "hi" {
					t.Errorf("unexpected message: %+v", mr.Message)
				}
				return
			}
			// Skip StateChanged notifications.
		case <-deadline:
			t.Fatal("no MessageReceived event")
		}
	}
}

func TestConn_InvokeWhileDisconnected(t *testing.T) {
	conn, err := New("http://127.0.0.1:1", "/chathub", func() string { return "" }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := conn.JoinGroup("conv-1"); err != ErrNotConnected {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// WIRE FORMAT TESTS
// =============================================================================

func TestToWebSocketURL(t *testing.T) {
	cases := []struct {
		base, path, want string
		wantErr          bool
	}{
		{"http://api.example", "/chathub", "ws://api.example/chathub", false},
		{"https://api.example/", "/connecthub", "wss://api.example/connecthub", false},
		{"ftp://api.example", "/chathub", "", true},
	}
	for _, tc := range cases {
		got, err := toWebSocketURL(tc.base, tc.path)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tc.base)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tc.base, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.base, got, tc.want)
		}
	}
}

func TestDecodeEvent(t *testing.T) {
	mustFrame := func(s string) *frame {
		var f frame
		if err := json.Unmarshal([]byte(s), &f); err != nil {
			t.Fatalf("bad test frame: %v", err)
		}
		return &f
	}

	e, err := decodeEvent(mustFrame(`{"target":"MessageDeleted","arguments":["m7"]}`))
	if err != nil {
		t.Fatalf("MessageDeleted: %v", err)
	}
	if del, ok := e.(MessageDeleted); !ok || del.MessageID != "m7" {
		t.Errorf("got %+v", e)
	}

	e, err = decodeEvent(mustFrame(`{"target":"UserOnlineStatusChanged","arguments":["u1",true]}`))
	if err != nil {
		t.Fatalf("UserOnlineStatusChanged: %v", err)
	}
	if st, ok := e.(UserOnlineStatusChanged); !ok || st.UserID != "u1" || !st.IsOnline {
		t.Errorf("got %+v", e)
	}

	e, err = decodeEvent(mustFrame(`{"target":"ReceiveMessageConnection","arguments":["blocked"]}`))
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if _, ok := e.(Blocked); !ok {
		t.Errorf("got %+v", e)
	}

	if _, err := decodeEvent(mustFrame(`{"target":"Bogus","arguments":[]}`)); err == nil {
		t.Error("unknown target should error")
	}
	if _, err := decodeEvent(mustFrame(`{"target":"MessageDeleted","arguments":[]}`)); err == nil {
		t.Error("missing argument should error")
	}
}

func TestConn_DialAfterStopClosesSocket(t *testing.T) {
	server := newHubServer(t)

	conn, err := New(server.URL, "/chathub", func() string { return "tok" }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := conn.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForState(t, conn, StateConnected)

	conn.Stop()
	waitForState(t, conn, StateDisconnected)

	// A reconnect handshake that was in flight when Stop ran completes
	// afterwards; the resulting socket must be torn down, not adopted.
	err = conn.dial(context.Background())
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("dial after Stop: err = %v, want ErrClosed", err)
	}
	if got := conn.State(); got != StateDisconnected {
		t.Errorf("state = %v, want disconnected", got)
	}
	conn.mu.Lock()
	ws := conn.ws
	conn.mu.Unlock()
	if ws != nil {
		t.Error("stopped connection must not hold a live socket")
	}
}
