// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jeranaias/visi-tui/internal/api"
	"github.com/jeranaias/visi-tui/internal/hub"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeHub records lifecycle calls in order.
type fakeHub struct {
	mu    sync.Mutex
	state hub.State
	calls []string
}

func (f *fakeHub) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeHub) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeHub) Start(ctx context.Context) error {
	f.record("start")
	f.mu.Lock()
	f.state = hub.StateConnected
	f.mu.Unlock()
	return nil
}

func (f *fakeHub) Stop() {
	f.record("stop")
	f.mu.Lock()
	f.state = hub.StateDisconnected
	f.mu.Unlock()
}

func (f *fakeHub) State() hub.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeHub) JoinUserGroup() error  { f.record("join"); return nil }
func (f *fakeHub) LeaveUserGroup() error { f.record("leave"); return nil }

type fixture struct {
	manager    *Manager
	store      *TokenStore
	connectHub *fakeHub
	chatHub    *fakeHub

	// validateStatus is served for the token validation call. Tests set
	// it before calling Authenticate; the default accepts the token.
	validateStatus int
}

func newFixture(t *testing.T, profileStatus int) *fixture {
	t.Helper()

	fx := &fixture{validateStatus: http.StatusOK}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/connect/token/validate":
			if fx.validateStatus != http.StatusOK {
				w.WriteHeader(fx.validateStatus)
			}
			return
		case "/api/v1/user":
			if profileStatus != http.StatusOK {
				w.WriteHeader(profileStatus)
				return
			}
			w.Write([]byte(`{"userId":"u1","userName":"alice","email":"alice@example.org","roleName":"user"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	store := NewTokenStore(t.TempDir())
	fx.store = store
	fx.connectHub = &fakeHub{}
	fx.chatHub = &fakeHub{}

	var m *Manager
	factory := func(path string, handler hub.Handler) (HubConn, error) {
		if path == "/connecthub" {
			return fx.connectHub, nil
		}
		return fx.chatHub, nil
	}
	client := api.NewClient(server.URL, func() string { return m.Token() })
	m = NewManager(client, store, "/connecthub", "/chathub", factory)
	fx.manager = m
	return fx
}

// =============================================================================
// TOKEN STORE TESTS
// =============================================================================

func TestTokenStore_RoundTrip(t *testing.T) {
	store := NewTokenStore(t.TempDir())

	if tok, err := store.Load(); err != nil || tok != "" {
		t.Fatalf("empty store: tok=%q err=%v", tok, err)
	}
	if err := store.Save("abc.def"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tok, err := store.Load()
	if err != nil || tok != "abc.def" {
		t.Fatalf("Load: tok=%q err=%v", tok, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if tok, _ := store.Load(); tok != "" {
		t.Errorf("token survived Clear: %q", tok)
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

// =============================================================================
// AUTHENTICATION TESTS
// =============================================================================

func TestManager_AuthenticateSequence(t *testing.T) {
	fx := newFixture(t, http.StatusOK)
	if err := fx.manager.SetToken("tok"); err != nil {
		t.Fatal(err)
	}

	if err := fx.manager.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if got := fx.connectHub.Calls(); len(got) != 2 || got[0] != "start" || got[1] != "join" {
		t.Errorf("connect hub calls = %v, want [start join]", got)
	}
	if got := fx.chatHub.Calls(); len(got) != 1 || got[0] != "start" {
		t.Errorf("chat hub calls = %v, want [start]", got)
	}
	profile := fx.manager.Profile()
	if profile == nil || profile.UserName != "alice" {
		t.Errorf("profile = %+v", profile)
	}
	if !fx.manager.Joined() {
		t.Error("session should be joined")
	}
}

func TestManager_AuthenticateProfileFailure(t *testing.T) {
	fx := newFixture(t, http.StatusUnauthorized)
	fx.manager.SetToken("tok")

	err := fx.manager.Authenticate(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if fx.manager.Profile() != nil {
		t.Error("profile should stay nil on failure")
	}
	if fx.manager.Joined() {
		t.Error("session should not be joined")
	}
	// An unauthorized profile fetch invalidates the session too.
	if tok := fx.manager.Token(); tok != "" {
		t.Errorf("token = %q, want dropped", tok)
	}
}

func TestManager_InvalidTokenDropsStoredCredential(t *testing.T) {
	fx := newFixture(t, http.StatusOK)
	fx.validateStatus = http.StatusUnauthorized
	if err := fx.manager.SetToken("stale-token"); err != nil {
		t.Fatal(err)
	}

	err := fx.manager.Authenticate(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if tok := fx.manager.Token(); tok != "" {
		t.Errorf("token = %q, want dropped", tok)
	}
	if stored, _ := fx.store.Load(); stored != "" {
		t.Errorf("stored token = %q, want dropped", stored)
	}
	// The hubs never start against a dead session.
	if calls := fx.connectHub.Calls(); len(calls) != 0 {
		t.Errorf("connect hub calls = %v, want none", calls)
	}
}

func TestManager_TransientValidateFailureKeepsCredential(t *testing.T) {
	fx := newFixture(t, http.StatusOK)
	fx.validateStatus = http.StatusInternalServerError
	fx.manager.SetToken("tok")

	if err := fx.manager.Authenticate(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if fx.manager.Token() != "tok" {
		t.Error("a transient failure must not drop the credential")
	}
}

func TestManager_ReauthenticationReusesConnections(t *testing.T) {
	fx := newFixture(t, http.StatusOK)
	fx.manager.SetToken("tok")

	if err := fx.manager.Authenticate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := fx.manager.Authenticate(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Same fake received both sequences: the handle was not rebuilt.
	calls := fx.connectHub.Calls()
	if len(calls) != 4 {
		t.Errorf("connect hub calls = %v, want two start/join sequences", calls)
	}
}

// =============================================================================
// LOGOUT TESTS
// =============================================================================

func TestManager_LogoutWhileConnected(t *testing.T) {
	fx := newFixture(t, http.StatusOK)
	fx.manager.SetToken("tok")
	if err := fx.manager.Authenticate(context.Background()); err != nil {
		t.Fatal(err)
	}

	logouts := 0
	fx.manager.SetLogoutHandler(func() { logouts++ })

	fx.manager.Logout()

	// Leave before stop, on the connect hub.
	calls := fx.connectHub.Calls()
	want := []string{"start", "join", "leave", "stop"}
	if len(calls) != len(want) {
		t.Fatalf("connect hub calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("connect hub calls = %v, want %v", calls, want)
		}
	}

	if tok := fx.manager.Token(); tok != "" {
		t.Errorf("token = %q, want cleared", tok)
	}
	if stored, _ := fx.store.Load(); stored != "" {
		t.Errorf("stored token = %q, want cleared", stored)
	}
	if fx.manager.Profile() != nil {
		t.Error("profile should be cleared")
	}
	if logouts != 1 {
		t.Errorf("logout callback fired %d times, want exactly 1", logouts)
	}
	if fx.manager.ChatHub() != nil {
		t.Error("chat hub handle should be reset for a future login")
	}
}

func TestManager_LogoutWhileDisconnected(t *testing.T) {
	fx := newFixture(t, http.StatusOK)
	fx.manager.SetToken("tok")

	logouts := 0
	fx.manager.SetLogoutHandler(func() { logouts++ })

	// Never authenticated: no hubs exist, logout still cleans up.
	fx.manager.Logout()

	if len(fx.connectHub.Calls()) != 0 {
		t.Errorf("no hub calls expected, got %v", fx.connectHub.Calls())
	}
	if fx.manager.Token() != "" {
		t.Error("token should be cleared")
	}
	if logouts != 1 {
		t.Errorf("logout callback fired %d times, want 1", logouts)
	}
}

// =============================================================================
// EVENT ROUTING TESTS
// =============================================================================

func TestManager_BlockedSignalTriggersLogout(t *testing.T) {
	fx := newFixture(t, http.StatusOK)
	fx.manager.SetToken("tok")
	if err := fx.manager.Authenticate(context.Background()); err != nil {
		t.Fatal(err)
	}

	logouts := 0
	fx.manager.SetLogoutHandler(func() { logouts++ })

	// Deliver the blocked signal the way the connect hub would.
	fx.manager.handleConnectEvent(hub.Blocked{})

	if logouts != 1 {
		t.Errorf("blocked signal should log out exactly once, got %d", logouts)
	}
	if fx.manager.Token() != "" {
		t.Error("token should be cleared after blocked signal")
	}
}

func TestManager_ForwardsChatEvents(t *testing.T) {
	fx := newFixture(t, http.StatusOK)

	var got hub.Event
	fx.manager.SetEventHandler(func(e hub.Event) { got = e })

	fx.manager.forwardEvent(hub.MessageDeleted{MessageID: "m1"})
	if del, ok := got.(hub.MessageDeleted); !ok || del.MessageID != "m1" {
		t.Errorf("forwarded event = %+v", got)
	}
}
