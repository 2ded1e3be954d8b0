// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jeranaias/visi-tui/internal/api"
	"github.com/jeranaias/visi-tui/internal/hub"
	"github.com/jeranaias/visi-tui/internal/model"
)

// =============================================================================
// HUB ABSTRACTION
// =============================================================================

// HubConn is the slice of hub.Conn the manager drives. Narrowed to an
// interface so tests can substitute a recording fake.
type HubConn interface {
	Start(ctx context.Context) error
	Stop()
	State() hub.State
	JoinUserGroup() error
	LeaveUserGroup() error
}

// HubFactory builds a hub connection for the given path with the given
// event handler. Production wiring returns *hub.Conn.
type HubFactory func(path string, handler hub.Handler) (HubConn, error)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks the authenticated session. It owns the credential token,
// the user profile, and two hub connections: the connect hub (user
// signals) and the chat hub (conversation traffic).
//
// State machine: Disconnected -> Connecting -> Joined -> Disconnected.
// Authenticate drives the forward transitions; Logout drives the final
// one and may run from any state.
type Manager struct {
	client *api.Client
	store  *TokenStore

	connectHubPath string
	chatHubPath    string
	newHub         HubFactory

	// onEvent receives every hub event (both hubs) after the manager's
	// own handling. The TUI forwards these into the program loop.
	onEvent hub.Handler

	// onLoggedOut fires exactly once per logout, after cleanup. The TUI
	// navigates back to the login view here.
	onLoggedOut func()

	mu         sync.Mutex
	token      string
	profile    *model.UserProfile
	connectHub HubConn
	chatHub    HubConn
	joined     bool
}

// NewManager creates a session manager. The api client must have been
// constructed with this manager's Token func as its token source.
func NewManager(client *api.Client, store *TokenStore, connectHubPath, chatHubPath string, newHub HubFactory) *Manager {
	m := &Manager{
		client:         client,
		store:          store,
		connectHubPath: connectHubPath,
		chatHubPath:    chatHubPath,
		newHub:         newHub,
	}
	if tok, err := store.Load(); err == nil {
		m.token = tok
	} else {
		log.Printf("session: loading stored credential: %v", err)
	}
	return m
}

// SetEventHandler registers the forwarder for hub events. Must be set
// before Authenticate.
func (m *Manager) SetEventHandler(h hub.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvent = h
}

// SetLogoutHandler registers the callback fired once per completed
// logout.
func (m *Manager) SetLogoutHandler(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLoggedOut = fn
}

// =============================================================================
// TOKEN AND PROFILE ACCESS
// =============================================================================

// Token returns the current credential, or "" when logged out. Wired as
// the api.Client and hub token source.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// HasStoredCredential reports whether a token is available (stored or
// freshly obtained).
func (m *Manager) HasStoredCredential() bool {
	return m.Token() != ""
}

// SetToken stores a freshly obtained token, in memory and on disk.
func (m *Manager) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return m.store.Save(token)
}

// Profile returns the cached user profile, or nil before the first fetch
// and after logout. Callers must treat it as read-only.
func (m *Manager) Profile() *model.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// SetProfile replaces the cached profile wholesale.
func (m *Manager) SetProfile(p *model.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = p
}

// ChatHub returns the chat hub connection, or nil before authentication.
func (m *Manager) ChatHub() HubConn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatHub
}

// Joined reports whether the session completed the connect/join/profile
// sequence.
func (m *Manager) Joined() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joined
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Authenticate runs the validate/start/join/fetch-profile sequence:
// check the credential against the identity service, construct the hub
// connections if absent (re-authentication reuses them), start both,
// join the user group, then fetch and cache the profile. Hub errors are
// logged, not returned: the session is usable without realtime delivery
// and the reconnect loop keeps trying. A validation or profile fetch
// failure is returned, and a credential the backend rejects is dropped
// from memory and disk so the next launch goes straight to the login
// screen.
func (m *Manager) Authenticate(ctx context.Context) error {
	if err := m.client.ValidateToken(ctx); err != nil {
		if isCredentialRejected(err) {
			m.dropCredential()
		}
		return err
	}

	m.mu.Lock()
	if m.connectHub == nil {
		ch, err := m.newHub(m.connectHubPath, m.handleConnectEvent)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		m.connectHub = ch
	}
	if m.chatHub == nil {
		ch, err := m.newHub(m.chatHubPath, m.forwardEvent)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		m.chatHub = ch
	}
	connectHub := m.connectHub
	chatHub := m.chatHub
	m.mu.Unlock()

	if err := connectHub.Start(ctx); err != nil {
		log.Printf("session: connect hub start: %v", err)
	}
	if err := chatHub.Start(ctx); err != nil {
		log.Printf("session: chat hub start: %v", err)
	}

	if connectHub.State() == hub.StateConnected {
		if err := connectHub.JoinUserGroup(); err != nil {
			log.Printf("session: joining user group: %v", err)
		}
	}

	profile, err := m.client.GetProfile(ctx)
	if err != nil {
		if isCredentialRejected(err) {
			m.dropCredential()
		}
		return err
	}

	m.mu.Lock()
	m.profile = profile
	m.joined = true
	m.mu.Unlock()
	return nil
}

// isCredentialRejected reports whether the backend refused the session's
// credential, as opposed to a transient network failure.
func isCredentialRejected(err error) bool {
	return errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNotAuthenticated)
}

// dropCredential clears the token in memory and on disk after the
// backend rejects it. The hubs are left alone: Logout owns teardown.
func (m *Manager) dropCredential() {
	if err := m.store.Clear(); err != nil {
		log.Printf("session: clearing rejected credential: %v", err)
	}
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

// =============================================================================
// LOGOUT
// =============================================================================

// Logout tears the session down: best-effort leave of the user group when
// connected, stop both hubs, clear the stored credential, drop the cached
// profile, then fire the logged-out callback exactly once. Errors along
// the way are logged and do not abort the sequence.
func (m *Manager) Logout() {
	m.mu.Lock()
	connectHub := m.connectHub
	chatHub := m.chatHub
	m.mu.Unlock()

	if connectHub != nil && connectHub.State() == hub.StateConnected {
		if err := connectHub.LeaveUserGroup(); err != nil {
			log.Printf("session: leaving user group: %v", err)
		}
	}
	if connectHub != nil {
		connectHub.Stop()
	}
	if chatHub != nil {
		chatHub.Stop()
	}

	if err := m.store.Clear(); err != nil {
		log.Printf("session: clearing credential: %v", err)
	}

	m.mu.Lock()
	m.token = ""
	m.profile = nil
	m.joined = false
	// Reset the handles so a future login builds fresh connections.
	m.connectHub = nil
	m.chatHub = nil
	onLoggedOut := m.onLoggedOut
	m.mu.Unlock()

	if onLoggedOut != nil {
		onLoggedOut()
	}
}

// =============================================================================
// EVENT ROUTING
// =============================================================================

// handleConnectEvent watches the connect hub for the blocked signal and
// otherwise forwards.
func (m *Manager) handleConnectEvent(e hub.Event) {
	if _, blocked := e.(hub.Blocked); blocked {
		log.Printf("session: blocked by server, logging out")
		m.Logout()
		return
	}
	m.forwardEvent(e)
}

// forwardEvent hands an event to the registered UI forwarder.
func (m *Manager) forwardEvent(e hub.Event) {
	m.mu.Lock()
	h := m.onEvent
	m.mu.Unlock()
	if h != nil {
		h(e)
	}
}
