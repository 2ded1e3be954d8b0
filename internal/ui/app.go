// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the root application model. It routes between the
// login screen, the chat view, and the admin console, and owns the
// status bar shown under every view.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/api"
	"github.com/jeranaias/visi-tui/internal/config"
	"github.com/jeranaias/visi-tui/internal/hub"
	"github.com/jeranaias/visi-tui/internal/session"
	"github.com/jeranaias/visi-tui/internal/ui/admin"
	"github.com/jeranaias/visi-tui/internal/ui/chat"
	"github.com/jeranaias/visi-tui/internal/ui/components"
	"github.com/jeranaias/visi-tui/internal/ui/login"
	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

// =============================================================================
// VIEWS
// =============================================================================

// View identifies the active screen.
type View int

const (
	ViewLogin View = iota
	ViewChat
	ViewAdmin
)

// =============================================================================
// APP MESSAGES
// =============================================================================

// AuthenticatedMsg reports the outcome of the session start sequence.
type AuthenticatedMsg struct {
	Err error
}

// LoggedOutMsg navigates back to the login screen. Delivered exactly
// once per logout via the session manager's callback.
type LoggedOutMsg struct{}

// SessionEventMsg wraps a realtime hub event forwarded into the program
// loop.
type SessionEventMsg struct {
	Event hub.Event
}

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root Bubble Tea model.
type App struct {
	theme   *styles.Theme
	cfg     *config.Config
	client  *api.Client
	session *session.Manager

	view       View
	loginView  login.Model
	chatView   chat.Model
	adminView  admin.Model
	chatReady  bool
	adminReady bool

	statusBar components.StatusBar

	width  int
	height int
}

// NewApp wires the root model. The session manager must already carry
// any stored credential.
func NewApp(cfg *config.Config, theme *styles.Theme, client *api.Client, sess *session.Manager) App {
	a := App{
		theme:     theme,
		cfg:       cfg,
		client:    client,
		session:   sess,
		view:      ViewLogin,
		loginView: login.New(theme, client),
		statusBar: components.NewStatusBar(theme),
	}
	a.statusBar.SetHints(loginHints)
	return a
}

var (
	loginHints = []components.Hint{{Key: "C-c", Desc: "quit"}}
	chatHints  = []components.Hint{
		{Key: "Tab", Desc: "panel"},
		{Key: "C-n", Desc: "new chat"},
		{Key: "C-p", Desc: "account"},
		{Key: "C-l", Desc: "logout"},
		{Key: "C-c", Desc: "quit"},
	}
	adminHints = []components.Hint{
		{Key: "C-a", Desc: "back to chat"},
		{Key: "C-l", Desc: "logout"},
	}
)

// Init resumes a stored session when one exists.
func (a App) Init() tea.Cmd {
	if a.session.HasStoredCredential() {
		return tea.Batch(a.loginView.Init(), a.authenticate())
	}
	return a.loginView.Init()
}

// authenticate runs the session start sequence off the update loop.
func (a App) authenticate() tea.Cmd {
	sess := a.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return AuthenticatedMsg{Err: sess.Authenticate(ctx)}
	}
}

// chatGroups exposes the chat hub's group operations. The session hands
// out a narrowed connection handle; the concrete type carries the group
// invocations the chat view needs.
func (a App) chatGroups() chat.GroupHub {
	if gh, ok := a.session.ChatHub().(chat.GroupHub); ok {
		return gh
	}
	return nil
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the active view and handles navigation.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.theme.Resize(msg.Width, msg.Height)
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 1}
		a.loginView.SetSize(inner.Width, inner.Height)
		if a.chatReady {
			a.chatView.SetSize(inner.Width, inner.Height)
		}
		if a.adminReady {
			a.adminView.SetSize(inner.Width, inner.Height)
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+l":
			if a.view != ViewLogin {
				sess := a.session
				return a, func() tea.Msg {
					// Navigation happens through the logout callback.
					sess.Logout()
					return nil
				}
			}
		case "ctrl+a":
			if a.adminReady && a.view != ViewLogin {
				if a.view == ViewAdmin {
					a.view = ViewChat
					a.statusBar.SetHints(chatHints)
					return a, nil
				}
				a.view = ViewAdmin
				a.statusBar.SetHints(adminHints)
				return a, a.adminView.Init()
			}
		}

	case login.LoggedInMsg:
		a.loginView, _ = a.loginView.Update(msg)
		if msg.Err != nil {
			return a, nil
		}
		if err := a.session.SetToken(msg.Token); err != nil {
			return a, nil
		}
		a.statusBar.SetStatus(components.StatusLoading)
		return a, a.authenticate()

	case AuthenticatedMsg:
		return a.handleAuthenticated(msg)

	case LoggedOutMsg:
		a.view = ViewLogin
		a.chatReady = false
		a.adminReady = false
		a.loginView = login.New(a.theme, a.client)
		a.loginView.SetSize(a.width, a.height-1)
		a.statusBar.SetUser("", "")
		a.statusBar.SetHubState(hub.StateDisconnected)
		a.statusBar.SetStatus(components.StatusReady)
		a.statusBar.SetHints(loginHints)
		return a, nil

	case chat.AccountDeletedMsg:
		if msg.Err == nil {
			// The account is gone; tear the session down. Navigation
			// happens through the logout callback.
			sess := a.session
			return a, func() tea.Msg {
				sess.Logout()
				return nil
			}
		}
		return a.routeToActive(msg)

	case SessionEventMsg:
		if state, ok := msg.Event.(hub.StateChanged); ok {
			a.statusBar.SetHubState(state.State)
			return a, nil
		}
		if a.chatReady {
			var cmd tea.Cmd
			a.chatView, cmd = a.chatView.Update(chat.HubEventMsg{Event: msg.Event})
			return a, cmd
		}
		return a, nil
	}

	return a.routeToActive(msg)
}

// handleAuthenticated builds the signed-in views once the profile is
// known.
func (a App) handleAuthenticated(msg AuthenticatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.view = ViewLogin
		a.statusBar.SetStatus(components.StatusError)
		a.loginView, _ = a.loginView.Update(login.LoggedInMsg{Err: msg.Err})
		return a, nil
	}
	a.statusBar.SetStatus(components.StatusReady)

	profile := a.session.Profile()
	a.chatView = chat.New(a.theme, a.client, a.chatGroups(), profile, a.cfg.Chat.PageSize)
	a.chatView.SetSize(a.width, a.height-1)
	a.chatReady = true

	if profile != nil {
		a.statusBar.SetUser(profile.DisplayName(), profile.RoleName)
		if profile.IsAdmin() {
			a.adminView = admin.New(a.theme, a.client, profile, a.cfg.Chat.PageSize)
			a.adminView.SetSize(a.width, a.height-1)
			a.adminReady = true
		}
	}

	a.view = ViewChat
	a.statusBar.SetHints(chatHints)
	return a, a.chatView.Init()
}

// routeToActive forwards a message to the visible view.
func (a App) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case ViewLogin:
		a.loginView, cmd = a.loginView.Update(msg)
	case ViewAdmin:
		a.adminView, cmd = a.adminView.Update(msg)
	default:
		if a.chatReady {
			a.chatView, cmd = a.chatView.Update(msg)
		}
	}
	return a, cmd
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active screen above the status bar.
func (a App) View() string {
	var body string
	switch a.view {
	case ViewLogin:
		body = a.loginView.View()
	case ViewAdmin:
		body = a.adminView.View()
	default:
		if a.chatReady {
			body = a.chatView.View()
		}
	}
	return body + "\n" + a.statusBar.View()
}
