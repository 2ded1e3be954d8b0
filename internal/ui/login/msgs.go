// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/api"
)

// requestTimeout bounds every command-issued API call.
const requestTimeout = 30 * time.Second

// =============================================================================
// SERVICE DEPENDENCIES
// =============================================================================

// Service is the slice of the API client the login view uses.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req api.RegisterRequest) error
	ForgotPassword(ctx context.Context, email string) error
}

// =============================================================================
// TEA MESSAGES
// =============================================================================

// LoggedInMsg reports a completed credential exchange. The app model owns
// what happens next (store the token, authenticate the session).
type LoggedInMsg struct {
	Token string
	Err   error
}

// RegisteredMsg reports the outcome of an account registration.
type RegisteredMsg struct {
	Email string
	Err   error
}

// ResetRequestedMsg reports the outcome of a password reset request.
type ResetRequestedMsg struct {
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

// doLogin exchanges credentials for a token.
func doLogin(svc Service, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		token, err := svc.Login(ctx, email, password)
		return LoggedInMsg{Token: token, Err: err}
	}
}

// doRegister creates a new account.
func doRegister(svc Service, req api.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := svc.Register(ctx, req)
		return RegisteredMsg{Email: req.Email, Err: err}
	}
}

// doForgotPassword requests a reset email.
func doForgotPassword(svc Service, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := svc.ForgotPassword(ctx, email)
		return ResetRequestedMsg{Err: err}
	}
}
