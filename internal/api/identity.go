// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"
)

// applicationScope is the OAuth-style scope the identity service expects
// on every token and registration request.
const applicationScope = "application_scope"

// =============================================================================
// TOKEN OPERATIONS
// =============================================================================

// loginRequest is the body of POST /connect/token.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Scope    string `json:"scope"`
}

// Login exchanges credentials for a bearer token. The identity service
// answers with the raw token as the response body, not JSON.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := loginRequest{Email: email, Password: password, Scope: applicationScope}
	data, err := c.request(ctx, http.MethodPost, "/connect/token", body, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Trim(string(data), `"`)), nil
}

// LoginGoogle exchanges a Google identity token for a bearer token.
func (c *Client) LoginGoogle(ctx context.Context, googleToken string) (string, error) {
	data, err := c.request(ctx, http.MethodPost, "/connect/token/google", googleToken, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Trim(string(data), `"`)), nil
}

// ValidateToken asks the identity service whether the current credential
// is still valid. A nil error means valid; ErrUnauthorized (wrapped in
// *Error) means the session is dead and must be dropped.
func (c *Client) ValidateToken(ctx context.Context) error {
	_, err := c.request(ctx, http.MethodPost, "/connect/token/validate", nil, true)
	return err
}

// =============================================================================
// REGISTRATION
// =============================================================================

// RegisterRequest is the body of POST /connect/register.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
	Scope      string `json:"scope"`
}

// Register creates a new account. The backend sends the confirmation
// email; the caller only learns success or failure.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	req.Scope = applicationScope
	_, err := c.request(ctx, http.MethodPost, "/connect/register", req, false)
	return err
}
