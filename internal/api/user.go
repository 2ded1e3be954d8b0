// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jeranaias/visi-tui/internal/model"
)

// =============================================================================
// PROFILE OPERATIONS
// =============================================================================

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/v1/user", nil, &profile, true); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfileRequest is the body of PUT /api/v1/user.
type UpdateProfileRequest struct {
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UpdateProfile updates the authenticated user's details.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) error {
	return c.do(ctx, http.MethodPut, "/api/v1/user", req, nil, true)
}

// DeleteAccount permanently deletes the authenticated user's account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/user", nil, nil, true)
}

// =============================================================================
// EMAIL / PASSWORD FLOWS
// =============================================================================

// ConfirmEmail confirms an address using the opaque payload from the
// confirmation link.
func (c *Client) ConfirmEmail(ctx context.Context, payload string) error {
	path := "/api/v1/user/" + url.PathEscape(payload) + "/confirm-email"
	return c.do(ctx, http.MethodPut, path, nil, nil, false)
}

// ChangePassword sets a new password using the opaque payload from the
// reset link.
func (c *Client) ChangePassword(ctx context.Context, payload, newPassword string) error {
	path := "/api/v1/user/" + url.PathEscape(payload) + "/change-password"
	return c.do(ctx, http.MethodPut, path, newPassword, nil, false)
}

// ForgotPassword asks the backend to send a password-reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.do(ctx, http.MethodPost, "/api/v1/user/forgot-password", body, nil, false)
}
