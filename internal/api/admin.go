// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/visi-tui/internal/model"
)

// =============================================================================
// USER ADMINISTRATION
// =============================================================================

// SearchUsers fetches one page of the admin user listing. The free-text
// query travels in the request body; page number and size are query
// parameters. Page numbers start at 1.
func (c *Client) SearchUsers(ctx context.Context, query string, pageNumber, pageSize int) ([]model.AdminUser, error) {
	path := "/api/v1/admin/users?pageNumber=" + strconv.Itoa(pageNumber) +
		"&pageSize=" + strconv.Itoa(pageSize)

	var users []model.AdminUser
	if err := c.do(ctx, http.MethodPost, path, query, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	path := "/api/v1/admin/users/" + url.PathEscape(userID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// AssignRole assigns a role to a user by role name.
func (c *Client) AssignRole(ctx context.Context, userID, roleName string) error {
	path := "/api/v1/admin/users/" + url.PathEscape(userID) + "/role"
	return c.do(ctx, http.MethodPost, path, roleName, nil, true)
}

// SetBlocked blocks or unblocks a user. A blocked user receives the
// blocked signal on their connect hub group and is logged out.
func (c *Client) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	path := "/api/v1/admin/users/" + url.PathEscape(userID) + "/block"
	return c.do(ctx, http.MethodPut, path, blocked, nil, true)
}

// =============================================================================
// ROLE ADMINISTRATION
// =============================================================================

// RoleRequest is the create/update body for roles.
type RoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListRoles fetches all roles.
func (c *Client) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/roles", nil, &roles, true); err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateRole adds a new role.
func (c *Client) CreateRole(ctx context.Context, name, description string) error {
	body := RoleRequest{Name: name, Description: description}
	return c.do(ctx, http.MethodPost, "/api/v1/admin/roles", body, nil, true)
}

// UpdateRole edits an existing role by ID.
func (c *Client) UpdateRole(ctx context.Context, roleID, name, description string) error {
	path := "/api/v1/admin/roles/" + url.PathEscape(roleID)
	body := RoleRequest{Name: name, Description: description}
	return c.do(ctx, http.MethodPut, path, body, nil, true)
}

// DeleteRole removes a role by name. The reserved "admin" and "user"
// roles are guarded in the UI, not here: the backend is the authority.
func (c *Client) DeleteRole(ctx context.Context, roleName string) error {
	path := "/api/v1/admin/roles/" + url.PathEscape(roleName)
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}
