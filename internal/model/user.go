// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// USER PROFILE
// =============================================================================

// UserProfile is the authenticated user's profile as returned by
// GET /api/v1/user. It is replaced wholesale on each fetch and cleared on
// logout; nothing in the client derives state from it beyond display.
type UserProfile struct {
	UserID          string `json:"userId"`
	RoleName        string `json:"roleName"`
	RoleDescription string `json:"roleDescription"`
	UserName        string `json:"userName"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	IsOnline        bool   `json:"isOnline"`
	Email           string `json:"email"`
	EmailConfirmed  bool   `json:"emailConfirmed"`
}

// DisplayName returns the full name, falling back to the username.
func (u *UserProfile) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.UserName
	}
	return name
}

// IsAdmin reports whether the profile carries the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u.RoleName == RoleNameAdmin
}

// =============================================================================
// ADMIN USER ROW
// =============================================================================

// AdminUser is one row of the paginated admin user listing
// (POST /api/v1/admin/users).
type AdminUser struct {
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	RoleName       string `json:"roleName"`
	IsOnline       bool   `json:"isOnline"`
	IsBlocked      bool   `json:"isBlocked"`
	EmailConfirmed bool   `json:"emailConfirmed"`
}

// =============================================================================
// ROLES
// =============================================================================

// Reserved role names. The backend seeds these two roles and the admin
// console must never offer to delete them.
const (
	RoleNameAdmin = "admin"
	RoleNameUser  = "user"
)

// Role is a named role record from the admin roles API.
type Role struct {
	RoleID      string `json:"roleId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// IsReserved reports whether the role is one of the backend-seeded roles
// that cannot be deleted from the admin console.
func (r *Role) IsReserved() bool {
	return r.Name == RoleNameAdmin || r.Name == RoleNameUser
}
