// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/model"
)

// requestTimeout bounds every command-issued API call.
const requestTimeout = 30 * time.Second

// =============================================================================
// SERVICE DEPENDENCIES
// =============================================================================

// Service is the slice of the API client the admin console uses.
type Service interface {
	SearchUsers(ctx context.Context, query string, pageNumber, pageSize int) ([]model.AdminUser, error)
	DeleteUser(ctx context.Context, userID string) error
	AssignRole(ctx context.Context, userID, roleName string) error
	SetBlocked(ctx context.Context, userID string, blocked bool) error
	ListRoles(ctx context.Context) ([]model.Role, error)
	CreateRole(ctx context.Context, name, description string) error
	UpdateRole(ctx context.Context, roleID, name, description string) error
	DeleteRole(ctx context.Context, roleName string) error
}

// =============================================================================
// TEA MESSAGES
// =============================================================================

// UsersMsg carries one page of the user listing.
type UsersMsg struct {
	Query string
	Page  int
	Users []model.AdminUser
	Err   error
}

// RolesMsg carries the refreshed role list.
type RolesMsg struct {
	Roles []model.Role
	Err   error
}

// ActionDoneMsg reports the outcome of a single mutating action
// (role assignment, block toggle, role create/update/delete, single
// user delete).
type ActionDoneMsg struct {
	Action string
	Err    error
}

// BulkDeleteDoneMsg reports a sequential bulk delete: how many rows were
// removed, how many failed, and the first failure for display.
type BulkDeleteDoneMsg struct {
	Deleted  int
	Failed   int
	FirstErr error
}

// =============================================================================
// COMMANDS
// =============================================================================

// searchUsers fetches one page of the user listing.
func searchUsers(svc Service, query string, page, pageSize int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		users, err := svc.SearchUsers(ctx, query, page, pageSize)
		return UsersMsg{Query: query, Page: page, Users: users, Err: err}
	}
}

// loadRoles fetches the role list.
func loadRoles(svc Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		roles, err := svc.ListRoles(ctx)
		return RolesMsg{Roles: roles, Err: err}
	}
}

// runAction wraps a single mutating call.
func runAction(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return ActionDoneMsg{Action: action, Err: fn(ctx)}
	}
}

// bulkDelete removes the marked users one request at a time. A failure
// does not stop the rest; the summary reports both counts.
func bulkDelete(svc Service, userIDs []string) tea.Cmd {
	ids := make([]string, len(userIDs))
	copy(ids, userIDs)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(ids))*requestTimeout)
		defer cancel()

		var done BulkDeleteDoneMsg
		for _, id := range ids {
			if err := svc.DeleteUser(ctx, id); err != nil {
				done.Failed++
				if done.FirstErr == nil {
					done.FirstErr = err
				}
				continue
			}
			done.Deleted++
		}
		return done
	}
}
