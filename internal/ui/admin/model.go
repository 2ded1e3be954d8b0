// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin provides the administration console: the paginated user
// listing with role assignment, blocking, and deletion, and the role
// management screen.
//
// Destructive actions are gated behind a confirmation dialog that
// requires the administrator to re-type their own email address.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/model"
	"github.com/jeranaias/visi-tui/internal/ui/components"
	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

// =============================================================================
// VIEW STATES
// =============================================================================

// tab selects the visible screen.
type tab int

const (
	tabUsers tab = iota
	tabRoles
)

// overlay selects the active modal, if any.
type overlay int

const (
	overlayNone overlay = iota
	overlayConfirm
	overlayRolePick
	overlayRoleForm
)

// =============================================================================
// ADMIN MODEL
// =============================================================================

// Model is the Bubble Tea model for the admin console.
type Model struct {
	theme *styles.Theme
	svc   Service

	// The signed-in administrator. Destructive confirmations must match
	// this email.
	selfID    string
	selfEmail string

	tab     tab
	overlay overlay

	// Users screen
	search        textinput.Model
	searchFocused bool
	usersTable    table.Model
	users         []model.AdminUser
	marked        map[string]bool
	query         string
	page          int
	pageSize      int
	hasMore       bool

	// Roles screen
	roles      []model.Role
	roleCursor int

	// Role picker overlay (assign role to the selected user)
	pickCursor int
	pickUserID string

	// Role form overlay (create or rename)
	roleFormName  textinput.Model
	roleFormDesc  textinput.Model
	roleFormField int
	editingRoleID string

	// Confirm overlay
	confirmPrompt string
	confirmInput  textinput.Model
	confirmErr    string
	pendingCmd    tea.Cmd

	spinner components.Spinner
	toasts  components.ToastStack

	width  int
	height int
}

// New creates the admin console for the signed-in administrator.
func New(theme *styles.Theme, svc Service, profile *model.UserProfile, pageSize int) Model {
	search := textinput.New()
	search.Placeholder = "Search users"
	search.Prompt = "/ "
	search.CharLimit = 200

	confirm := textinput.New()
	confirm.Placeholder = "your email"
	confirm.CharLimit = 200

	name := textinput.New()
	name.Placeholder = "Role name"
	name.CharLimit = 100

	desc := textinput.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 200

	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "Name", Width: 24},
		{Title: "Email", Width: 28},
		{Title: "Role", Width: 10},
		{Title: "Status", Width: 12},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	ts := table.DefaultStyles()
	ts.Header = theme.TableHeader
	ts.Selected = theme.TableRowSelected
	tbl.SetStyles(ts)

	m := Model{
		theme:        theme,
		svc:          svc,
		search:       search,
		usersTable:   tbl,
		marked:       make(map[string]bool),
		page:         1,
		pageSize:     pageSize,
		hasMore:      true,
		confirmInput: confirm,
		roleFormName: name,
		roleFormDesc: desc,
		spinner:      components.NewSpinner(theme),
		toasts:       components.NewToastStack(theme),
	}
	if profile != nil {
		m.selfID = profile.UserID
		m.selfEmail = profile.Email
	}
	return m
}

// Init loads the first user page and the role list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		searchUsers(m.svc, "", 1, m.pageSize),
		loadRoles(m.svc),
	)
}

// SetSize resizes the console.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	h := height - 8
	if h < 4 {
		h = 4
	}
	m.usersTable.SetHeight(h)
}

// selectedUser returns the user under the table cursor, or nil.
func (m *Model) selectedUser() *model.AdminUser {
	i := m.usersTable.Cursor()
	if i < 0 || i >= len(m.users) {
		return nil
	}
	return &m.users[i]
}

// markedIDs returns the marked user IDs in listing order.
func (m *Model) markedIDs() []string {
	var ids []string
	for _, u := range m.users {
		if m.marked[u.UserID] {
			ids = append(ids, u.UserID)
		}
	}
	return ids
}

// refreshUsers re-runs the current query on the current page.
func (m *Model) refreshUsers() tea.Cmd {
	return tea.Batch(
		m.spinner.Start("loading users"),
		searchUsers(m.svc, m.query, m.page, m.pageSize),
	)
}

// rebuildRows syncs the table rows with the user slice and marks.
func (m *Model) rebuildRows() {
	rows := make([]table.Row, len(m.users))
	for i, u := range m.users {
		mark := " "
		if m.marked[u.UserID] {
			mark = "*"
		}
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if name == "" {
			name = u.UserName
		}
		status := "ok"
		if !u.EmailConfirmed {
			status = "unconfirmed"
		}
		if u.IsBlocked {
			status = "blocked"
		}
		rows[i] = table.Row{mark, name, u.Email, u.RoleName, status}
	}
	m.usersTable.SetRows(rows)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the admin console.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.ToastExpiredMsg:
		m.toasts.Update(msg)
		return m, nil

	case UsersMsg:
		m.spinner.Stop()
		if msg.Err != nil {
			return m, m.toasts.Push(components.NewErrorToast("loading users: " + msg.Err.Error()))
		}
		if msg.Query != m.query || msg.Page != m.page {
			// Response from an abandoned search.
			return m, nil
		}
		if len(msg.Users) == 0 && m.page > 1 {
			// Walked past the last page.
			m.page--
			m.hasMore = false
			return m, m.refreshUsers()
		}
		m.users = msg.Users
		m.hasMore = len(msg.Users) == m.pageSize
		m.rebuildRows()
		return m, nil

	case RolesMsg:
		if msg.Err != nil {
			return m, m.toasts.Push(components.NewErrorToast("loading roles: " + msg.Err.Error()))
		}
		m.roles = msg.Roles
		if m.roleCursor >= len(m.roles) {
			m.roleCursor = 0
		}
		return m, nil

	case ActionDoneMsg:
		m.spinner.Stop()
		if msg.Err != nil {
			return m, m.toasts.Push(components.NewErrorToast(msg.Action + ": " + msg.Err.Error()))
		}
		cmds := []tea.Cmd{m.toasts.Push(components.NewSuccessToast(msg.Action + " done"))}
		cmds = append(cmds, m.refreshUsers(), loadRoles(m.svc))
		return m, tea.Batch(cmds...)

	case BulkDeleteDoneMsg:
		m.spinner.Stop()
		// The selection clears regardless of partial failure so a retry
		// starts from a clean slate.
		m.marked = make(map[string]bool)
		var cmds []tea.Cmd
		if msg.Failed > 0 {
			line := fmt.Sprintf("deleted %d, %d failed: %v", msg.Deleted, msg.Failed, msg.FirstErr)
			cmds = append(cmds, m.toasts.Push(components.NewErrorToast(line)))
		} else {
			cmds = append(cmds, m.toasts.Push(components.NewSuccessToast(fmt.Sprintf("deleted %d users", msg.Deleted))))
		}
		cmds = append(cmds, m.refreshUsers())
		return m, tea.Batch(cmds...)
	}

	if cmd := m.spinner.Update(msg); cmd != nil {
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.overlay {
	case overlayConfirm:
		return m.handleConfirmKey(msg)
	case overlayRolePick:
		return m.handleRolePickKey(msg)
	case overlayRoleForm:
		return m.handleRoleFormKey(msg)
	}

	if m.searchFocused {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "tab":
		if m.tab == tabUsers {
			m.tab = tabRoles
		} else {
			m.tab = tabUsers
		}
		return m, nil
	case "/":
		if m.tab == tabUsers {
			m.searchFocused = true
			m.search.Focus()
			return m, nil
		}
	}

	if m.tab == tabRoles {
		return m.handleRolesKey(msg)
	}
	return m.handleUsersKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchFocused = false
		m.search.Blur()
		m.query = strings.TrimSpace(m.search.Value())
		m.page = 1
		m.marked = make(map[string]bool)
		return m, m.refreshUsers()
	case "esc":
		m.searchFocused = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleUsersKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		if u := m.selectedUser(); u != nil {
			if u.UserID == m.selfID {
				return m, m.toasts.Push(components.NewErrorToast("you cannot mark yourself"))
			}
			m.marked[u.UserID] = !m.marked[u.UserID]
			if !m.marked[u.UserID] {
				delete(m.marked, u.UserID)
			}
			m.rebuildRows()
		}
		return m, nil

	case "n", "right":
		if m.hasMore {
			m.page++
			return m, m.refreshUsers()
		}
		return m, nil

	case "p", "left":
		if m.page > 1 {
			m.page--
			return m, m.refreshUsers()
		}
		return m, nil

	case "b":
		if u := m.selectedUser(); u != nil {
			if u.UserID == m.selfID {
				return m, m.toasts.Push(components.NewErrorToast("you cannot block yourself"))
			}
			target, blocked := u.UserID, !u.IsBlocked
			action := "block"
			if !blocked {
				action = "unblock"
			}
			return m, runAction(action, func(ctx context.Context) error {
				return m.svc.SetBlocked(ctx, target, blocked)
			})
		}
		return m, nil

	case "r":
		if u := m.selectedUser(); u != nil {
			if len(m.roles) == 0 {
				return m, m.toasts.Push(components.NewErrorToast("no roles loaded"))
			}
			m.overlay = overlayRolePick
			m.pickUserID = u.UserID
			m.pickCursor = 0
		}
		return m, nil

	case "d", "delete":
		return m.requestDelete()
	}

	var cmd tea.Cmd
	m.usersTable, cmd = m.usersTable.Update(msg)
	return m, cmd
}

// requestDelete gates deletion behind the typed-email confirmation. A
// marked set deletes in bulk; otherwise the row under the cursor goes.
func (m Model) requestDelete() (Model, tea.Cmd) {
	if ids := m.markedIDs(); len(ids) > 0 {
		m.openConfirm(
			fmt.Sprintf("Delete %d marked users?", len(ids)),
			bulkDelete(m.svc, ids),
		)
		return m, nil
	}
	u := m.selectedUser()
	if u == nil {
		return m, nil
	}
	if u.UserID == m.selfID {
		return m, m.toasts.Push(components.NewErrorToast("you cannot delete yourself"))
	}
	target := u.UserID
	m.openConfirm(
		"Delete user "+u.Email+"?",
		runAction("delete user", func(ctx context.Context) error {
			return m.svc.DeleteUser(ctx, target)
		}),
	)
	return m, nil
}

func (m Model) handleRolesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.roleCursor > 0 {
			m.roleCursor--
		}
	case "down", "j":
		if m.roleCursor < len(m.roles)-1 {
			m.roleCursor++
		}
	case "n":
		m.openRoleForm(nil)
	case "e", "enter":
		if m.roleCursor < len(m.roles) {
			role := m.roles[m.roleCursor]
			if role.IsReserved() {
				return m, m.toasts.Push(components.NewErrorToast("the " + role.Name + " role is built in"))
			}
			m.openRoleForm(&role)
		}
	case "d", "delete":
		if m.roleCursor < len(m.roles) {
			role := m.roles[m.roleCursor]
			if role.IsReserved() {
				return m, m.toasts.Push(components.NewErrorToast("the " + role.Name + " role cannot be deleted"))
			}
			name := role.Name
			m.openConfirm(
				"Delete role "+name+"?",
				runAction("delete role", func(ctx context.Context) error {
					return m.svc.DeleteRole(ctx, name)
				}),
			)
		}
	}
	return m, nil
}

// =============================================================================
// OVERLAYS
// =============================================================================

// openConfirm arms the typed-email confirmation dialog.
func (m *Model) openConfirm(prompt string, cmd tea.Cmd) {
	m.overlay = overlayConfirm
	m.confirmPrompt = prompt
	m.confirmErr = ""
	m.confirmInput.SetValue("")
	m.confirmInput.Focus()
	m.pendingCmd = cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		m.pendingCmd = nil
		return m, nil
	case "enter":
		typed := strings.TrimSpace(m.confirmInput.Value())
		if !strings.EqualFold(typed, m.selfEmail) {
			m.confirmErr = "That does not match your email."
			return m, nil
		}
		cmd := m.pendingCmd
		m.overlay = overlayNone
		m.pendingCmd = nil
		return m, cmd
	}
	var cmd tea.Cmd
	m.confirmInput, cmd = m.confirmInput.Update(msg)
	return m, cmd
}

func (m Model) handleRolePickKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		return m, nil
	case "up", "k":
		if m.pickCursor > 0 {
			m.pickCursor--
		}
		return m, nil
	case "down", "j":
		if m.pickCursor < len(m.roles)-1 {
			m.pickCursor++
		}
		return m, nil
	case "enter":
		m.overlay = overlayNone
		role := m.roles[m.pickCursor].Name
		target := m.pickUserID
		return m, runAction("assign role", func(ctx context.Context) error {
			return m.svc.AssignRole(ctx, target, role)
		})
	}
	return m, nil
}

// openRoleForm arms the role form for create (nil) or edit.
func (m *Model) openRoleForm(role *model.Role) {
	m.overlay = overlayRoleForm
	m.roleFormField = 0
	if role != nil {
		m.editingRoleID = role.RoleID
		m.roleFormName.SetValue(role.Name)
		m.roleFormDesc.SetValue(role.Description)
	} else {
		m.editingRoleID = ""
		m.roleFormName.SetValue("")
		m.roleFormDesc.SetValue("")
	}
	m.roleFormName.Focus()
	m.roleFormDesc.Blur()
}

func (m Model) handleRoleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		return m, nil
	case "tab":
		m.roleFormField = (m.roleFormField + 1) % 2
		if m.roleFormField == 0 {
			m.roleFormName.Focus()
			m.roleFormDesc.Blur()
		} else {
			m.roleFormName.Blur()
			m.roleFormDesc.Focus()
		}
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.roleFormName.Value())
		desc := strings.TrimSpace(m.roleFormDesc.Value())
		if name == "" {
			return m, m.toasts.Push(components.NewErrorToast("role name is required"))
		}
		if name == model.RoleNameAdmin || name == model.RoleNameUser {
			return m, m.toasts.Push(components.NewErrorToast("that name is reserved"))
		}
		m.overlay = overlayNone
		if m.editingRoleID != "" {
			id := m.editingRoleID
			return m, runAction("update role", func(ctx context.Context) error {
				return m.svc.UpdateRole(ctx, id, name, desc)
			})
		}
		return m, runAction("create role", func(ctx context.Context) error {
			return m.svc.CreateRole(ctx, name, desc)
		})
	}
	var cmd tea.Cmd
	if m.roleFormField == 0 {
		m.roleFormName, cmd = m.roleFormName.Update(msg)
	} else {
		m.roleFormDesc, cmd = m.roleFormDesc.Update(msg)
	}
	return m, cmd
}
