// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/model"
	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeService struct {
	mu       sync.Mutex
	users    []model.AdminUser
	roles    []model.Role
	deleted  []string
	failIDs  map[string]bool
	assigned map[string]string
	blocked  map[string]bool
	created  []string
	removed  []string
}

func (f *fakeService) SearchUsers(ctx context.Context, query string, pageNumber, pageSize int) ([]model.AdminUser, error) {
	return f.users, nil
}

func (f *fakeService) DeleteUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[userID] {
		return errors.New("delete refused")
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeService) AssignRole(ctx context.Context, userID, roleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assigned == nil {
		f.assigned = make(map[string]string)
	}
	f.assigned[userID] = roleName
	return nil
}

func (f *fakeService) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blocked == nil {
		f.blocked = make(map[string]bool)
	}
	f.blocked[userID] = blocked
	return nil
}

func (f *fakeService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return f.roles, nil
}

func (f *fakeService) CreateRole(ctx context.Context, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, name)
	return nil
}

func (f *fakeService) UpdateRole(ctx context.Context, roleID, name, description string) error {
	return nil
}

func (f *fakeService) DeleteRole(ctx context.Context, roleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, roleName)
	return nil
}

func testUsers() []model.AdminUser {
	return []model.AdminUser{
		{UserID: "admin-1", UserName: "root", Email: "root@example.org", RoleName: "admin"},
		{UserID: "u1", UserName: "alice", Email: "alice@example.org", RoleName: "user"},
		{UserID: "u2", UserName: "bob", Email: "bob@example.org", RoleName: "user"},
	}
}

func newTestModel(svc *fakeService) Model {
	profile := &model.UserProfile{UserID: "admin-1", Email: "root@example.org", RoleName: model.RoleNameAdmin}
	m := New(styles.New(100, 30, "dark"), svc, profile, 7)
	m.users = svc.users
	m.roles = svc.roles
	m.rebuildRows()
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// =============================================================================
// CONFIRMATION GATE TESTS
// =============================================================================

func TestDeleteUser_RequiresTypedEmail(t *testing.T) {
	svc := &fakeService{users: testUsers()}
	m := newTestModel(svc)
	m.usersTable.SetCursor(1) // alice

	m, cmd := m.handleKey(keyMsg("d"))
	if cmd != nil {
		t.Fatal("delete must not run before confirmation")
	}
	if m.overlay != overlayConfirm {
		t.Fatal("confirm dialog should open")
	}

	// A wrong email is rejected.
	m = typeString(m, "wrong@example.org")
	m, cmd = m.handleKey(keyMsg("enter"))
	if cmd != nil {
		t.Fatal("mismatched email must not confirm")
	}
	if m.confirmErr == "" {
		t.Error("mismatch should set an error line")
	}
	if m.overlay != overlayConfirm {
		t.Error("dialog should stay open")
	}

	// The admin's own email confirms. Comparison is case-insensitive.
	m.confirmInput.SetValue("ROOT@example.org")
	m, cmd = m.handleKey(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("matching email should run the pending action")
	}
	res := cmd().(ActionDoneMsg)
	if res.Err != nil {
		t.Fatalf("delete: %v", res.Err)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "u1" {
		t.Errorf("deleted = %v, want [u1]", svc.deleted)
	}
	if m.overlay != overlayNone {
		t.Error("dialog should close on confirm")
	}
}

func TestDeleteSelf_Refused(t *testing.T) {
	svc := &fakeService{users: testUsers()}
	m := newTestModel(svc)
	m.usersTable.SetCursor(0) // the admin themselves

	m, _ = m.handleKey(keyMsg("d"))
	if m.overlay == overlayConfirm {
		t.Error("self-delete must not open the confirm dialog")
	}
	if len(svc.deleted) != 0 {
		t.Errorf("deleted = %v, want none", svc.deleted)
	}
}

// =============================================================================
// BULK DELETE TESTS
// =============================================================================

func TestBulkDelete_SequentialAndSelectionCleared(t *testing.T) {
	svc := &fakeService{users: testUsers(), failIDs: map[string]bool{"u2": true}}
	m := newTestModel(svc)

	// Mark alice and bob.
	m.usersTable.SetCursor(1)
	m, _ = m.handleKey(keyMsg(" "))
	m.usersTable.SetCursor(2)
	m, _ = m.handleKey(keyMsg(" "))
	if len(m.markedIDs()) != 2 {
		t.Fatalf("marked = %v", m.markedIDs())
	}

	m, _ = m.handleKey(keyMsg("d"))
	if m.overlay != overlayConfirm {
		t.Fatal("bulk delete should open the confirm dialog")
	}
	m.confirmInput.SetValue("root@example.org")
	m, cmd := m.handleKey(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("confirm should run the bulk delete")
	}

	var done BulkDeleteDoneMsg
	found := false
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			if d, ok := sub().(BulkDeleteDoneMsg); ok {
				done, found = d, true
			}
		}
	} else if d, ok := msg.(BulkDeleteDoneMsg); ok {
		done, found = d, true
	}
	if !found {
		t.Fatal("no BulkDeleteDoneMsg produced")
	}

	if done.Deleted != 1 || done.Failed != 1 {
		t.Errorf("done = %+v, want 1 deleted 1 failed", done)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "u1" {
		t.Errorf("deleted = %v, want [u1]", svc.deleted)
	}

	// Selection clears even though one delete failed.
	m, _ = m.Update(done)
	if len(m.markedIDs()) != 0 {
		t.Errorf("marked after bulk delete = %v, want empty", m.markedIDs())
	}
}

func TestMarkSelf_Refused(t *testing.T) {
	svc := &fakeService{users: testUsers()}
	m := newTestModel(svc)
	m.usersTable.SetCursor(0)
	m, _ = m.handleKey(keyMsg(" "))
	if len(m.markedIDs()) != 0 {
		t.Error("the admin must not mark their own row")
	}
}

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestAssignRole_ViaPicker(t *testing.T) {
	svc := &fakeService{
		users: testUsers(),
		roles: []model.Role{{RoleID: "r1", Name: "admin"}, {RoleID: "r2", Name: "moderator"}},
	}
	m := newTestModel(svc)
	m.usersTable.SetCursor(1)

	m, _ = m.handleKey(keyMsg("r"))
	if m.overlay != overlayRolePick {
		t.Fatal("role picker should open")
	}
	m, _ = m.handleKey(keyMsg("j"))
	m, cmd := m.handleKey(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("picking should run the assignment")
	}
	if res := cmd().(ActionDoneMsg); res.Err != nil {
		t.Fatalf("assign: %v", res.Err)
	}
	if svc.assigned["u1"] != "moderator" {
		t.Errorf("assigned = %v", svc.assigned)
	}
}

func TestReservedRoles_CannotBeDeletedOrEdited(t *testing.T) {
	svc := &fakeService{roles: []model.Role{{RoleID: "r1", Name: "admin"}, {RoleID: "r2", Name: "user"}}}
	m := newTestModel(svc)
	m.tab = tabRoles

	m, _ = m.handleKey(keyMsg("d"))
	if m.overlay != overlayNone {
		t.Error("reserved role delete must not open confirmation")
	}
	m, _ = m.handleKey(keyMsg("e"))
	if m.overlay != overlayNone {
		t.Error("reserved role edit must not open the form")
	}
	if len(svc.removed) != 0 {
		t.Errorf("removed = %v", svc.removed)
	}
}

func TestCreateRole_ReservedNameRejected(t *testing.T) {
	svc := &fakeService{roles: []model.Role{{RoleID: "r1", Name: "admin"}}}
	m := newTestModel(svc)
	m.tab = tabRoles

	m, _ = m.handleKey(keyMsg("n"))
	if m.overlay != overlayRoleForm {
		t.Fatal("form should open")
	}
	m.roleFormName.SetValue("admin")
	m, cmd := m.handleKey(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected a toast command")
	}
	if len(svc.created) != 0 {
		t.Error("reserved name must not be created")
	}
	if m.overlay != overlayRoleForm {
		t.Error("form should stay open on rejection")
	}
}

func TestCreateRole_Succeeds(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m.tab = tabRoles

	m, _ = m.handleKey(keyMsg("n"))
	m.roleFormName.SetValue("moderator")
	m, cmd := m.handleKey(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected the create command")
	}
	if res := cmd().(ActionDoneMsg); res.Err != nil {
		t.Fatalf("create: %v", res.Err)
	}
	if len(svc.created) != 1 || svc.created[0] != "moderator" {
		t.Errorf("created = %v", svc.created)
	}
}

// =============================================================================
// SEARCH TESTS
// =============================================================================

func TestSearch_ResetsPageAndSelection(t *testing.T) {
	svc := &fakeService{users: testUsers()}
	m := newTestModel(svc)
	m.page = 3
	m.usersTable.SetCursor(1)
	m, _ = m.handleKey(keyMsg(" "))

	m, _ = m.handleKey(keyMsg("/"))
	if !m.searchFocused {
		t.Fatal("/ should focus the search input")
	}
	m.search.SetValue("ali")
	m, cmd := m.handleKey(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("search should schedule a fetch")
	}
	if m.page != 1 {
		t.Errorf("page = %d, want 1", m.page)
	}
	if len(m.markedIDs()) != 0 {
		t.Error("search should clear the marked set")
	}
	if m.query != "ali" {
		t.Errorf("query = %q", m.query)
	}
}
