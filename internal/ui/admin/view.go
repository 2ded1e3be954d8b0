// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the admin console.
func (m Model) View() string {
	switch m.overlay {
	case overlayConfirm:
		return m.place(m.renderConfirm())
	case overlayRolePick:
		return m.place(m.renderRolePick())
	case overlayRoleForm:
		return m.place(m.renderRoleForm())
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.tab == tabRoles {
		b.WriteString(m.renderRoles())
	} else {
		b.WriteString(m.renderUsers())
	}

	if m.spinner.Active() {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
	}
	if m.toasts.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(m.toasts.View())
	}
	return b.String()
}

// place centers an overlay inside the console area.
func (m Model) place(box string) string {
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderTabs() string {
	users := m.theme.ButtonIdle.Render("Users")
	roles := m.theme.ButtonIdle.Render("Roles")
	if m.tab == tabUsers {
		users = m.theme.ButtonActive.Render("Users")
	} else {
		roles = m.theme.ButtonActive.Render("Roles")
	}
	return m.theme.Title.Render("Administration") + "  " + users + " " + roles
}

func (m Model) renderUsers() string {
	var b strings.Builder
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(m.usersTable.View())
	b.WriteString("\n")

	pageLine := fmt.Sprintf("page %d", m.page)
	if m.hasMore {
		pageLine += " (more)"
	}
	if n := len(m.markedIDs()); n > 0 {
		pageLine += fmt.Sprintf("  %d marked", n)
	}
	b.WriteString(m.theme.HelpText.Render(pageLine))
	b.WriteString("\n")
	b.WriteString(m.theme.HelpText.Render("/ search - space mark - d delete - b block - r role - n/p page - Tab roles"))
	return b.String()
}

func (m Model) renderRoles() string {
	var b strings.Builder
	for i, role := range m.roles {
		line := role.Name
		if role.Description != "" {
			line += "  " + m.theme.HelpText.Render(role.Description)
		}
		if role.IsReserved() {
			line += m.theme.HelpText.Render("  (built in)")
		}
		style := m.theme.TableRow
		if i == m.roleCursor {
			style = m.theme.TableRowSelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	if len(m.roles) == 0 {
		b.WriteString(m.theme.HelpText.Render("no roles"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.HelpText.Render("n new - e edit - d delete - Tab users"))
	return b.String()
}

func (m Model) renderConfirm() string {
	var b strings.Builder
	b.WriteString(m.theme.DialogDanger.Render(m.confirmPrompt))
	b.WriteString("\n\n")
	b.WriteString(m.theme.DialogBody.Render("Type your email to confirm:"))
	b.WriteString("\n")
	b.WriteString(m.confirmInput.View())
	b.WriteString("\n")
	if m.confirmErr != "" {
		b.WriteString(m.theme.FieldError.Render(m.confirmErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.HelpText.Render("Enter confirm - Esc cancel"))
	return m.theme.DialogBox.Render(b.String())
}

func (m Model) renderRolePick() string {
	var b strings.Builder
	b.WriteString(m.theme.DialogTitle.Render("Assign role"))
	b.WriteString("\n\n")
	for i, role := range m.roles {
		style := m.theme.TableRow
		if i == m.pickCursor {
			style = m.theme.TableRowSelected
		}
		b.WriteString(style.Render(role.Name))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.HelpText.Render("Enter assign - Esc cancel"))
	return m.theme.DialogBox.Render(b.String())
}

func (m Model) renderRoleForm() string {
	title := "New role"
	if m.editingRoleID != "" {
		title = "Edit role"
	}
	var b strings.Builder
	b.WriteString(m.theme.DialogTitle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.theme.FieldLabel.Render("Name"))
	b.WriteString(m.roleFormName.View())
	b.WriteString("\n")
	b.WriteString(m.theme.FieldLabel.Render("Description"))
	b.WriteString(m.roleFormDesc.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.HelpText.Render("Tab switch field - Enter save - Esc cancel"))
	return m.theme.DialogBox.Render(b.String())
}
