// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// fieldLabels per mode, aligned with the field order in setMode.
var (
	loginLabels    = []string{"Email", "Password"}
	registerLabels = []string{"Email", "Password", "First name", "Middle name", "Last name"}
	forgotLabels   = []string{"Email"}
)

// title returns the heading for the visible form.
func (m *Model) title() string {
	switch m.mode {
	case modeRegister:
		return "Create account"
	case modeForgot:
		return "Reset password"
	default:
		return "Sign in"
	}
}

// hints returns the footer line for the visible form.
func (m *Model) hints() string {
	switch m.mode {
	case modeLogin:
		return "Enter sign in - C-r register - C-f forgot password"
	default:
		return "Enter submit - Esc back to sign in"
	}
}

// View renders the centered authentication form.
func (m Model) View() string {
	labels := loginLabels
	switch m.mode {
	case modeRegister:
		labels = registerLabels
	case modeForgot:
		labels = forgotLabels
	}

	var b strings.Builder
	b.WriteString(m.theme.Brand.Render("visi"))
	b.WriteString("  ")
	b.WriteString(m.theme.DialogTitle.Render(m.title()))
	b.WriteString("\n\n")

	for i, field := range m.fields {
		b.WriteString(m.theme.FieldLabel.Render(labels[i]))
		b.WriteString(field.View())
		b.WriteString("\n")
	}

	if m.spinner.Active() {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString("\n")
	}
	if m.errLine != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.FieldError.Render(m.errLine))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.DialogBody.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.HelpText.Render(m.hints()))

	box := m.theme.FormContainer.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
