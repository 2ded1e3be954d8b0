// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the shared visual components for the visi TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/visi-tui/internal/hub"
	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status shown on the left of
// the bar.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusSending
	StatusError
	StatusOffline
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusLoading:
		return "Loading..."
	case StatusSending:
		return "Sending..."
	case StatusError:
		return "Error"
	case StatusOffline:
		return "Offline"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status.
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusLoading, StatusSending:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	case StatusOffline:
		return styles.StatusIndicators.Offline
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar: app status, signed-in user, hub
// connection state, and key hints.
type StatusBar struct {
	theme *styles.Theme

	status   Status
	userName string
	roleName string
	hubState hub.State
	hints    []Hint
}

// Hint is a single key/description pair rendered on the right side.
type Hint struct {
	Key  string
	Desc string
}

// NewStatusBar creates a status bar with the given theme.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{
		theme:    theme,
		status:   StatusReady,
		hubState: hub.StateDisconnected,
	}
}

// SetStatus updates the application status.
func (b *StatusBar) SetStatus(s Status) { b.status = s }

// SetUser updates the signed-in identity shown in the bar.
func (b *StatusBar) SetUser(userName, roleName string) {
	b.userName = userName
	b.roleName = roleName
}

// SetHubState updates the realtime connection indicator.
func (b *StatusBar) SetHubState(s hub.State) { b.hubState = s }

// SetHints replaces the key hints.
func (b *StatusBar) SetHints(hints []Hint) { b.hints = hints }

// connection renders the hub state segment.
func (b *StatusBar) connection() string {
	switch b.hubState {
	case hub.StateConnected:
		return b.theme.StatusConnOK.Render(styles.StatusIndicators.Online + " live")
	case hub.StateConnecting:
		return b.theme.StatusConnDown.Render(styles.StatusIndicators.Pending + " connecting")
	default:
		return b.theme.StatusConnDown.Render(styles.StatusIndicators.Offline + " offline")
	}
}

// View renders the status bar at the theme's current width.
func (b *StatusBar) View() string {
	left := fmt.Sprintf("%s %s", b.status.Icon(), b.status.String())
	if b.userName != "" {
		left += "  " + b.userName
		if b.roleName != "" {
			left += " (" + b.roleName + ")"
		}
	}
	left += "  " + b.connection()

	var hints []string
	for _, h := range b.hints {
		hints = append(hints, b.theme.ShortcutKey.Render(h.Key)+" "+b.theme.ShortcutDesc.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := b.theme.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return b.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}
