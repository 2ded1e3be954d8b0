// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the shared visual components for the visi TUI.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER
// =============================================================================

// Spinner is a small loading indicator with a message, shown while a page
// of history or an admin query is in flight.
type Spinner struct {
	spinner spinner.Model
	theme   *styles.Theme

	message  string
	isActive bool
	started  time.Time
}

// NewSpinner creates a spinner with ASCII-compatible frames.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 8,
	}
	s.Style = theme.Spinner
	return Spinner{spinner: s, theme: theme}
}

// Start activates the spinner with a message and returns its tick command.
func (s *Spinner) Start(message string) tea.Cmd {
	s.message = message
	s.isActive = true
	s.started = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
	s.message = ""
}

// Active reports whether the spinner is running.
func (s *Spinner) Active() bool { return s.isActive }

// Update advances the animation. Returns the follow-up tick command while
// active.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.isActive {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner frame and message, or "" when inactive.
func (s *Spinner) View() string {
	if !s.isActive {
		return ""
	}
	return s.spinner.View() + " " + s.theme.LoadingText.Render(s.message)
}
