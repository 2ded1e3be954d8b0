// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the shared visual components for the visi TUI.
//
// This file implements non-blocking toasts. Unlike modal error dialogs,
// toasts appear above the status bar and auto-dismiss, so the user keeps
// typing while a failed request reports itself.
package components

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastStatus is an informational toast (cyan)
	ToastStatus ToastKind = iota
	// ToastError is an error toast (rose)
	ToastError
	// ToastSuccess is a success toast (emerald)
	ToastSuccess
)

// StatusToastDuration is the auto-dismiss duration for status toasts.
const StatusToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts
// (longer, so there is time to read them).
const ErrorToastDuration = 8 * time.Second

// =============================================================================
// TOAST
// =============================================================================

// Toast is a single non-blocking notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

var (
	toastIDMu sync.Mutex
	toastID   int
)

func nextToastID() int {
	toastIDMu.Lock()
	defer toastIDMu.Unlock()
	toastID++
	return toastID
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastError,
		CreatedAt: time.Now(),
		Duration:  ErrorToastDuration,
	}
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastSuccess,
		CreatedAt: time.Now(),
		Duration:  StatusToastDuration,
	}
}

// NewStatusToast creates an informational toast.
func NewStatusToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastStatus,
		CreatedAt: time.Now(),
		Duration:  StatusToastDuration,
	}
}

// Expired reports whether the toast has outlived its duration.
func (t Toast) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST STACK
// =============================================================================

// maxVisibleToasts caps how many toasts stack before the oldest is dropped.
const maxVisibleToasts = 3

// ToastExpiredMsg asks the stack to drop expired toasts. Scheduled by Push.
type ToastExpiredMsg struct{ ID int }

// ToastStack manages the visible toasts for a view.
type ToastStack struct {
	theme  *styles.Theme
	toasts []Toast
}

// NewToastStack creates an empty stack.
func NewToastStack(theme *styles.Theme) ToastStack {
	return ToastStack{theme: theme}
}

// Push adds a toast and returns the command that will expire it.
func (s *ToastStack) Push(t Toast) tea.Cmd {
	s.toasts = append(s.toasts, t)
	if len(s.toasts) > maxVisibleToasts {
		s.toasts = s.toasts[len(s.toasts)-maxVisibleToasts:]
	}
	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Update handles expiry messages. Other messages pass through untouched.
func (s *ToastStack) Update(msg tea.Msg) {
	if exp, ok := msg.(ToastExpiredMsg); ok {
		s.Dismiss(exp.ID)
	}
}

// Dismiss removes the toast with the given ID, if still visible.
func (s *ToastStack) Dismiss(id int) {
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// DismissAll clears the stack.
func (s *ToastStack) DismissAll() { s.toasts = nil }

// Len returns the number of visible toasts.
func (s *ToastStack) Len() int { return len(s.toasts) }

// View renders the stack, newest last, one boxed line per toast.
func (s *ToastStack) View() string {
	if len(s.toasts) == 0 {
		return ""
	}
	out := ""
	for i, t := range s.toasts {
		style := s.theme.ToastStatus
		prefix := styles.StatusIndicators.Pending
		switch t.Kind {
		case ToastError:
			style = s.theme.ToastError
			prefix = styles.StatusIndicators.Error
		case ToastSuccess:
			style = s.theme.ToastSuccess
			prefix = styles.StatusIndicators.Success
		}
		if i > 0 {
			out += "\n"
		}
		out += style.Render(prefix + " " + t.Message)
	}
	return out
}
