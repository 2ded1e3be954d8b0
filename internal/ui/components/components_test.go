// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/visi-tui/internal/hub"
	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.New(80, 24, "dark")
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusBar_ViewShowsUserAndConnection(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetUser("alice", "admin")
	bar.SetHubState(hub.StateConnected)
	bar.SetHints([]Hint{{Key: "tab", Desc: "switch"}})

	view := bar.View()
	if !strings.Contains(view, "alice") {
		t.Error("view should contain the user name")
	}
	if !strings.Contains(view, "admin") {
		t.Error("view should contain the role")
	}
	if !strings.Contains(view, "live") {
		t.Error("connected hub should render as live")
	}
	if !strings.Contains(view, "switch") {
		t.Error("view should contain the hint text")
	}
}

func TestStatusBar_OfflineIndicator(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetHubState(hub.StateDisconnected)
	if !strings.Contains(bar.View(), "offline") {
		t.Error("disconnected hub should render as offline")
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusReady:   "Ready",
		StatusLoading: "Loading...",
		StatusSending: "Sending...",
		StatusError:   "Error",
		StatusOffline: "Offline",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}

// =============================================================================
// TOAST TESTS
// =============================================================================

func TestToastStack_PushAndDismiss(t *testing.T) {
	stack := NewToastStack(testTheme())

	toast := NewErrorToast("delete failed")
	if cmd := stack.Push(toast); cmd == nil {
		t.Fatal("Push should schedule an expiry command")
	}
	if stack.Len() != 1 {
		t.Fatalf("len = %d, want 1", stack.Len())
	}
	if !strings.Contains(stack.View(), "delete failed") {
		t.Error("view should contain the toast message")
	}

	stack.Update(ToastExpiredMsg{ID: toast.ID})
	if stack.Len() != 0 {
		t.Errorf("len = %d after expiry, want 0", stack.Len())
	}
}

func TestToastStack_CapsVisibleToasts(t *testing.T) {
	stack := NewToastStack(testTheme())
	for i := 0; i < maxVisibleToasts+2; i++ {
		stack.Push(NewStatusToast("note"))
	}
	if stack.Len() != maxVisibleToasts {
		t.Errorf("len = %d, want cap %d", stack.Len(), maxVisibleToasts)
	}
}

func TestToastExpired(t *testing.T) {
	toast := NewStatusToast("hello")
	if toast.Expired(toast.CreatedAt) {
		t.Error("fresh toast should not be expired")
	}
	if !toast.Expired(toast.CreatedAt.Add(StatusToastDuration + time.Second)) {
		t.Error("old toast should be expired")
	}
}

func TestToastIDsUnique(t *testing.T) {
	a := NewErrorToast("a")
	b := NewErrorToast("b")
	if a.ID == b.ID {
		t.Error("toast IDs should be unique")
	}
}

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestSpinner_Lifecycle(t *testing.T) {
	sp := NewSpinner(testTheme())
	if sp.Active() {
		t.Error("new spinner should be inactive")
	}
	if cmd := sp.Start("loading history"); cmd == nil {
		t.Fatal("Start should return a tick command")
	}
	if !sp.Active() {
		t.Error("spinner should be active after Start")
	}
	if !strings.Contains(sp.View(), "loading history") {
		t.Error("view should show the message")
	}
	sp.Stop()
	if sp.Active() || sp.View() != "" {
		t.Error("stopped spinner should render nothing")
	}
}
