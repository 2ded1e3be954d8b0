// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the shared visual components for the visi
// TUI: the bottom status bar, non-blocking toasts, and the loading
// spinner. Components are plain Bubble Tea models; the owning view embeds
// them and forwards messages.
package components
