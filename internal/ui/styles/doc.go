// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the visi TUI.
//
// The package exposes an adaptive color palette and a Theme struct that
// bundles every Lip Gloss style the views need. Colors are declared with
// lipgloss.AdaptiveColor so light and dark terminals both render sensibly;
// the configured theme mode can force either variant.
package styles
