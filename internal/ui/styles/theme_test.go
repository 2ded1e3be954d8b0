// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeForcesMode(t *testing.T) {
	dark := New(80, 24, "dark")
	if !dark.IsDark {
		t.Error("mode \"dark\" should force a dark palette")
	}
	light := New(80, 24, "light")
	if light.IsDark {
		t.Error("mode \"light\" should force a light palette")
	}
}

func TestThemeResize(t *testing.T) {
	th := New(80, 24, "dark")
	th.Resize(120, 40)
	if th.Width != 120 || th.Height != 40 {
		t.Errorf("dimensions = %dx%d, want 120x40", th.Width, th.Height)
	}
	if th.StatusBar.GetWidth() != 120 {
		t.Errorf("status bar width = %d, want 120", th.StatusBar.GetWidth())
	}
}

func TestStatusIndicatorsDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, glyph := range []string{
		StatusIndicators.Online,
		StatusIndicators.Offline,
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Pending,
	} {
		if seen[glyph] {
			t.Errorf("indicator glyph %q reused", glyph)
		}
		seen[glyph] = true
	}
}
