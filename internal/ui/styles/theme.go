// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the visi TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App    lipgloss.Style
	Header lipgloss.Style
	Title  lipgloss.Style
	Brand  lipgloss.Style

	// ==========================================================================
	// SIDEBAR (CONVERSATION LIST) STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	ConversationItem    lipgloss.Style
	ConversationActive  lipgloss.Style
	ConversationPreview lipgloss.Style
	PresenceOnline      lipgloss.Style
	PresenceOffline     lipgloss.Style

	// ==========================================================================
	// MESSAGE PANE STYLES
	// ==========================================================================

	OwnBubble    lipgloss.Style
	PeerBubble   lipgloss.Style
	SenderHeader lipgloss.Style
	Timestamp    lipgloss.Style
	DaySeparator lipgloss.Style
	Attachment   lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	InputLabel       lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar      lipgloss.Style
	StatusConnOK   lipgloss.Style
	StatusConnDown lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style

	// ==========================================================================
	// DIALOG AND FORM STYLES
	// ==========================================================================

	DialogBox     lipgloss.Style
	DialogTitle   lipgloss.Style
	DialogBody    lipgloss.Style
	DialogDanger  lipgloss.Style
	ButtonIdle    lipgloss.Style
	ButtonActive  lipgloss.Style
	ButtonDanger  lipgloss.Style
	FieldLabel    lipgloss.Style
	FieldError    lipgloss.Style
	FormContainer lipgloss.Style

	// ==========================================================================
	// TABLE STYLES (ADMIN CONSOLE)
	// ==========================================================================

	TableHeader      lipgloss.Style
	TableRow         lipgloss.Style
	TableRowSelected lipgloss.Style
	TableRowMarked   lipgloss.Style
	TableBlocked     lipgloss.Style

	// ==========================================================================
	// FEEDBACK STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	LoadingText  lipgloss.Style
	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style
	ToastError   lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastStatus  lipgloss.Style
	HelpText     lipgloss.Style
}

// New creates a Theme sized for the given terminal dimensions. The mode
// string comes from configuration: "dark" and "light" force the palette,
// anything else lets termenv decide.
func New(width, height int, mode string) *Theme {
	output := termenv.DefaultOutput()

	isDark := output.HasDarkBackground()
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	profile := output.ColorProfile()

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
		Width:        width,
		Height:       height,
	}
	t.build()
	return t
}

// Resize updates the layout-dependent styles for new terminal dimensions.
func (t *Theme) Resize(width, height int) {
	t.Width = width
	t.Height = height
	t.build()
}

// build constructs every style from the palette and current dimensions.
func (t *Theme) build() {
	t.App = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1).
		Width(t.Width)

	t.Title = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.Brand = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)

	t.ConversationItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ConversationActive = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceBright).
		Bold(true).
		Padding(0, 1)

	t.ConversationPreview = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.PresenceOnline = lipgloss.NewStyle().Foreground(Emerald)
	t.PresenceOffline = lipgloss.NewStyle().Foreground(TextMuted)

	// Message pane
	t.OwnBubble = lipgloss.NewStyle().
		Background(OwnBubbleBg).
		Foreground(OwnBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OwnBubbleBorder).
		Padding(0, 1)

	t.PeerBubble = lipgloss.NewStyle().
		Background(PeerBubbleBg).
		Foreground(PeerBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(PeerBubbleBorder).
		Padding(0, 1)

	t.SenderHeader = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.DaySeparator = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center)

	t.Attachment = lipgloss.NewStyle().
		Foreground(Cyan).
		Italic(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1).
		Width(t.Width)

	t.StatusConnOK = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusConnDown = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Dialogs and forms
	t.DialogBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(1, 2)

	t.DialogTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.DialogBody = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.DialogDanger = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ButtonIdle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.ButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true).
		Padding(0, 2)

	t.ButtonDanger = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 2)

	t.FieldLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(16)

	t.FieldError = lipgloss.NewStyle().
		Foreground(Rose)

	t.FormContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)

	// Tables
	t.TableHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.TableRow = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.TableRowSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true)

	t.TableRowMarked = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.TableBlocked = lipgloss.NewStyle().
		Foreground(Rose)

	// Feedback
	t.Spinner = lipgloss.NewStyle().
		Foreground(Indigo)

	t.LoadingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ToastError = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.ToastSuccess = lipgloss.NewStyle().
		Foreground(Emerald).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Emerald).
		Padding(0, 1)

	t.ToastStatus = lipgloss.NewStyle().
		Foreground(Cyan).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)

	t.HelpText = lipgloss.NewStyle().
		Foreground(TextMuted)
}
