// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in, registration, and password reset
// forms. A successful login emits LoggedInMsg; the app model reacts by
// storing the token and authenticating the session.
package login

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/api"
	"github.com/jeranaias/visi-tui/internal/ui/components"
	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

// =============================================================================
// FORM MODES
// =============================================================================

// mode selects which form is visible.
type mode int

const (
	modeLogin mode = iota
	modeRegister
	modeForgot
)

// field indexes per mode. Login: email, password. Register: email,
// password, first, middle, last. Forgot: email.
const (
	loginFieldCount    = 2
	registerFieldCount = 5
	forgotFieldCount   = 1
)

// =============================================================================
// LOGIN MODEL
// =============================================================================

// Model is the Bubble Tea model for the authentication screens.
type Model struct {
	theme *styles.Theme
	svc   Service

	mode   mode
	fields []textinput.Model
	cursor int

	busy    bool
	errLine string
	notice  string

	spinner components.Spinner

	width  int
	height int
}

// New creates the login view showing the sign-in form.
func New(theme *styles.Theme, svc Service) Model {
	m := Model{
		theme:   theme,
		svc:     svc,
		spinner: components.NewSpinner(theme),
	}
	m.setMode(modeLogin)
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// setMode rebuilds the form fields for the given mode.
func (m *Model) setMode(md mode) {
	m.mode = md
	m.cursor = 0
	m.errLine = ""
	m.notice = ""

	newField := func(placeholder string, secret bool) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 200
		in.Width = 40
		in.PromptStyle = m.theme.InputPrompt
		in.PlaceholderStyle = m.theme.InputPlaceholder
		if secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '*'
		}
		return in
	}

	switch md {
	case modeRegister:
		m.fields = []textinput.Model{
			newField("Email", false),
			newField("Password", true),
			newField("First name", false),
			newField("Middle name (optional)", false),
			newField("Last name", false),
		}
	case modeForgot:
		m.fields = []textinput.Model{
			newField("Email", false),
		}
	default:
		m.fields = []textinput.Model{
			newField("Email", false),
			newField("Password", true),
		}
	}
	m.fields[0].Focus()
}

// focusField moves input focus to the field at index i.
func (m *Model) focusField(i int) {
	for j := range m.fields {
		m.fields[j].Blur()
	}
	if i >= 0 && i < len(m.fields) {
		m.cursor = i
		m.fields[i].Focus()
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case LoggedInMsg:
		m.busy = false
		m.spinner.Stop()
		if msg.Err != nil {
			m.errLine = loginErrorText(msg.Err)
			return m, nil
		}
		// The app model consumes the token; nothing more to do here.
		return m, nil

	case RegisteredMsg:
		m.busy = false
		m.spinner.Stop()
		if msg.Err != nil {
			m.errLine = loginErrorText(msg.Err)
			return m, nil
		}
		m.setMode(modeLogin)
		m.notice = "Account created. Check " + msg.Email + " for a confirmation link, then sign in."
		return m, nil

	case ResetRequestedMsg:
		m.busy = false
		m.spinner.Stop()
		if msg.Err != nil {
			m.errLine = loginErrorText(msg.Err)
			return m, nil
		}
		m.setMode(modeLogin)
		m.notice = "If that address exists, a reset email is on the way."
		return m, nil
	}

	if cmd := m.spinner.Update(msg); cmd != nil {
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.focusField((m.cursor + 1) % len(m.fields))
		return m, nil
	case "shift+tab", "up":
		m.focusField((m.cursor - 1 + len(m.fields)) % len(m.fields))
		return m, nil
	case "enter":
		return m.submit()
	case "ctrl+r":
		if m.mode == modeRegister {
			m.setMode(modeLogin)
		} else {
			m.setMode(modeRegister)
		}
		return m, nil
	case "ctrl+f":
		if m.mode == modeForgot {
			m.setMode(modeLogin)
		} else {
			m.setMode(modeForgot)
		}
		return m, nil
	case "esc":
		if m.mode != modeLogin {
			m.setMode(modeLogin)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.cursor], cmd = m.fields[m.cursor].Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMIT
// =============================================================================

// submit validates the visible form and fires the matching command.
func (m Model) submit() (Model, tea.Cmd) {
	value := func(i int) string { return strings.TrimSpace(m.fields[i].Value()) }

	switch m.mode {
	case modeRegister:
		email, password := value(0), m.fields[1].Value()
		first, middle, last := value(2), value(3), value(4)
		if email == "" || password == "" || first == "" || last == "" {
			m.errLine = "Email, password, first and last name are required."
			return m, nil
		}
		m.busy = true
		m.errLine = ""
		return m, tea.Batch(
			m.spinner.Start("creating account"),
			doRegister(m.svc, api.RegisterRequest{
				Email:      email,
				Password:   password,
				FirstName:  first,
				MiddleName: middle,
				LastName:   last,
			}),
		)

	case modeForgot:
		email := value(0)
		if email == "" {
			m.errLine = "Enter the account email."
			return m, nil
		}
		m.busy = true
		m.errLine = ""
		return m, tea.Batch(m.spinner.Start("requesting reset"), doForgotPassword(m.svc, email))

	default:
		email, password := value(0), m.fields[1].Value()
		if email == "" || password == "" {
			m.errLine = "Email and password are required."
			return m, nil
		}
		m.busy = true
		m.errLine = ""
		return m, tea.Batch(m.spinner.Start("signing in"), doLogin(m.svc, email, password))
	}
}

// loginErrorText maps API failures to a line a person can act on.
func loginErrorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == 400 || apiErr.Status == 401:
			return "Sign-in failed. Check the email and password."
		case apiErr.Message != "":
			return apiErr.Message
		}
	}
	return "Request failed: " + err.Error()
}
