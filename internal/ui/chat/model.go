// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
package chat

import (
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/api"
	"github.com/jeranaias/visi-tui/internal/hub"
	"github.com/jeranaias/visi-tui/internal/model"
	"github.com/jeranaias/visi-tui/internal/ui/components"
	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS STATES
// =============================================================================

// focusArea tracks which panel receives key input.
type focusArea int

const (
	focusSidebar focusArea = iota
	focusComposer
	focusMessages
	focusNewChat
	focusAccount
)

// sidebarWidth is the fixed column width of the conversation list.
const sidebarWidth = 28

// =============================================================================
// HUB EVENT DELIVERY
// =============================================================================

// HubEventMsg wraps a realtime hub event for the update loop. The app
// model forwards these via program.Send so all mutations stay on the
// update goroutine.
type HubEventMsg struct {
	Event hub.Event
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme *styles.Theme
	svc   Service
	hub   GroupHub

	// Signed-in identity, used for own-message alignment, delete
	// permission, and the account dialog.
	selfID       string
	selfName     string
	selfEmail    string
	selfUserName string
	selfFirst    string
	selfLast     string
	isAdmin      bool

	keyMap KeyMap
	focus  focusArea

	// Sidebar
	conversations []model.Conversation
	cursor        int
	activeID      string
	unread        map[string]int

	// Message pane
	pane      *Pane
	viewport  viewport.Model
	msgCursor int

	// Composer
	input textinput.Model

	// New-conversation dialog
	newChatName    textinput.Model
	newChatMembers textinput.Model
	newChatField   int

	// Account dialog. acctDeleting switches it from the edit form to the
	// typed-email delete confirmation.
	acctUserName textinput.Model
	acctFirst    textinput.Model
	acctLast     textinput.Model
	acctConfirm  textinput.Model
	acctField    int
	acctDeleting bool
	acctErr      string

	// Feedback
	spinner components.Spinner
	toasts  components.ToastStack

	width    int
	height   int
	pageSize int
	sending  bool
}

// New creates the chat view. The profile identifies the signed-in user;
// pageSize is the configured history page size.
func New(theme *styles.Theme, svc Service, groupHub GroupHub, profile *model.UserProfile, pageSize int) Model {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.TextStyle = theme.InputText
	input.CharLimit = 2000
	input.Focus()

	name := textinput.New()
	name.Placeholder = "Group name (optional)"
	name.CharLimit = 100

	members := textinput.New()
	members.Placeholder = "Member IDs, comma separated"
	members.CharLimit = 500

	acctUserName := textinput.New()
	acctUserName.Placeholder = "Username"
	acctUserName.CharLimit = 100

	acctFirst := textinput.New()
	acctFirst.Placeholder = "First name"
	acctFirst.CharLimit = 100

	acctLast := textinput.New()
	acctLast.Placeholder = "Last name"
	acctLast.CharLimit = 100

	acctConfirm := textinput.New()
	acctConfirm.Placeholder = "Type your email to confirm"
	acctConfirm.CharLimit = 200

	m := Model{
		theme:          theme,
		svc:            svc,
		hub:            groupHub,
		keyMap:         DefaultKeyMap(),
		focus:          focusComposer,
		unread:         make(map[string]int),
		pane:           NewPane(pageSize),
		viewport:       viewport.New(80, 20),
		input:          input,
		newChatName:    name,
		newChatMembers: members,
		acctUserName:   acctUserName,
		acctFirst:      acctFirst,
		acctLast:       acctLast,
		acctConfirm:    acctConfirm,
		spinner:        components.NewSpinner(theme),
		toasts:         components.NewToastStack(theme),
		pageSize:       pageSize,
	}
	if profile != nil {
		m.selfID = profile.UserID
		m.selfName = profile.DisplayName()
		m.selfEmail = profile.Email
		m.selfUserName = profile.UserName
		m.selfFirst = profile.FirstName
		m.selfLast = profile.LastName
		m.isAdmin = profile.IsAdmin()
	}
	return m
}

// Init fetches the conversation list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadConversations(m.svc), textinput.Blink)
}

// ActiveConversation returns the open conversation, or nil.
func (m *Model) ActiveConversation() *model.Conversation {
	for i := range m.conversations {
		if m.conversations[i].ConversationID == m.activeID {
			return &m.conversations[i]
		}
	}
	return nil
}

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - sidebarWidth - 3
	if m.viewport.Width < 20 {
		m.viewport.Width = 20
	}
	m.viewport.Height = height - 4
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.Width = m.viewport.Width - 4
	m.renderMessages(false)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.ToastExpiredMsg:
		m.toasts.Update(msg)
		return m, nil

	case ConversationsMsg:
		m.spinner.Stop()
		if msg.Err != nil {
			cmds = append(cmds, m.toasts.Push(components.NewErrorToast("loading conversations: "+msg.Err.Error())))
			return m, tea.Batch(cmds...)
		}
		m.conversations = msg.Conversations
		if m.cursor >= len(m.conversations) {
			m.cursor = 0
		}
		// Open the first conversation when none is active yet.
		if m.activeID == "" && len(m.conversations) > 0 {
			cmds = append(cmds, m.openConversation(m.conversations[0].ConversationID))
		}
		return m, tea.Batch(cmds...)

	case HistoryMsg:
		return m.handleHistory(msg)

	case SentMsg:
		m.sending = false
		if msg.Err != nil {
			return m, m.toasts.Push(components.NewErrorToast("sending: " + msg.Err.Error()))
		}
		if m.pane.Apply(LocalSend{Message: msg.Message}) {
			m.renderMessages(true)
		}
		return m, nil

	case DeletedMsg:
		if msg.Err != nil {
			return m, m.toasts.Push(components.NewErrorToast("deleting: " + msg.Err.Error()))
		}
		if m.pane.Apply(Delete{MessageID: msg.MessageID}) {
			m.clampMsgCursor()
			m.renderMessages(false)
		}
		return m, nil

	case CreatedMsg:
		if msg.Err != nil {
			return m, m.toasts.Push(components.NewErrorToast("creating conversation: " + msg.Err.Error()))
		}
		if msg.Conversation != nil {
			m.conversations = append([]model.Conversation{*msg.Conversation}, m.conversations...)
			m.cursor = 0
			return m, m.openConversation(msg.Conversation.ConversationID)
		}
		return m, nil

	case ProfileSavedMsg:
		if msg.Err != nil {
			return m, m.toasts.Push(components.NewErrorToast("saving profile: " + msg.Err.Error()))
		}
		m.selfUserName = msg.Req.UserName
		m.selfFirst = msg.Req.FirstName
		m.selfLast = msg.Req.LastName
		if name := strings.TrimSpace(msg.Req.FirstName + " " + msg.Req.LastName); name != "" {
			m.selfName = name
		} else {
			m.selfName = msg.Req.UserName
		}
		return m, m.toasts.Push(components.NewSuccessToast("profile updated"))

	case AccountDeletedMsg:
		// Success never reaches this view: the app model logs out first.
		if msg.Err != nil {
			return m, m.toasts.Push(components.NewErrorToast("deleting account: " + msg.Err.Error()))
		}
		return m, nil

	case HubEventMsg:
		return m.handleHubEvent(msg.Event)
	}

	if cmd := m.spinner.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleHistory merges a fetched page through the reducer, discarding
// stale responses.
func (m Model) handleHistory(msg HistoryMsg) (Model, tea.Cmd) {
	current := msg.ConversationID == m.pane.ConversationID() && msg.Generation == m.pane.Generation()
	if msg.Err != nil {
		if !current {
			// A failure for an abandoned fetch is not worth reporting.
			return m, nil
		}
		m.pane.SetLoading(false)
		m.spinner.Stop()
		return m, m.toasts.Push(components.NewErrorToast("loading messages: " + msg.Err.Error()))
	}

	firstPage := m.pane.Len() == 0
	changed := m.pane.Apply(HistoryPage{
		ConversationID: msg.ConversationID,
		Generation:     msg.Generation,
		Messages:       msg.Messages,
	})
	if current {
		m.spinner.Stop()
	}
	if changed {
		if firstPage {
			m.renderMessages(true)
		} else {
			m.renderPreservingScroll()
		}
	}
	return m, nil
}

// handleHubEvent applies a realtime event.
func (m Model) handleHubEvent(e hub.Event) (Model, tea.Cmd) {
	switch ev := e.(type) {
	case hub.MessageReceived:
		msg := ev.Message
		if msg.ConversationID == m.activeID {
			if m.pane.Apply(LivePush{Message: msg}) {
				m.renderMessages(m.viewport.AtBottom())
			}
		} else if msg.ConversationID != "" {
			m.unread[msg.ConversationID]++
		}
		m.updatePreview(msg)
		return m, nil

	case hub.MessageDeleted:
		if m.pane.Apply(Delete{MessageID: ev.MessageID}) {
			m.clampMsgCursor()
			m.renderMessages(false)
		}
		return m, nil

	case hub.UserOnlineStatusChanged:
		for i := range m.conversations {
			m.conversations[i].SetMemberOnline(ev.UserID, ev.IsOnline)
		}
		return m, nil
	}
	return m, nil
}

// updatePreview refreshes the sidebar preview for a conversation that
// just received a message.
func (m *Model) updatePreview(msg *model.Message) {
	if msg == nil {
		return
	}
	for i := range m.conversations {
		if m.conversations[i].ConversationID == msg.ConversationID {
			m.conversations[i].LastMessage = msg
			return
		}
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.focus == focusNewChat {
		return m.handleNewChatKey(msg)
	}
	if m.focus == focusAccount {
		return m.handleAccountKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.FocusNext):
		m.cycleFocus()
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		m.focus = focusNewChat
		m.newChatField = 0
		m.newChatName.SetValue("")
		m.newChatMembers.SetValue("")
		m.newChatName.Focus()
		m.newChatMembers.Blur()
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keyMap.Account):
		m.openAccount()
		return m, nil

	case key.Matches(msg, m.keyMap.LoadMore):
		return m, m.fetchNextPage()
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusMessages:
		return m.handleMessagesKey(msg)
	default:
		return m.handleComposerKey(msg)
	}
}

// cycleFocus moves focus composer -> sidebar -> messages -> composer.
func (m *Model) cycleFocus() {
	switch m.focus {
	case focusComposer:
		m.focus = focusSidebar
		m.input.Blur()
	case focusSidebar:
		m.focus = focusMessages
		m.msgCursor = m.pane.Len() - 1
	default:
		m.focus = focusComposer
		m.input.Focus()
	}
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < len(m.conversations)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keyMap.Select):
		if m.cursor < len(m.conversations) {
			return m, m.openConversation(m.conversations[m.cursor].ConversationID)
		}
	}
	return m, nil
}

func (m Model) handleMessagesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.msgCursor > 0 {
			m.msgCursor--
			m.renderMessages(false)
		} else {
			// Scrolling past the top pulls in the next history page.
			return m, m.fetchNextPage()
		}
	case key.Matches(msg, m.keyMap.Down):
		if m.msgCursor < m.pane.Len()-1 {
			m.msgCursor++
			m.renderMessages(false)
		}
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
	case key.Matches(msg, m.keyMap.End):
		m.msgCursor = m.pane.Len() - 1
		m.renderMessages(true)
	case key.Matches(msg, m.keyMap.Delete):
		return m, m.deleteSelected()
	case key.Matches(msg, m.keyMap.Cancel):
		m.focus = focusComposer
		m.input.Focus()
		m.renderMessages(false)
	}
	return m, nil
}

func (m Model) handleComposerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m, m.submitComposer()
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleNewChatKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		m.focus = focusComposer
		m.input.Focus()
		return m, nil

	case key.Matches(msg, m.keyMap.FocusNext):
		m.newChatField = (m.newChatField + 1) % 2
		if m.newChatField == 0 {
			m.newChatName.Focus()
			m.newChatMembers.Blur()
		} else {
			m.newChatName.Blur()
			m.newChatMembers.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		members := splitIDs(m.newChatMembers.Value())
		if len(members) == 0 {
			return m, m.toasts.Push(components.NewErrorToast("at least one member is required"))
		}
		m.focus = focusComposer
		m.input.Focus()
		return m, createConversation(m.svc, strings.TrimSpace(m.newChatName.Value()), members)
	}

	var cmd tea.Cmd
	if m.newChatField == 0 {
		m.newChatName, cmd = m.newChatName.Update(msg)
	} else {
		m.newChatMembers, cmd = m.newChatMembers.Update(msg)
	}
	return m, cmd
}

// openAccount shows the account dialog prefilled with the current
// identity.
func (m *Model) openAccount() {
	m.focus = focusAccount
	m.acctDeleting = false
	m.acctErr = ""
	m.acctField = 0
	m.acctUserName.SetValue(m.selfUserName)
	m.acctFirst.SetValue(m.selfFirst)
	m.acctLast.SetValue(m.selfLast)
	m.acctConfirm.SetValue("")
	m.focusAccountField()
	m.input.Blur()
}

// closeAccount returns focus to the composer.
func (m *Model) closeAccount() {
	m.focus = focusComposer
	m.acctDeleting = false
	m.acctErr = ""
	m.input.Focus()
}

// focusAccountField moves input focus to the edit field at acctField.
func (m *Model) focusAccountField() {
	m.acctUserName.Blur()
	m.acctFirst.Blur()
	m.acctLast.Blur()
	switch m.acctField {
	case 0:
		m.acctUserName.Focus()
	case 1:
		m.acctFirst.Focus()
	default:
		m.acctLast.Focus()
	}
}

func (m Model) handleAccountKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.acctDeleting {
		return m.handleAccountDeleteKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		m.closeAccount()
		return m, nil

	case key.Matches(msg, m.keyMap.FocusNext):
		m.acctField = (m.acctField + 1) % 3
		m.focusAccountField()
		return m, nil

	case key.Matches(msg, m.keyMap.DeleteAccount):
		m.acctDeleting = true
		m.acctErr = ""
		m.acctConfirm.SetValue("")
		m.acctConfirm.Focus()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		userName := strings.TrimSpace(m.acctUserName.Value())
		first := strings.TrimSpace(m.acctFirst.Value())
		last := strings.TrimSpace(m.acctLast.Value())
		if userName == "" {
			m.acctErr = "Username is required."
			return m, nil
		}
		m.closeAccount()
		return m, updateProfile(m.svc, api.UpdateProfileRequest{
			UserName:  userName,
			FirstName: first,
			LastName:  last,
		})
	}

	var cmd tea.Cmd
	switch m.acctField {
	case 0:
		m.acctUserName, cmd = m.acctUserName.Update(msg)
	case 1:
		m.acctFirst, cmd = m.acctFirst.Update(msg)
	default:
		m.acctLast, cmd = m.acctLast.Update(msg)
	}
	return m, cmd
}

// handleAccountDeleteKey gates the account delete behind re-typing the
// account's own email, matching the admin console's confirmation.
func (m Model) handleAccountDeleteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		m.acctDeleting = false
		m.acctErr = ""
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		typed := strings.TrimSpace(m.acctConfirm.Value())
		if !strings.EqualFold(typed, m.selfEmail) {
			m.acctErr = "That does not match your email."
			return m, nil
		}
		m.closeAccount()
		return m, deleteAccount(m.svc)
	}

	var cmd tea.Cmd
	m.acctConfirm, cmd = m.acctConfirm.Update(msg)
	return m, cmd
}

// splitIDs parses a comma-separated ID list, dropping empties.
func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// =============================================================================
// ACTIONS
// =============================================================================

// openConversation switches the pane to a conversation: leave the old hub
// group, reset pagination, join the new group, fetch the first page.
func (m *Model) openConversation(conversationID string) tea.Cmd {
	if conversationID == m.activeID && m.pane.ConversationID() == conversationID {
		return nil
	}
	if m.activeID != "" && m.hub != nil {
		if err := m.hub.LeaveGroup(m.activeID); err != nil {
			log.Printf("chat: leaving group %s: %v", m.activeID, err)
		}
	}
	m.activeID = conversationID
	delete(m.unread, conversationID)
	m.pane.Reset(conversationID)
	m.msgCursor = 0
	m.renderMessages(false)

	if m.hub != nil {
		if err := m.hub.JoinGroup(conversationID); err != nil {
			log.Printf("chat: joining group %s: %v", conversationID, err)
		}
	}
	return m.fetchNextPage()
}

// fetchNextPage requests the next history page, if one is expected and
// none is already in flight.
func (m *Model) fetchNextPage() tea.Cmd {
	if m.activeID == "" || !m.pane.HasMore() || m.pane.Loading() {
		return nil
	}
	m.pane.SetLoading(true)
	return tea.Batch(
		m.spinner.Start("loading messages"),
		loadHistory(m.svc, m.activeID, m.pane.Generation(), m.pane.NextPage(), m.pageSize),
	)
}

// submitComposer sends the composer content.
func (m *Model) submitComposer() tea.Cmd {
	content := strings.TrimSpace(m.input.Value())
	if content == "" || m.activeID == "" || m.sending {
		return nil
	}
	m.sending = true
	m.input.SetValue("")
	return sendMessage(m.svc, m.activeID, content)
}

// deleteSelected deletes the message under the cursor. Only own messages
// (or any message, for admins) may be deleted.
func (m *Model) deleteSelected() tea.Cmd {
	msgs := m.pane.Messages()
	if m.msgCursor < 0 || m.msgCursor >= len(msgs) {
		return nil
	}
	target := msgs[m.msgCursor]
	if target.SenderID != m.selfID && !m.isAdmin {
		return m.toasts.Push(components.NewErrorToast("you can only delete your own messages"))
	}
	// Remove optimistically; the server reply and the hub's delete
	// notification both tolerate the message already being gone.
	if m.pane.Apply(Delete{MessageID: target.MessageID}) {
		m.clampMsgCursor()
		m.renderMessages(false)
	}
	return deleteMessage(m.svc, target.MessageID, m.activeID)
}

// clampMsgCursor keeps the selection inside the timeline after removals.
func (m *Model) clampMsgCursor() {
	if m.msgCursor >= m.pane.Len() {
		m.msgCursor = m.pane.Len() - 1
	}
	if m.msgCursor < 0 {
		m.msgCursor = 0
	}
}
