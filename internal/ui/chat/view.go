// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/visi-tui/internal/model"
	"github.com/jeranaias/visi-tui/internal/util"
)

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// renderMessages rebuilds the viewport content from the pane timeline.
func (m *Model) renderMessages(gotoBottom bool) {
	m.viewport.SetContent(m.messageContent())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// renderPreservingScroll rebuilds the content after a history prepend and
// keeps the previously visible messages in place.
func (m *Model) renderPreservingScroll() {
	before := m.viewport.TotalLineCount()
	offset := m.viewport.YOffset
	m.viewport.SetContent(m.messageContent())
	grown := m.viewport.TotalLineCount() - before
	if grown > 0 {
		m.viewport.SetYOffset(offset + grown)
	}
}

// messageContent renders the timeline: day separators, sender headers for
// grouped peer messages, and aligned bubbles.
func (m *Model) messageContent() string {
	msgs := m.pane.Messages()
	if len(msgs) == 0 {
		if m.activeID == "" {
			return m.theme.HelpText.Render("Select a conversation, or press C-n to start one.")
		}
		return m.theme.HelpText.Render("No messages yet. Say hello.")
	}

	timeline := m.pane.Timeline()
	width := m.viewport.Width
	var b strings.Builder

	for i, msg := range msgs {
		if timeline.ShowDaySeparator(i) {
			sep := msg.CreationTime().Format("Mon, Jan 2 2006")
			b.WriteString(m.theme.DaySeparator.Width(width).Render("--- " + sep + " ---"))
			b.WriteString("\n")
		}

		own := msg.SenderID == m.selfID
		if !own && timeline.ShowSenderHeader(i) {
			b.WriteString(m.theme.SenderHeader.Render(msg.SenderName()))
			b.WriteString("\n")
		}

		b.WriteString(m.renderBubble(msg, i, own, width))
		b.WriteString("\n")
	}
	return b.String()
}

// renderBubble renders one message bubble, right-aligned for own
// messages, with a selection marker while the message cursor is active.
func (m *Model) renderBubble(msg *model.Message, index int, own bool, width int) string {
	body := msg.Content
	if label := msg.MessageType.Label(); label != "" {
		body = label + " " + body
	}
	stamp := m.theme.Timestamp.Render(msg.CreationTime().Format("15:04"))

	style := m.theme.PeerBubble
	if own {
		style = m.theme.OwnBubble
	}
	maxBubble := width * 3 / 4
	if maxBubble < 10 {
		maxBubble = width
	}
	bubble := style.MaxWidth(maxBubble).Render(body) + " " + stamp

	selected := m.focus == focusMessages && index == m.msgCursor
	marker := "  "
	if selected {
		marker = m.theme.Brand.Render("> ")
	}

	if own {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(bubble + marker)
	}
	return marker + bubble
}

// =============================================================================
// SIDEBAR RENDERING
// =============================================================================

// renderSidebar renders the conversation list column.
func (m *Model) renderSidebar(height int) string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Conversations"))
	b.WriteString("\n\n")

	if len(m.conversations) == 0 {
		b.WriteString(m.theme.HelpText.Render("none yet"))
	}

	for i, conv := range m.conversations {
		title := util.TruncateWidth(conv.Title(m.selfID), sidebarWidth-6)

		presence := m.theme.PresenceOffline.Render("o")
		if conv.IsOnline {
			presence = m.theme.PresenceOnline.Render("*")
		}

		line := fmt.Sprintf("%s %s", presence, title)
		if n := m.unread[conv.ConversationID]; n > 0 {
			line += m.theme.Brand.Render(fmt.Sprintf(" (%d)", n))
		}

		style := m.theme.ConversationItem
		if conv.ConversationID == m.activeID {
			style = m.theme.ConversationActive
		} else if m.focus == focusSidebar && i == m.cursor {
			style = m.theme.ConversationActive
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if preview := conv.Preview(sidebarWidth - 4); preview != "" {
			b.WriteString(m.theme.ConversationPreview.Render(preview))
			b.WriteString("\n")
		}
	}

	return m.theme.Sidebar.Width(sidebarWidth).Height(height).Render(b.String())
}

// =============================================================================
// DIALOG RENDERING
// =============================================================================

// renderNewChatDialog renders the new-conversation form.
func (m *Model) renderNewChatDialog() string {
	var b strings.Builder
	b.WriteString(m.theme.DialogTitle.Render("New conversation"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.FieldLabel.Render("Name"))
	b.WriteString(m.newChatName.View())
	b.WriteString("\n")
	b.WriteString(m.theme.FieldLabel.Render("Members"))
	b.WriteString(m.newChatMembers.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.HelpText.Render("Tab switch field - Enter create - Esc cancel"))
	return m.theme.DialogBox.Render(b.String())
}

// renderAccountDialog renders the account form, or the delete
// confirmation once the dialog is in its destructive stage.
func (m *Model) renderAccountDialog() string {
	var b strings.Builder

	if m.acctDeleting {
		b.WriteString(m.theme.DialogTitle.Render("Delete account"))
		b.WriteString("\n\n")
		b.WriteString("This permanently deletes " + m.selfEmail + " and everything in it.\n")
		b.WriteString(m.theme.FieldLabel.Render("Confirm"))
		b.WriteString(m.acctConfirm.View())
		b.WriteString("\n")
		if m.acctErr != "" {
			b.WriteString(m.theme.FieldError.Render(m.acctErr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.theme.HelpText.Render("Enter delete - Esc back"))
		return m.theme.DialogBox.Render(b.String())
	}

	b.WriteString(m.theme.DialogTitle.Render("Account"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.FieldLabel.Render("Username"))
	b.WriteString(m.acctUserName.View())
	b.WriteString("\n")
	b.WriteString(m.theme.FieldLabel.Render("First name"))
	b.WriteString(m.acctFirst.View())
	b.WriteString("\n")
	b.WriteString(m.theme.FieldLabel.Render("Last name"))
	b.WriteString(m.acctLast.View())
	b.WriteString("\n")
	if m.acctErr != "" {
		b.WriteString(m.theme.FieldError.Render(m.acctErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.HelpText.Render("Tab field - Enter save - C-x delete account - Esc close"))
	return m.theme.DialogBox.Render(b.String())
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat layout: sidebar, message pane, composer.
func (m Model) View() string {
	paneHeight := m.height - 3
	if paneHeight < 4 {
		paneHeight = 4
	}

	if m.focus == focusNewChat {
		return lipgloss.Place(m.width, paneHeight, lipgloss.Center, lipgloss.Center, m.renderNewChatDialog())
	}
	if m.focus == focusAccount {
		return lipgloss.Place(m.width, paneHeight, lipgloss.Center, lipgloss.Center, m.renderAccountDialog())
	}

	sidebar := m.renderSidebar(paneHeight)

	var right strings.Builder
	if conv := m.ActiveConversation(); conv != nil {
		right.WriteString(m.theme.Header.Width(m.viewport.Width).Render(m.theme.Title.Render(conv.Title(m.selfID))))
		right.WriteString("\n")
	}
	right.WriteString(m.viewport.View())
	right.WriteString("\n")
	if m.spinner.Active() {
		right.WriteString(m.spinner.View())
		right.WriteString("\n")
	}
	if m.toasts.Len() > 0 {
		right.WriteString(m.toasts.View())
		right.WriteString("\n")
	}
	right.WriteString(m.theme.InputContainer.Width(m.viewport.Width).Render(m.input.View()))

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", right.String())
}
