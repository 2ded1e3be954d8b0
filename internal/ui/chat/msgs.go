// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/api"
	"github.com/jeranaias/visi-tui/internal/model"
)

// requestTimeout bounds every command-issued API call.
const requestTimeout = 30 * time.Second

// =============================================================================
// SERVICE DEPENDENCIES
// =============================================================================

// Service is the slice of the API client the chat view uses. Narrowed to
// an interface so tests can substitute a fake.
type Service interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	CreateConversation(ctx context.Context, groupName string, memberIDs []string) (*model.Conversation, error)
	GetMessages(ctx context.Context, conversationID string, pageNumber, pageSize int) ([]*model.Message, error)
	SendMessage(ctx context.Context, conversationID, content string) (*model.Message, error)
	DeleteMessage(ctx context.Context, messageID, conversationID string) error
	UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) error
	DeleteAccount(ctx context.Context) error
}

// GroupHub is the slice of the chat hub connection the view drives:
// joining and leaving per-conversation groups.
type GroupHub interface {
	JoinGroup(groupID string) error
	LeaveGroup(groupID string) error
}

// =============================================================================
// TEA MESSAGES
// =============================================================================

// ConversationsMsg carries the refreshed conversation list.
type ConversationsMsg struct {
	Conversations []model.Conversation
	Err           error
}

// HistoryMsg carries one fetched page of messages, tagged with the
// conversation and generation of the fetch that produced it.
type HistoryMsg struct {
	ConversationID string
	Generation     int
	Messages       []*model.Message
	Err            error
}

// SentMsg carries the server's echo of a sent message.
type SentMsg struct {
	Message *model.Message
	Err     error
}

// DeletedMsg reports the outcome of a local delete request. The hub also
// pushes MessageDeleted, so the reducer tolerates seeing both.
type DeletedMsg struct {
	MessageID string
	Err       error
}

// CreatedMsg carries a freshly created conversation.
type CreatedMsg struct {
	Conversation *model.Conversation
	Err          error
}

// ProfileSavedMsg reports the outcome of a profile update from the
// account dialog. Req echoes what was sent so the view can refresh its
// identity copies without a refetch.
type ProfileSavedMsg struct {
	Req api.UpdateProfileRequest
	Err error
}

// AccountDeletedMsg reports the outcome of deleting the signed-in
// account. The app model intercepts the success case and logs out.
type AccountDeletedMsg struct {
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

// loadConversations fetches the conversation list.
func loadConversations(svc Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		convs, err := svc.ListConversations(ctx)
		return ConversationsMsg{Conversations: convs, Err: err}
	}
}

// loadHistory fetches one page of messages for a conversation. The
// generation rides along so the reducer can reject the response if the
// user switched conversations in the meantime.
func loadHistory(svc Service, conversationID string, generation, page, pageSize int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msgs, err := svc.GetMessages(ctx, conversationID, page, pageSize)
		return HistoryMsg{
			ConversationID: conversationID,
			Generation:     generation,
			Messages:       msgs,
			Err:            err,
		}
	}
}

// sendMessage posts a message to the active conversation.
func sendMessage(svc Service, conversationID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msg, err := svc.SendMessage(ctx, conversationID, content)
		return SentMsg{Message: msg, Err: err}
	}
}

// deleteMessage removes a message from a conversation.
func deleteMessage(svc Service, messageID, conversationID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := svc.DeleteMessage(ctx, messageID, conversationID)
		return DeletedMsg{MessageID: messageID, Err: err}
	}
}

// updateProfile saves the account dialog's edits.
func updateProfile(svc Service, req api.UpdateProfileRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := svc.UpdateProfile(ctx, req)
		return ProfileSavedMsg{Req: req, Err: err}
	}
}

// deleteAccount permanently deletes the signed-in account.
func deleteAccount(svc Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return AccountDeletedMsg{Err: svc.DeleteAccount(ctx)}
	}
}

// createConversation starts a new conversation with the given members.
func createConversation(svc Service, groupName string, memberIDs []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		conv, err := svc.CreateConversation(ctx, groupName, memberIDs)
		return CreatedMsg{Conversation: conv, Err: err}
	}
}
