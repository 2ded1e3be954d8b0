// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// MessageType is the kind of payload a message carries. The wire format is a
// plain string; the typed constants below give callers an exhaustive set to
// switch over instead of comparing raw strings.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
)

// IsValid reports whether the type is one of the known kinds.
func (t MessageType) IsValid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo:
		return true
	}
	return false
}

// Label returns a short human-readable label for non-text payloads.
func (t MessageType) Label() string {
	switch t {
	case MessageText:
		return ""
	case MessageImage:
		return "[image]"
	case MessageVideo:
		return "[video]"
	default:
		return "[" + string(t) + "]"
	}
}

// =============================================================================
// MESSAGE
// =============================================================================

// Sender is the denormalized sender snapshot embedded in a message.
type Sender struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	IsOnline bool   `json:"isOnline"`
}

// Message is a single chat message. Timestamps are Unix seconds, matching
// the backend wire format; two messages with the same timestamp have no
// defined relative order beyond arrival order.
type Message struct {
	MessageID        string      `json:"messageId"`
	Content          string      `json:"content"`
	Sender           *Sender     `json:"sender,omitempty"`
	SenderID         string      `json:"senderId"`
	MessageType      MessageType `json:"messageType"`
	ConversationID   string      `json:"conversationId"`
	CreationTimeUnix int64       `json:"creationTimeUnix"`
}

// CreationTime returns the creation timestamp as a time.Time in local time.
func (m *Message) CreationTime() time.Time {
	return time.Unix(m.CreationTimeUnix, 0)
}

// SenderName returns the sender's username if the snapshot is present.
func (m *Message) SenderName() string {
	if m.Sender != nil && m.Sender.UserName != "" {
		return m.Sender.UserName
	}
	return m.SenderID
}

// SameCalendarDay reports whether two messages fall on the same local
// calendar day. Used for day separators in the message pane.
func SameCalendarDay(a, b *Message) bool {
	at := a.CreationTime()
	bt := b.CreationTime()
	ay, am, ad := at.Date()
	by, bm, bd := bt.Date()
	return ay == by && am == bm && ad == bd
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Member is one participant of a conversation, with live presence.
type Member struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	IsOnline bool   `json:"isOnline"`
}

// Conversation is a chat thread: a private two-party thread when GroupName
// is empty, otherwise a named group. LastMessage is denormalized by the
// backend and patched optimistically on send/receive; the authoritative
// list is always re-fetched afterwards.
type Conversation struct {
	ConversationID   string   `json:"conversationId"`
	AdminID          string   `json:"adminId"`
	GroupName        string   `json:"groupName"`
	CreationTimeUnix int64    `json:"creationTimeUnix"`
	IsOnline         bool     `json:"isOnline"`
	LastMessage      *Message `json:"lastMessage,omitempty"`
	Members          []Member `json:"userConversations,omitempty"`
}

// IsGroup reports whether this is a named group rather than a 1:1 thread.
func (c *Conversation) IsGroup() bool {
	return c.GroupName != ""
}

// Title returns the display name for the conversation list. For a private
// thread this is the other party's username.
func (c *Conversation) Title(selfID string) string {
	if c.GroupName != "" {
		return c.GroupName
	}
	for _, m := range c.Members {
		if m.UserID != selfID {
			return m.UserName
		}
	}
	return "Conversation"
}

// SetMemberOnline updates the presence flag of one member in place.
// Returns true if the member was found.
func (c *Conversation) SetMemberOnline(userID string, online bool) bool {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			c.Members[i].IsOnline = online
			return true
		}
	}
	return false
}

// Preview returns a short last-message preview for the conversation list.
func (c *Conversation) Preview(maxRunes int) string {
	if c.LastMessage == nil {
		return ""
	}
	text := c.LastMessage.Content
	if label := c.LastMessage.MessageType.Label(); label != "" {
		text = label
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
