// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jeranaias/visi-tui/internal/model"
)

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ListConversations fetches all conversations visible to the
// authenticated user.
func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var conversations []model.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/v1/conversation", nil, &conversations, true); err != nil {
		return nil, err
	}
	return conversations, nil
}

// CreateConversationRequest is the body of POST /api/v1/conversation.
type CreateConversationRequest struct {
	GroupName           string   `json:"groupName"`
	CreationTimeUnix    int64    `json:"creationTimeUnix"`
	IsOnline            bool     `json:"isOnline"`
	UserConversationIDs []string `json:"userConversationIds"`
}

// CreateConversation creates a thread with the given members. An empty
// group name makes a private 1:1 thread.
func (c *Client) CreateConversation(ctx context.Context, groupName string, memberIDs []string) (*model.Conversation, error) {
	body := CreateConversationRequest{
		GroupName:           groupName,
		CreationTimeUnix:    time.Now().Unix(),
		IsOnline:            true,
		UserConversationIDs: memberIDs,
	}
	var conv model.Conversation
	if err := c.do(ctx, http.MethodPost, "/api/v1/conversation", body, &conv, true); err != nil {
		return nil, err
	}
	return &conv, nil
}

// TouchConversation marks a conversation as visited by the authenticated
// user (PUT /api/v1/conversation/{id}).
func (c *Client) TouchConversation(ctx context.Context, conversationID string) error {
	path := "/api/v1/conversation/" + url.PathEscape(conversationID)
	return c.do(ctx, http.MethodPut, path, nil, nil, true)
}
