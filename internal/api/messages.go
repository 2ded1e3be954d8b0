// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jeranaias/visi-tui/internal/model"
)

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// GetMessages fetches one page of a conversation's history, newest pages
// first (page 1 holds the most recent messages). Page numbers start at 1.
func (c *Client) GetMessages(ctx context.Context, conversationID string, pageNumber, pageSize int) ([]*model.Message, error) {
	path := "/api/v1/message?conversationId=" + url.QueryEscape(conversationID) +
		"&pageNumber=" + strconv.Itoa(pageNumber) +
		"&pageSize=" + strconv.Itoa(pageSize)

	var messages []*model.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &messages, true); err != nil {
		return nil, err
	}
	return messages, nil
}

// sendMessageRequest is the body of PUT /api/v1/message.
type sendMessageRequest struct {
	Content          string            `json:"content"`
	MessageType      model.MessageType `json:"messageType"`
	ConversationID   string            `json:"conversationId"`
	CreationTimeUnix int64             `json:"creationTimeUnix"`
}

// SendMessage sends a text message and returns the stored message as the
// backend recorded it (with its authoritative ID and timestamp).
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (*model.Message, error) {
	body := sendMessageRequest{
		Content:          content,
		MessageType:      model.MessageText,
		ConversationID:   conversationID,
		CreationTimeUnix: time.Now().Unix(),
	}
	var msg model.Message
	if err := c.do(ctx, http.MethodPut, "/api/v1/message", body, &msg, true); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage deletes a message. The backend broadcasts the deletion to
// the conversation group; the caller removes it locally without waiting.
func (c *Client) DeleteMessage(ctx context.Context, messageID, conversationID string) error {
	path := "/api/v1/message/" + url.PathEscape(messageID) +
		"/conversation/" + url.PathEscape(conversationID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}
