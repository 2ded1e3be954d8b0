// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/visi-tui/internal/model"
)

// =============================================================================
// MUTATIONS
// =============================================================================

// Mutation is one change to the message pane. All four sources of change
// (a fetched history page, a live hub push, a locally sent message, a
// deletion) funnel through Pane.Apply so ordering and dedup rules live in
// one place.
type Mutation interface{ isMutation() }

// HistoryPage is a fetched page of older messages.
type HistoryPage struct {
	ConversationID string
	Generation     int
	Messages       []*model.Message
}

// LivePush is a message delivered by the chat hub.
type LivePush struct {
	Message *model.Message
}

// LocalSend is the server's echo of a message this client just sent.
type LocalSend struct {
	Message *model.Message
}

// Delete removes a message, either locally initiated or pushed by the hub.
type Delete struct {
	MessageID string
}

func (HistoryPage) isMutation() {}
func (LivePush) isMutation()    {}
func (LocalSend) isMutation()   {}
func (Delete) isMutation()      {}

// =============================================================================
// MESSAGE PANE
// =============================================================================

// Pane holds the message list state for the active conversation: the
// ordered timeline, the pagination cursor, and the fetch generation used
// to fence off stale responses.
//
// Pane is not safe for concurrent use. It is owned by the chat model and
// mutated only from the update loop.
type Pane struct {
	conversationID string
	timeline       model.Timeline
	pageSize       int

	// nextPage is the page number the next history fetch should request.
	nextPage int

	// hasMore is a heuristic: a short page means the history is
	// exhausted. A conversation whose length is an exact multiple of the
	// page size costs one extra empty fetch.
	hasMore bool

	// generation increments on every Reset. Responses tagged with an
	// older generation, or another conversation, are discarded.
	generation int

	loading bool
}

// NewPane creates a pane with the given history page size.
func NewPane(pageSize int) *Pane {
	return &Pane{pageSize: pageSize, nextPage: 1, hasMore: true}
}

// ConversationID returns the conversation the pane is showing, or "".
func (p *Pane) ConversationID() string { return p.conversationID }

// Messages returns the ordered timeline contents.
func (p *Pane) Messages() []*model.Message { return p.timeline.Messages() }

// Len returns the number of messages in the pane.
func (p *Pane) Len() int { return p.timeline.Len() }

// NextPage returns the page number the next history fetch should use.
func (p *Pane) NextPage() int { return p.nextPage }

// HasMore reports whether another history page is worth fetching.
func (p *Pane) HasMore() bool { return p.hasMore }

// Generation returns the current fetch generation. History commands must
// carry it so their responses can be validated on arrival.
func (p *Pane) Generation() int { return p.generation }

// Loading reports whether a history fetch is in flight.
func (p *Pane) Loading() bool { return p.loading }

// SetLoading marks a history fetch as started or finished.
func (p *Pane) SetLoading(v bool) { p.loading = v }

// Reset switches the pane to a conversation: empty timeline, pagination
// back to the first page, hasMore true, and a new generation so in-flight
// responses for the previous conversation die on arrival.
func (p *Pane) Reset(conversationID string) {
	p.conversationID = conversationID
	p.timeline.Clear()
	p.nextPage = 1
	p.hasMore = true
	p.generation++
	p.loading = false
}

// Apply runs one mutation through the reducer. It returns true when the
// timeline changed.
func (p *Pane) Apply(m Mutation) bool {
	switch mut := m.(type) {
	case HistoryPage:
		return p.applyHistory(mut)
	case LivePush:
		if mut.Message == nil || mut.Message.ConversationID != p.conversationID {
			return false
		}
		return p.timeline.Append(mut.Message)
	case LocalSend:
		if mut.Message == nil || mut.Message.ConversationID != p.conversationID {
			return false
		}
		return p.timeline.Append(mut.Message)
	case Delete:
		return p.timeline.Remove(mut.MessageID)
	default:
		return false
	}
}

// applyHistory merges a fetched page, unless it is stale. A stale page
// must not touch the loading flag either: it may belong to a previous
// generation while the current generation's fetch is still in flight.
func (p *Pane) applyHistory(page HistoryPage) bool {
	if page.ConversationID != p.conversationID || page.Generation != p.generation {
		// A switch happened while this fetch was in flight.
		return false
	}
	p.loading = false
	p.nextPage++
	p.hasMore = len(page.Messages) == p.pageSize
	return p.timeline.Prepend(page.Messages) > 0
}

// Timeline exposes the underlying timeline for rendering helpers
// (day separators, sender grouping).
func (p *Pane) Timeline() *model.Timeline { return &p.timeline }
