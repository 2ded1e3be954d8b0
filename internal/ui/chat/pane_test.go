// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"testing"

	"github.com/jeranaias/visi-tui/internal/model"
)

func pageOf(convID string, start, count int) []*model.Message {
	msgs := make([]*model.Message, count)
	for i := 0; i < count; i++ {
		msgs[i] = &model.Message{
			MessageID:        fmt.Sprintf("%s-m%d", convID, start+i),
			Content:          fmt.Sprintf("message %d", start+i),
			ConversationID:   convID,
			CreationTimeUnix: int64(1700000000 + start + i),
		}
	}
	return msgs
}

// =============================================================================
// PAGINATION TESTS
// =============================================================================

func TestPane_FullPageKeepsPaginating(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")

	changed := p.Apply(HistoryPage{
		ConversationID: "conv-1",
		Generation:     p.Generation(),
		Messages:       pageOf("conv-1", 0, 7),
	})
	if !changed {
		t.Fatal("full page should change the timeline")
	}
	if !p.HasMore() {
		t.Error("a full page means more history may exist")
	}
	if p.NextPage() != 2 {
		t.Errorf("next page = %d, want 2", p.NextPage())
	}
	if p.Len() != 7 {
		t.Errorf("len = %d, want 7", p.Len())
	}
}

func TestPane_ShortPageEndsPagination(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")

	p.Apply(HistoryPage{
		ConversationID: "conv-1",
		Generation:     p.Generation(),
		Messages:       pageOf("conv-1", 0, 3),
	})
	if p.HasMore() {
		t.Error("a short page means the history is exhausted")
	}
	if p.Len() != 3 {
		t.Errorf("len = %d, want 3", p.Len())
	}
}

func TestPane_EmptyPageEndsPagination(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")

	changed := p.Apply(HistoryPage{
		ConversationID: "conv-1",
		Generation:     p.Generation(),
		Messages:       nil,
	})
	if changed {
		t.Error("empty page should not change the timeline")
	}
	if p.HasMore() {
		t.Error("empty page should end pagination")
	}
}

// =============================================================================
// CONVERSATION SWITCH TESTS
// =============================================================================

func TestPane_ResetClearsStateAndBumpsGeneration(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")
	gen1 := p.Generation()

	p.Apply(HistoryPage{ConversationID: "conv-1", Generation: gen1, Messages: pageOf("conv-1", 0, 7)})
	p.SetLoading(true)

	p.Reset("conv-2")
	if p.Len() != 0 {
		t.Error("reset should empty the timeline")
	}
	if p.NextPage() != 1 {
		t.Errorf("next page = %d, want 1", p.NextPage())
	}
	if !p.HasMore() {
		t.Error("reset should assume more history")
	}
	if p.Loading() {
		t.Error("reset should clear the loading flag")
	}
	if p.Generation() == gen1 {
		t.Error("reset should advance the generation")
	}
}

func TestPane_StalePageForOldConversationDiscarded(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")
	gen1 := p.Generation()

	// The user switches while the conv-1 fetch is in flight.
	p.Reset("conv-2")

	changed := p.Apply(HistoryPage{
		ConversationID: "conv-1",
		Generation:     gen1,
		Messages:       pageOf("conv-1", 0, 7),
	})
	if changed {
		t.Error("page for another conversation must be discarded")
	}
	if p.Len() != 0 {
		t.Errorf("len = %d, want 0", p.Len())
	}
	if p.NextPage() != 1 {
		t.Error("stale page must not advance pagination")
	}
}

func TestPane_StaleGenerationSameConversationDiscarded(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")
	gen1 := p.Generation()

	// Switch away and back: same conversation, new generation.
	p.Reset("conv-2")
	p.Reset("conv-1")

	if changed := p.Apply(HistoryPage{
		ConversationID: "conv-1",
		Generation:     gen1,
		Messages:       pageOf("conv-1", 0, 7),
	}); changed {
		t.Error("page from a previous visit must be discarded")
	}

	// The current generation still works.
	if changed := p.Apply(HistoryPage{
		ConversationID: "conv-1",
		Generation:     p.Generation(),
		Messages:       pageOf("conv-1", 0, 7),
	}); !changed {
		t.Error("current-generation page should apply")
	}
}

// =============================================================================
// LIVE MUTATION TESTS
// =============================================================================

func TestPane_LivePushForOtherConversationIgnored(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")

	other := pageOf("conv-2", 0, 1)[0]
	if p.Apply(LivePush{Message: other}) {
		t.Error("live push for another conversation must not apply")
	}
}

func TestPane_LocalSendThenHubEchoAppliesOnce(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")

	msg := pageOf("conv-1", 10, 1)[0]
	if !p.Apply(LocalSend{Message: msg}) {
		t.Fatal("local send should apply")
	}
	// The hub echoes the same message back.
	if p.Apply(LivePush{Message: msg}) {
		t.Error("hub echo of an already-present message must be a no-op")
	}
	if p.Len() != 1 {
		t.Errorf("len = %d, want 1", p.Len())
	}
}

func TestPane_DeleteAppliedOnce(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")
	p.Apply(HistoryPage{ConversationID: "conv-1", Generation: p.Generation(), Messages: pageOf("conv-1", 0, 3)})

	if !p.Apply(Delete{MessageID: "conv-1-m1"}) {
		t.Fatal("delete should remove the message")
	}
	// Local delete confirmation and the hub push both arrive.
	if p.Apply(Delete{MessageID: "conv-1-m1"}) {
		t.Error("second delete of the same ID must be a no-op")
	}
	if p.Len() != 2 {
		t.Errorf("len = %d, want 2", p.Len())
	}
}

func TestPane_PrependSkipsMessagesAlreadyLive(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-1")

	// A live message arrives before its page is fetched.
	live := pageOf("conv-1", 6, 1)[0]
	p.Apply(LivePush{Message: live})

	p.Apply(HistoryPage{
		ConversationID: "conv-1",
		Generation:     p.Generation(),
		Messages:       pageOf("conv-1", 0, 7),
	})
	if p.Len() != 7 {
		t.Errorf("len = %d, want 7 (live message deduplicated)", p.Len())
	}
}

func TestPane_StalePageKeepsCurrentFetchLoading(t *testing.T) {
	p := NewPane(7)
	p.Reset("conv-a")
	staleGen := p.Generation()
	p.SetLoading(true)

	p.Reset("conv-b")
	p.SetLoading(true)

	// The abandoned conv-a fetch resolves while conv-b's is in flight.
	if p.Apply(HistoryPage{
		ConversationID: "conv-a",
		Generation:     staleGen,
		Messages:       pageOf("conv-a", 0, 7),
	}) {
		t.Fatal("stale page must be discarded")
	}
	if !p.Loading() {
		t.Error("stale page must not clear the in-flight fetch's loading flag")
	}

	// The current fetch still lands normally.
	if !p.Apply(HistoryPage{
		ConversationID: "conv-b",
		Generation:     p.Generation(),
		Messages:       pageOf("conv-b", 0, 3),
	}) {
		t.Fatal("current page should apply")
	}
	if p.Loading() {
		t.Error("current page should clear the loading flag")
	}
}
