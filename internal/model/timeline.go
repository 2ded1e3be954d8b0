// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sort"

// =============================================================================
// MESSAGE TIMELINE
// =============================================================================

// Timeline is the ordered message sequence for one open conversation.
//
// Messages reach the timeline from two interleaving sources: paginated
// history fetches (prepended) and live hub delivery or local sends
// (appended). The only ordering guarantee across both sources is the
// re-sort by creation time after every mutation; the only de-duplication
// is the message ID check. All mutations must happen on the UI update
// loop, so the type carries no lock.
type Timeline struct {
	messages []*Message
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{messages: make([]*Message, 0)}
}

// Messages returns the ordered sequence. Callers must treat it as
// read-only.
func (t *Timeline) Messages() []*Message {
	return t.messages
}

// Len returns the number of messages.
func (t *Timeline) Len() int {
	return len(t.messages)
}

// IsEmpty reports whether the timeline holds no messages.
func (t *Timeline) IsEmpty() bool {
	return len(t.messages) == 0
}

// Contains reports whether a message with the given ID is present.
func (t *Timeline) Contains(messageID string) bool {
	for _, m := range t.messages {
		if m.MessageID == messageID {
			return true
		}
	}
	return false
}

// Append adds a live or locally-sent message and re-sorts by creation
// time. Appending an ID that is already present is a no-op. Returns true
// if the message was added.
func (t *Timeline) Append(msg *Message) bool {
	if msg == nil || t.Contains(msg.MessageID) {
		return false
	}
	t.messages = append(t.messages, msg)
	t.sortByTime()
	return true
}

// Prepend adds an older history page in front of the current sequence and
// re-sorts. Messages already present by ID are skipped. Returns the number
// of messages actually added.
func (t *Timeline) Prepend(page []*Message) int {
	added := 0
	for _, msg := range page {
		if msg == nil || t.Contains(msg.MessageID) {
			continue
		}
		t.messages = append(t.messages, msg)
		added++
	}
	if added > 0 {
		t.sortByTime()
	}
	return added
}

// Remove deletes the message with the given ID. It removes exactly one
// entry and leaves the relative order of the rest unchanged. Returns true
// if a message was removed.
func (t *Timeline) Remove(messageID string) bool {
	for i, m := range t.messages {
		if m.MessageID == messageID {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops all messages. Called when the active conversation changes.
func (t *Timeline) Clear() {
	t.messages = make([]*Message, 0)
}

// Last returns the newest message, or nil if empty.
func (t *Timeline) Last() *Message {
	if len(t.messages) == 0 {
		return nil
	}
	return t.messages[len(t.messages)-1]
}

// sortByTime sorts non-decreasing by creation timestamp. The sort is
// stable so equal timestamps keep their arrival order.
func (t *Timeline) sortByTime() {
	sort.SliceStable(t.messages, func(i, j int) bool {
		return t.messages[i].CreationTimeUnix < t.messages[j].CreationTimeUnix
	})
}

// =============================================================================
// DISPLAY DERIVATIONS
// =============================================================================

// ShowDaySeparator reports whether a day separator should precede the
// message at index i: the first message always gets one, later messages
// only when their calendar day differs from the previous message's.
func (t *Timeline) ShowDaySeparator(i int) bool {
	if i == 0 {
		return len(t.messages) > 0
	}
	if i < 0 || i >= len(t.messages) {
		return false
	}
	return !SameCalendarDay(t.messages[i], t.messages[i-1])
}

// ShowSenderHeader reports whether the message at index i starts a new
// sender run and should carry the sender name/avatar line.
func (t *Timeline) ShowSenderHeader(i int) bool {
	if i == 0 {
		return len(t.messages) > 0
	}
	if i < 0 || i >= len(t.messages) {
		return false
	}
	return t.messages[i].SenderID != t.messages[i-1].SenderID
}
