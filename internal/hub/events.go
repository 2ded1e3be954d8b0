// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/visi-tui/internal/model"
)

// =============================================================================
// WIRE FORMAT
// =============================================================================

// Server-pushed event targets.
const (
	targetReceiveMessage           = "ReceiveMessage"
	targetMessageDeleted           = "MessageDeleted"
	targetUserOnlineStatusChanged  = "UserOnlineStatusChanged"
	targetReceiveMessageConnection = "ReceiveMessageConnection"
)

// Client invocation targets.
const (
	TargetAddToGroup                = "AddToGroup"
	TargetRemoveFromGroup           = "RemoveFromGroup"
	TargetAddToGroupConnection      = "AddToGroupConnection"
	TargetRemoveFromGroupConnection = "RemoveFromGroupConnection"
)

// blockedSignal is the payload of a ReceiveMessageConnection frame telling
// this client its account was blocked.
const blockedSignal = "blocked"

// frame is one JSON message on the wire, in either direction.
type frame struct {
	InvocationID string            `json:"invocationId,omitempty"`
	Target       string            `json:"target"`
	Arguments    []json.RawMessage `json:"arguments"`
}

// =============================================================================
// EVENTS
// =============================================================================

// Event is a decoded server push. Exactly one of the concrete types below
// is delivered to the connection's handler.
type Event interface {
	isEvent()
}

// MessageReceived carries a newly delivered chat message.
type MessageReceived struct {
	Message *model.Message
}

// MessageDeleted announces that a message was removed.
type MessageDeleted struct {
	MessageID string
}

// UserOnlineStatusChanged announces a presence change.
type UserOnlineStatusChanged struct {
	UserID   string
	IsOnline bool
}

// Blocked announces that this client's account was blocked; the session
// must log out.
type Blocked struct{}

// StateChanged announces a connection state transition.
type StateChanged struct {
	State State
}

func (MessageReceived) isEvent()         {}
func (MessageDeleted) isEvent()          {}
func (UserOnlineStatusChanged) isEvent() {}
func (Blocked) isEvent()                 {}
func (StateChanged) isEvent()            {}

// decodeEvent turns an inbound frame into an Event. Unknown targets and
// malformed arguments return an error; the read loop logs and drops them.
func decodeEvent(f *frame) (Event, error) {
	switch f.Target {
	case targetReceiveMessage:
		if len(f.Arguments) < 1 {
			return nil, fmt.Errorf("%s: missing message argument", f.Target)
		}
		var msg model.Message
		if err := json.Unmarshal(f.Arguments[0], &msg); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Target, err)
		}
		return MessageReceived{Message: &msg}, nil

	case targetMessageDeleted:
		if len(f.Arguments) < 1 {
			return nil, fmt.Errorf("%s: missing message ID", f.Target)
		}
		var id string
		if err := json.Unmarshal(f.Arguments[0], &id); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Target, err)
		}
		return MessageDeleted{MessageID: id}, nil

	case targetUserOnlineStatusChanged:
		if len(f.Arguments) < 2 {
			return nil, fmt.Errorf("%s: want 2 arguments, got %d", f.Target, len(f.Arguments))
		}
		var userID string
		var online bool
		if err := json.Unmarshal(f.Arguments[0], &userID); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Target, err)
		}
		if err := json.Unmarshal(f.Arguments[1], &online); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Target, err)
		}
		return UserOnlineStatusChanged{UserID: userID, IsOnline: online}, nil

	case targetReceiveMessageConnection:
		if len(f.Arguments) < 1 {
			return nil, fmt.Errorf("%s: missing payload", f.Target)
		}
		var payload string
		if err := json.Unmarshal(f.Arguments[0], &payload); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Target, err)
		}
		if payload == blockedSignal {
			return Blocked{}, nil
		}
		return nil, fmt.Errorf("%s: unhandled payload %q", f.Target, payload)

	default:
		return nil, fmt.Errorf("unknown target %q", f.Target)
	}
}
