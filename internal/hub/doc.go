// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hub implements the client side of the Visi realtime hub.
//
// The hub is a bearer-authenticated WebSocket carrying JSON frames in both
// directions. The client invokes group membership operations (AddToGroup,
// RemoveFromGroup and their connect-hub variants) and receives pushed
// events: new messages, message deletions, presence changes and the
// blocked signal. Reconnection with exponential backoff is owned by this
// package; consumers only observe connection state changes.
package hub
