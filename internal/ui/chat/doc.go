// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view: the sidebar listing the
// user's conversations, the paginated message pane, and the composer.
//
// Every mutation of the message list flows through the Pane reducer on
// the Bubble Tea update loop. Network results and hub pushes arrive as
// messages; nothing touches the pane from another goroutine. History
// responses carry the conversation ID and a fetch generation so pages
// that were in flight when the user switched conversations are discarded
// instead of bleeding into the new conversation.
package chat
