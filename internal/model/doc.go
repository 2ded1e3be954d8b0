// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for users, conversations and
// messages as served by the Visi backend.
//
// The backend owns all durable state. Types in this package are plain
// records passed through from the REST API and the realtime hub, plus the
// ordered message timeline that the chat view renders.
package model
