// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the authenticated session: the stored credential
// token, the fetched user profile, and the lifecycle of the realtime hub
// connections.
//
// The manager is the only component that constructs or tears down hub
// connections; everything else receives them read-only and invokes their
// exposed operations. Created at login, torn down at logout.
package session
