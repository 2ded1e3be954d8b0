// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/visi-tui/internal/util"
)

// credentialsFile is the token file name under the config directory.
const credentialsFile = "credentials"

// =============================================================================
// TOKEN STORE
// =============================================================================

// TokenStore persists the single credential token. It is the only durable
// client-side state the application keeps.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store rooted at the given config directory.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dir, credentialsFile)}
}

// Load returns the stored token, or "" when none exists.
func (s *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading credentials: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token atomically with owner-only permissions.
func (s *TokenStore) Save(token string) error {
	if err := util.AtomicWriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an absent token is not an
// error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credentials: %w", err)
	}
	return nil
}
