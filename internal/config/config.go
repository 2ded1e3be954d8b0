// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for visi-tui.
//
// Configuration sources, in order of precedence:
//   - VISI_* environment variables
//   - ~/.visi/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/jeranaias/visi-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete visi-tui configuration.
type Config struct {
	// Server holds backend connection settings.
	Server ServerConfig `toml:"server"`

	// Chat holds message pane settings.
	Chat ChatConfig `toml:"chat"`

	// UI holds presentation settings.
	UI UIConfig `toml:"ui"`
}

// ServerConfig holds backend connection settings.
type ServerConfig struct {
	// URL is the backend base URL, e.g. "https://api.visi.example".
	URL string `toml:"url" env:"VISI_SERVER_URL"`

	// ChatHubPath is the realtime hub path for conversation groups.
	ChatHubPath string `toml:"chat_hub_path" env:"VISI_CHAT_HUB_PATH"`

	// ConnectHubPath is the realtime hub path for user-targeted signals
	// (the blocked notification).
	ConnectHubPath string `toml:"connect_hub_path" env:"VISI_CONNECT_HUB_PATH"`

	// RequestTimeoutSec is the per-request timeout for REST calls.
	RequestTimeoutSec int `toml:"request_timeout_sec" env:"VISI_REQUEST_TIMEOUT_SEC"`
}

// ChatConfig holds message pane settings.
type ChatConfig struct {
	// PageSize is the message history page size. Must match the backend's
	// page size: the has-more heuristic compares fetched page length
	// against it.
	PageSize int `toml:"page_size" env:"VISI_PAGE_SIZE"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme" env:"VISI_THEME"`

	// ShowTimestamps renders a time next to every message.
	ShowTimestamps bool `toml:"show_timestamps" env:"VISI_SHOW_TIMESTAMPS"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultPageSize matches the backend's message page size.
const DefaultPageSize = 7

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:               "http://localhost:5000",
			ChatHubPath:       "/chathub",
			ConnectHubPath:    "/connecthub",
			RequestTimeoutSec: 30,
		},
		Chat: ChatConfig{
			PageSize: DefaultPageSize,
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: true,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Dir returns the visi-tui configuration directory (~/.visi), creating it
// if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".visi")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// Path returns the config file path (~/.visi/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration: defaults, then the TOML file if present,
// then environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit file path. Used by
// tests and the --config flag.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to its default path, atomically.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0o644)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.url %q is not a valid URL", c.Server.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url scheme %q must be http or https", u.Scheme)
	}
	if !strings.HasPrefix(c.Server.ChatHubPath, "/") {
		return fmt.Errorf("server.chat_hub_path %q must start with /", c.Server.ChatHubPath)
	}
	if !strings.HasPrefix(c.Server.ConnectHubPath, "/") {
		return fmt.Errorf("server.connect_hub_path %q must start with /", c.Server.ConnectHubPath)
	}
	if c.Chat.PageSize < 1 {
		return fmt.Errorf("chat.page_size %d must be at least 1", c.Chat.PageSize)
	}
	if c.Server.RequestTimeoutSec < 1 {
		return fmt.Errorf("server.request_timeout_sec %d must be at least 1", c.Server.RequestTimeoutSec)
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme %q must be dark or light", c.UI.Theme)
	}
	return nil
}

// RequestTimeout returns the REST request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}
