// visi TUI - a terminal client for the Visi chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/visi-tui/internal/api"
	"github.com/jeranaias/visi-tui/internal/config"
	"github.com/jeranaias/visi-tui/internal/hub"
	"github.com/jeranaias/visi-tui/internal/session"
	"github.com/jeranaias/visi-tui/internal/ui"
	"github.com/jeranaias/visi-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference so hub goroutines can inject events into the
// update loop.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

// sendToProgram delivers a message to the running program, if any.
func sendToProgram(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("visi %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "visi: %v\n", err)
		os.Exit(1)
	}

	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "visi: %v\n", err)
		os.Exit(1)
	}

	// The terminal is busy drawing; diagnostics go to a file.
	logFile, err := setupLogging(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "visi: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	app, err := buildApp(cfg, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "visi: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "visi: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging routes the standard logger to a file under the config
// directory.
func setupLogging(dir string) (*os.File, error) {
	path := filepath.Join(dir, "visi.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("visi %s starting", Version)
	return f, nil
}

// buildApp wires the client, session manager, and root model together.
func buildApp(cfg *config.Config, dir string) (ui.App, error) {
	store := session.NewTokenStore(dir)

	// The manager is the token source for both the REST client and the
	// hub connections, so the client closes over it.
	var manager *session.Manager
	tokenSource := func() string {
		if manager == nil {
			return ""
		}
		return manager.Token()
	}

	client := api.NewClient(cfg.Server.URL, tokenSource).WithTimeout(cfg.RequestTimeout())

	factory := func(path string, handler hub.Handler) (session.HubConn, error) {
		return hub.New(cfg.Server.URL, path, tokenSource, handler)
	}

	manager = session.NewManager(client, store, cfg.Server.ConnectHubPath, cfg.Server.ChatHubPath, factory)
	manager.SetEventHandler(func(e hub.Event) {
		sendToProgram(ui.SessionEventMsg{Event: e})
	})
	manager.SetLogoutHandler(func() {
		sendToProgram(ui.LoggedOutMsg{})
	})

	// Sized for a conservative default; the first WindowSizeMsg resizes.
	theme := styles.New(80, 24, cfg.UI.Theme)
	return ui.NewApp(cfg, theme, client, manager), nil
}
