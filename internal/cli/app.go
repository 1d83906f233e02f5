// Package cli implements the interactive front end driving the PassVault
// engine: registration, login, secret CRUD, the reset flow and password
// generation. It owns all presentation concerns; the engine only returns
// results and failures.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/passvault/internal/config"
	"github.com/dmitrijs2005/passvault/internal/keeper"
	"github.com/dmitrijs2005/passvault/internal/logging"
)

type App struct {
	config    *config.Config
	keeper    *keeper.Keeper
	reader    *bufio.Reader
	out       io.Writer
	sessionID string
	userName  string
}

// NewApp builds the engine under the configured data dir and binds the REPL
// to stdin/stdout.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	k, err := keeper.New(c, logger)
	if err != nil {
		return nil, err
	}
	return &App{
		config: c,
		keeper: k,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Run starts the read–eval–print loop and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.sessionID != "" && a.keeper.ValidateSession(a.sessionID)
}

// status renders the prompt decoration, e.g. "(alice)".
func (a *App) status() string {
	if a.isLoggedIn() {
		return "(" + a.userName + ")"
	}
	return ""
}
