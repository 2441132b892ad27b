package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/ardnew/tagfn/cli/cmd/repl"
	"github.com/ardnew/tagfn/log"
)

// Repl evaluates expressions interactively.
type Repl struct {
	Options `embed:""`

	History string `default:"${cache}" help:"Directory holding the history file" type:"path"`
	NoSave  bool   `help:"Do not persist input history"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	opts, env, err := r.options(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(r.History, repl.HistoryFile)
	if r.NoSave {
		path = ""
	}

	log.DebugContext(ctx, "repl",
		slog.String("history", path),
		slog.Any("globals", env.Names()))

	return repl.Run(ctx, repl.Config{
		Globals:     env,
		Options:     opts,
		HistoryPath: path,
		Logger:      log.Default(),
	})
}
