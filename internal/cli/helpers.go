package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/treefort-dev/treefort/internal/config"
	"github.com/treefort-dev/treefort/internal/coordinator"
	"github.com/treefort-dev/treefort/internal/registry"
)

// newLogger builds the CLI logger honoring --verbose and --quiet.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolvePath returns the absolute worktree path the command targets:
// the --path flag when given, the current directory otherwise.
func resolvePath() (string, error) {
	path := worktreePath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		path = cwd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	return abs, nil
}

// buildCoordinator wires the coordinator for the resolved worktree path.
// The registry is rooted at the same path; git resolves it to the shared
// repository, so all sibling worktrees are visible.
func buildCoordinator() (*coordinator.Coordinator, string, error) {
	path, err := resolvePath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	reg := registry.NewGitRegistry(path)
	coord := coordinator.New(reg, cfg, coordinator.WithLogger(newLogger()))
	return coord, path, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSuccess writes msg unless --quiet or --json is set.
func printSuccess(w io.Writer, format string, args ...any) {
	if quiet || jsonOut {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}
