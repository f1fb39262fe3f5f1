package remover

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jgivc/relmirror/internal/common"
	"github.com/spf13/afero"
)

// Remover deletes directory trees, confined to a sandbox root. Deletion is
// best-effort: strategies escalate from a plain recursive remove to an
// attribute-clearing walk and finally to the OS native facility.
type Remover struct {
	fs         afero.Fs
	root       string
	strategies []strategy
	log        *slog.Logger
}

type strategy struct {
	name   string
	remove func(path string) error
}

func New(fs afero.Fs, sandboxRoot string, log *slog.Logger) (*Remover, error) {
	root, err := filepath.Abs(sandboxRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve sandbox root: %w", err)
	}

	r := &Remover{
		fs:   fs,
		root: root,
		log:  log.With(slog.String("item", "Remover")),
	}

	r.strategies = []strategy{
		{name: "direct", remove: r.removeDirect},
		{name: "clear-attributes", remove: r.removeClearingAttributes},
	}

	// The native facility works only on the real filesystem.
	if _, ok := fs.(*afero.OsFs); ok {
		r.strategies = append(r.strategies, strategy{name: "os-native", remove: removeNative})
	}

	return r, nil
}

// RemoveTree deletes path and everything under it. A path outside the
// sandbox root fails with SecurityError before any mutation. A missing path
// is a no-op. An unreadable directory is logged and skipped. Strategy
// failures beyond the last are logged, not raised.
func (r *Remover) RemoveTree(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &common.FileSystemError{Path: path, Err: err}
	}

	if !r.contains(abs) {
		return &common.SecurityError{Path: abs, Root: r.root}
	}

	exists, err := afero.DirExists(r.fs, abs)
	if err != nil {
		if os.IsPermission(err) {
			r.log.Warn("Cannot access directory", slog.String("path", abs), slog.Any("error", err))

			return nil
		}

		return &common.FileSystemError{Path: abs, Err: err}
	}

	if !exists {
		if fileExists, _ := afero.Exists(r.fs, abs); !fileExists {
			return nil
		}
	}

	if _, err := afero.ReadDir(r.fs, abs); err != nil && os.IsPermission(err) {
		r.log.Warn("Cannot list directory", slog.String("path", abs), slog.Any("error", err))

		return nil
	}

	var lastErr error
	for _, s := range r.strategies {
		if lastErr = s.remove(abs); lastErr == nil {
			return nil
		}

		r.log.Warn("Delete strategy failed",
			slog.String("strategy", s.name), slog.String("path", abs), slog.Any("error", lastErr))
	}

	// All strategies failed: outcome unknown, the caller's contract is
	// best-effort anyway.
	r.log.Error("Cannot remove directory", slog.String("path", abs), slog.Any("error", lastErr))

	return nil
}

func (r *Remover) contains(abs string) bool {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (r *Remover) removeDirect(path string) error {
	return r.fs.RemoveAll(path)
}

// removeClearingAttributes makes every entry writable before removal, for
// trees populated with read-only files.
func (r *Remover) removeClearingAttributes(path string) error {
	walkErr := afero.Walk(r.fs, path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		mode := os.FileMode(0o600)
		if info.IsDir() {
			mode = 0o700
		}

		if chErr := r.fs.Chmod(p, mode); chErr != nil {
			r.log.Warn("Cannot clear attributes", slog.String("path", p), slog.Any("error", chErr))
		}

		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("cannot walk tree: %w", walkErr)
	}

	return r.fs.RemoveAll(path)
}

func removeNative(path string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "rd", "/s", "/q", path)
	} else {
		cmd = exec.Command("rm", "-rf", "--", path)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cannot run native delete: %w", err)
	}

	return nil
}
