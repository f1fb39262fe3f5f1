package retention

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jgivc/relmirror/internal/entity"
	"github.com/spf13/afero"
)

type TreeRemover interface {
	RemoveTree(path string) error
}

// Manager prunes old version directories, keeping the most recent ones.
type Manager struct {
	fs      afero.Fs
	remover TreeRemover
	log     *slog.Logger
}

func New(fs afero.Fs, remover TreeRemover, log *slog.Logger) *Manager {
	return &Manager{
		fs:      fs,
		remover: remover,
		log:     log.With(slog.String("item", "Retention")),
	}
}

// Prune deletes all version directories under repoRoot beyond the keep most
// recently modified ones. Each deletion is independent: a failure is logged
// and pruning continues. A missing repoRoot is a no-op.
func (m *Manager) Prune(repoRoot string, keep int) {
	dirs, err := m.versionDirs(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}

		m.log.Error("Cannot list version directories", slog.String("root", repoRoot), slog.Any("error", err))

		return
	}

	if keep < 0 {
		keep = 0
	}

	if len(dirs) <= keep {
		return
	}

	// Most recent first; mod time ties broken by name descending to keep
	// the order deterministic.
	sort.Slice(dirs, func(i, j int) bool {
		if !dirs[i].ModTime.Equal(dirs[j].ModTime) {
			return dirs[i].ModTime.After(dirs[j].ModTime)
		}

		return dirs[i].Path > dirs[j].Path
	})

	for _, dir := range dirs[keep:] {
		m.log.Info("Pruning old version", slog.String("path", dir.Path), slog.String("tag", dir.Tag))

		if err := m.remover.RemoveTree(dir.Path); err != nil {
			m.log.Error("Cannot prune version", slog.String("path", dir.Path), slog.Any("error", err))
		}
	}
}

func (m *Manager) versionDirs(repoRoot string) ([]entity.VersionDir, error) {
	entries, err := afero.ReadDir(m.fs, repoRoot)
	if err != nil {
		return nil, err
	}

	var dirs []entity.VersionDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dirs = append(dirs, entity.VersionDir{
			Path:    filepath.Join(repoRoot, entry.Name()),
			Tag:     entry.Name(),
			ModTime: entry.ModTime(),
		})
	}

	return dirs, nil
}
