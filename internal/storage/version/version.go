package version

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jgivc/relmirror/internal/common"
	"github.com/jgivc/relmirror/internal/util"
	"github.com/spf13/afero"
)

const (
	fileName = "version.txt"
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store persists the committed release tag of each repository as a single
// line in downloads_root/<repo-name>/version.txt.
type Store struct {
	fs   afero.Fs
	root string
	log  *slog.Logger
}

func NewStore(fs afero.Fs, downloadsRoot string, log *slog.Logger) *Store {
	return &Store{
		fs:   fs,
		root: downloadsRoot,
		log:  log.With(slog.String("item", "VersionStore")),
	}
}

// Read returns the committed tag for repo, or "" when none was ever
// committed.
func (s *Store) Read(repo string) (string, error) {
	path := s.path(repo)

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}

		return "", &common.FileSystemError{Path: path, Err: err}
	}

	return strings.TrimSpace(string(data)), nil
}

// Write commits tag for repo, creating missing parent directories.
func (s *Store) Write(repo, tag string) error {
	path := s.path(repo)

	if err := s.fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return &common.FileSystemError{Path: path, Err: err}
	}

	if err := afero.WriteFile(s.fs, path, []byte(tag), filePerm); err != nil {
		return &common.FileSystemError{Path: path, Err: err}
	}

	s.log.Info("Committed version", slog.String("repo", repo), slog.String("tag", tag))

	return nil
}

func (s *Store) path(repo string) string {
	return filepath.Join(s.root, util.RepoShortName(repo), fileName)
}
