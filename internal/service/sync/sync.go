package sync

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jgivc/relmirror/internal/common"
	"github.com/jgivc/relmirror/internal/entity"
	"github.com/jgivc/relmirror/internal/util"
	"github.com/spf13/afero"
)

const dirPerm = 0o755

type ReleasePoller interface {
	// Latest returns (nil, nil) when the repository has no releases.
	Latest(ctx context.Context, repo string) (*entity.Release, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url, destPath string, headers map[string]string) error
}

type VersionStore interface {
	Read(repo string) (string, error)
	Write(repo, tag string) error
}

type Pruner interface {
	Prune(repoRoot string, keep int)
}

type TreeRemover interface {
	RemoveTree(path string) error
}

// Service mirrors the latest release of each configured repository into the
// downloads root, committing a version only after its source archive has been
// fully written, and pruning old versions afterwards.
type Service struct {
	fs      afero.Fs
	poller  ReleasePoller
	fetcher Fetcher
	store   VersionStore
	pruner  Pruner
	remover TreeRemover

	root           string
	repos          []string
	keep           int
	repoDelay      time.Duration
	archiveHeaders map[string]string
	assetHeaders   map[string]string

	log *slog.Logger
}

type Config struct {
	DownloadsRoot  string
	Repos          []string
	KeepVersions   int
	RepoDelay      time.Duration
	ArchiveHeaders map[string]string
	AssetHeaders   map[string]string
}

func New(fs afero.Fs, cfg *Config, poller ReleasePoller, fetcher Fetcher, store VersionStore,
	pruner Pruner, remover TreeRemover, log *slog.Logger) *Service {
	return &Service{
		fs:             fs,
		poller:         poller,
		fetcher:        fetcher,
		store:          store,
		pruner:         pruner,
		remover:        remover,
		root:           cfg.DownloadsRoot,
		repos:          cfg.Repos,
		keep:           cfg.KeepVersions,
		repoDelay:      cfg.RepoDelay,
		archiveHeaders: cfg.ArchiveHeaders,
		assetHeaders:   cfg.AssetHeaders,
		log:            log.With(slog.String("item", "SyncService")),
	}
}

// Run processes the configured repositories sequentially with a fixed delay
// between them. Per-repository failures are logged and never abort the run;
// only failure to create the downloads root is fatal.
func (s *Service) Run(ctx context.Context) error {
	if err := s.fs.MkdirAll(s.root, dirPerm); err != nil {
		return &common.FileSystemError{Path: s.root, Err: err}
	}

	for i, repo := range s.repos {
		if i > 0 && s.repoDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.repoDelay):
			}
		}

		if ctx.Err() != nil {
			s.log.Info("Interrupted")

			return ctx.Err()
		}

		if err := s.SyncRepo(ctx, repo); err != nil {
			s.log.Error("Cannot sync repository", slog.String("repo", repo), slog.Any("error", err))
		}
	}

	return nil
}

// SyncRepo runs one synchronization cycle for repo: poll, compare against
// the committed version, stage and download on change, commit, prune.
func (s *Service) SyncRepo(ctx context.Context, repo string) error {
	log := s.log.With(slog.String("repo", repo))

	rel, err := s.poller.Latest(ctx, repo)
	if err != nil {
		return err
	}

	if rel == nil {
		log.Info("No releases, skipping")

		return nil
	}

	current, err := s.store.Read(repo)
	if err != nil {
		return err
	}

	repoRoot := filepath.Join(s.root, util.RepoShortName(repo))

	if rel.Tag == current {
		log.Info("Already up to date", slog.String("tag", rel.Tag))
		s.pruner.Prune(repoRoot, s.keep)

		return nil
	}

	log.Info("New release found", slog.String("tag", rel.Tag), slog.String("current", current))

	versionDir, err := s.stage(repoRoot, rel.Tag)
	if err != nil {
		return err
	}

	if err := s.download(ctx, repo, rel, versionDir, log); err != nil {
		if rmErr := s.remover.RemoveTree(versionDir); rmErr != nil {
			log.Error("Cannot clean up staged version", slog.String("path", versionDir), slog.Any("error", rmErr))
		}

		return err
	}

	if err := s.store.Write(repo, rel.Tag); err != nil {
		return err
	}

	s.pruner.Prune(repoRoot, s.keep)

	return nil
}

// stage creates an empty version directory for tag, removing any leftover
// from an interrupted earlier run first.
func (s *Service) stage(repoRoot, tag string) (string, error) {
	versionDir := filepath.Join(repoRoot, util.SanitizeTag(tag))

	if exists, _ := afero.DirExists(s.fs, versionDir); exists {
		if err := s.remover.RemoveTree(versionDir); err != nil {
			return "", err
		}
	}

	if err := s.fs.MkdirAll(versionDir, dirPerm); err != nil {
		return "", &common.FileSystemError{Path: versionDir, Err: err}
	}

	return versionDir, nil
}

// download fetches the source archive and then each asset. The archive is
// the primary artifact: its failure aborts the cycle. Assets are best-effort
// supplements; their failures are only logged.
func (s *Service) download(ctx context.Context, repo string, rel *entity.Release, versionDir string, log *slog.Logger) error {
	archiveName := fmt.Sprintf("%s_%s_source.zip", util.RepoShortName(repo), util.SanitizeTag(rel.Tag))

	log.Info("Downloading source archive", slog.String("name", archiveName))

	if err := s.fetcher.Fetch(ctx, rel.ArchiveURL, filepath.Join(versionDir, archiveName), s.archiveHeaders); err != nil {
		return err
	}

	for _, asset := range rel.Assets {
		log.Info("Downloading asset", slog.String("name", asset.Name))

		dest := filepath.Join(versionDir, filepath.Base(asset.Name))
		if err := s.fetcher.Fetch(ctx, asset.DownloadURL, dest, s.assetHeaders); err != nil {
			log.Warn("Cannot download asset", slog.String("name", asset.Name), slog.Any("error", err))
		}
	}

	return nil
}
