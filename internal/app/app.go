package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jgivc/relmirror/internal/adapter/fetcher"
	"github.com/jgivc/relmirror/internal/adapter/github"
	"github.com/jgivc/relmirror/internal/adapter/httpclient"
	"github.com/jgivc/relmirror/internal/adapter/progress"
	"github.com/jgivc/relmirror/internal/adapter/remover"
	"github.com/jgivc/relmirror/internal/config"
	"github.com/jgivc/relmirror/internal/service/poller"
	"github.com/jgivc/relmirror/internal/service/retention"
	srvsync "github.com/jgivc/relmirror/internal/service/sync"
	"github.com/jgivc/relmirror/internal/storage/version"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB = 10
	logFileBackups   = 3
)

type App struct {
	cfgPath string
	cfg     *config.Config
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

// Run executes one synchronization pass over the configured repositories.
func (a *App) Run(ctx context.Context) error {
	a.cfg = config.MustLoad(a.cfgPath)
	a.log = newLogger(a.cfg)

	cl, err := httpclient.New(&a.cfg.HTTP)
	if err != nil {
		return fmt.Errorf("cannot create http client: %w", err)
	}

	fs := afero.NewOsFs()
	gh := github.NewClient(cl, &a.cfg.Github)

	rm, err := remover.New(fs, a.cfg.DownloadsDir, a.log)
	if err != nil {
		return fmt.Errorf("cannot create remover: %w", err)
	}

	p := poller.New(gh, a.cfg.Sync.MaxAttempts, a.cfg.Sync.RetryDelay.Value(), a.log)
	f := fetcher.New(fs, cl, a.cfg.Sync.ChunkSize, progress.NewBars(), a.log)
	store := version.NewStore(fs, a.cfg.DownloadsDir, a.log)
	ret := retention.New(fs, rm, a.log)

	srv := srvsync.New(fs, &srvsync.Config{
		DownloadsRoot:  a.cfg.DownloadsDir,
		Repos:          a.cfg.Repos,
		KeepVersions:   a.cfg.KeepVersions,
		RepoDelay:      a.cfg.Sync.RepoDelay.Value(),
		ArchiveHeaders: gh.MetadataHeaders(),
		AssetHeaders:   gh.AssetHeaders(),
	}, p, f, store, ret, rm, a.log)

	a.log.Info("Start synchronization", slog.Int("repos", len(a.cfg.Repos)))

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("cannot run synchronization: %w", err)
	}

	a.log.Info("Synchronization finished")

	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	lo := &slog.HandlerOptions{}
	switch cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}

	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileBackups,
		})
	}

	return slog.New(slog.NewTextHandler(w, lo))
}
