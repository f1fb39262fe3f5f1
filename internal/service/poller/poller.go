package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jgivc/relmirror/internal/common"
	"github.com/jgivc/relmirror/internal/entity"
)

type ReleaseSource interface {
	LatestRelease(ctx context.Context, repo string) (*entity.Release, error)
}

// Poller resolves the latest release of a repository, retrying transient
// failures with a linearly increasing delay.
type Poller struct {
	source      ReleaseSource
	maxAttempts int
	retryDelay  time.Duration
	log         *slog.Logger
}

func New(source ReleaseSource, maxAttempts int, retryDelay time.Duration, log *slog.Logger) *Poller {
	return &Poller{
		source:      source,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		log:         log.With(slog.String("item", "Poller")),
	}
}

// Latest returns the latest release of repo, or (nil, nil) when the
// repository has no releases. Exhausting retries yields a NetworkError
// carrying the last cause.
func (p *Poller) Latest(ctx context.Context, repo string) (*entity.Release, error) {
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		rel, err := p.source.LatestRelease(ctx, repo)
		if err == nil {
			return rel, nil
		}

		if errors.Is(err, common.ErrNoReleases) {
			p.log.Info("No releases", slog.String("repo", repo))

			return nil, nil
		}

		lastErr = err
		p.log.Warn("Cannot get latest release",
			slog.String("repo", repo), slog.Int("attempt", attempt), slog.Any("error", err))

		if attempt < p.maxAttempts {
			delay := p.retryDelay * time.Duration(attempt)

			select {
			case <-ctx.Done():
				return nil, &common.NetworkError{Repo: repo, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}
	}

	return nil, &common.NetworkError{Repo: repo, Err: lastErr}
}
