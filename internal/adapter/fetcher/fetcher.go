package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/jgivc/relmirror/internal/adapter/progress"
	"github.com/jgivc/relmirror/internal/common"
	"github.com/spf13/afero"
)

// Fetcher streams remote resources to local files. It does not retry;
// retry policy belongs to its callers.
type Fetcher struct {
	fs        afero.Fs
	cl        *http.Client
	chunkSize int
	sink      progress.Sink
	log       *slog.Logger
}

func New(fs afero.Fs, cl *http.Client, chunkSize int, sink progress.Sink, log *slog.Logger) *Fetcher {
	return &Fetcher{
		fs:        fs,
		cl:        cl,
		chunkSize: chunkSize,
		sink:      sink,
		log:       log.With(slog.String("item", "Fetcher")),
	}
}

// Fetch downloads url to destPath in chunks, reporting cumulative bytes to
// the progress sink. On any failure the partial file is removed before a
// DownloadError is returned. Cancellation is observed between chunks.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string, headers map[string]string) error {
	if err := f.fetch(ctx, url, destPath, headers); err != nil {
		if exists, _ := afero.Exists(f.fs, destPath); exists {
			if rmErr := f.fs.Remove(destPath); rmErr != nil {
				f.log.Error("Cannot remove partial file", slog.String("path", destPath), slog.Any("error", rmErr))
			}
		}

		return &common.DownloadError{URL: url, Err: err}
	}

	return nil
}

func (f *Fetcher) fetch(ctx context.Context, url, destPath string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("cannot create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.cl.Do(req)
	if err != nil {
		return fmt.Errorf("cannot get resource: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	file, err := f.fs.Create(destPath)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}

	f.sink.Start(filepath.Base(destPath), resp.ContentLength)
	defer f.sink.Finish()

	if err := f.copyChunks(ctx, file, resp.Body); err != nil {
		file.Close()

		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("cannot close file: %w", err)
	}

	return nil
}

func (f *Fetcher) copyChunks(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, f.chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := src.Read(buf)
		if n > 0 {
			if _, wErr := dst.Write(buf[:n]); wErr != nil {
				return fmt.Errorf("cannot write chunk: %w", wErr)
			}

			f.sink.Add(n)
		}

		if err == io.EOF {
			return nil
		}

		if err != nil {
			return fmt.Errorf("cannot read body: %w", err)
		}
	}
}
