package common

import "fmt"

var (
	ErrNoReleases = fmt.Errorf("no releases found")
)

// NetworkError means the release metadata query exhausted its retries.
// The repository is skipped for the cycle; the run continues.
type NetworkError struct {
	Repo string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cannot query releases of %s: %s", e.Repo, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DownloadError means a fetch failed after its partial file was cleaned up.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("cannot download %s: %s", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// FileSystemError means directory creation or version-file I/O failed.
type FileSystemError struct {
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("filesystem operation failed on %s: %s", e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

// SecurityError means a deletion target resolved outside the sandbox root.
// It is never retried with another strategy.
type SecurityError struct {
	Path string
	Root string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("refusing to delete %s: outside sandbox %s", e.Path, e.Root)
}
