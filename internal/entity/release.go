package entity

import "time"

// Release is the latest published release of a remote repository as reported
// by the releases endpoint. It lives only for the duration of one sync cycle;
// only Tag is ever persisted.
type Release struct {
	Tag        string // Release tag name, e.g. "v2.0.0"
	ArchiveURL string // URL of the source archive for this tag
	Assets     []Asset
}

// Asset is a single downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
}

// VersionDir describes one version directory under a repository root.
type VersionDir struct {
	Path    string
	Tag     string // Derived from the directory name
	ModTime time.Time
}
