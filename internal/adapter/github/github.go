package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jgivc/relmirror/internal/common"
	"github.com/jgivc/relmirror/internal/config"
	"github.com/jgivc/relmirror/internal/entity"
)

const acceptOctetStream = "application/octet-stream"

type release struct {
	TagName string         `json:"tag_name"`
	Assets  []entity.Asset `json:"assets"`
}

// Client queries the GitHub releases API for a repository's latest release.
type Client struct {
	cl  *http.Client
	cfg *config.GithubConfig
}

func NewClient(cl *http.Client, cfg *config.GithubConfig) *Client {
	return &Client{
		cl:  cl,
		cfg: cfg,
	}
}

// LatestRelease resolves the latest release metadata for repo. A repository
// without releases, or a release without a tag, yields common.ErrNoReleases.
// Any other failure is reported as a plain error the caller may retry.
func (c *Client) LatestRelease(ctx context.Context, repo string) (*entity.Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.cfg.APIURL, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}

	for k, v := range c.MetadataHeaders() {
		req.Header.Set(k, v)
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot query latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, common.ErrNoReleases
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("cannot decode release: %w", err)
	}

	if rel.TagName == "" {
		return nil, common.ErrNoReleases
	}

	return &entity.Release{
		Tag:        rel.TagName,
		ArchiveURL: fmt.Sprintf("%s/%s/archive/refs/tags/%s.zip", c.cfg.DownloadURL, repo, rel.TagName),
		Assets:     rel.Assets,
	}, nil
}

// MetadataHeaders are the request headers for API queries and source
// archive downloads.
func (c *Client) MetadataHeaders() map[string]string {
	return c.headers(c.cfg.Accept)
}

// AssetHeaders are the request headers for release asset downloads.
func (c *Client) AssetHeaders() map[string]string {
	return c.headers(acceptOctetStream)
}

func (c *Client) headers(accept string) map[string]string {
	h := map[string]string{
		"User-Agent": c.cfg.UserAgent,
		"Accept":     accept,
	}

	if c.cfg.Token != "" {
		h["Authorization"] = "token " + c.cfg.Token
	}

	return h
}
