package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jgivc/relmirror/internal/common"
	"github.com/jgivc/relmirror/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)

	cfg := &config.GithubConfig{
		Token:       "secret",
		APIURL:      srv.URL,
		DownloadURL: "https://github.example",
		UserAgent:   "relmirror-test",
		Accept:      "application/vnd.github.v3+json",
	}

	return NewClient(srv.Client(), cfg), srv
}

func TestLatestRelease(t *testing.T) {
	var gotAuth, gotAccept, gotPath string

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path

		w.Write([]byte(`{
			"tag_name": "v2.0.0",
			"assets": [
				{"name": "widget-linux-amd64", "browser_download_url": "https://example.com/a1"},
				{"name": "widget.sha256", "browser_download_url": "https://example.com/a2"}
			]
		}`))
	})
	defer srv.Close()

	rel, err := client.LatestRelease(context.Background(), "acme/widget")
	require.NoError(t, err)

	require.Equal(t, "/repos/acme/widget/releases/latest", gotPath)
	require.Equal(t, "token secret", gotAuth)
	require.Equal(t, "application/vnd.github.v3+json", gotAccept)

	require.Equal(t, "v2.0.0", rel.Tag)
	require.Equal(t, "https://github.example/acme/widget/archive/refs/tags/v2.0.0.zip", rel.ArchiveURL)
	require.Len(t, rel.Assets, 2)
	require.Equal(t, "widget-linux-amd64", rel.Assets[0].Name)
	require.Equal(t, "https://example.com/a1", rel.Assets[0].DownloadURL)
}

func TestLatestReleaseAbsent(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "no releases",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "empty tag",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"tag_name": "", "assets": []}`))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, srv := newTestClient(tc.handler)
			defer srv.Close()

			_, err := client.LatestRelease(context.Background(), "acme/widget")
			require.ErrorIs(t, err, common.ErrNoReleases)
		})
	}
}

func TestLatestReleaseServerError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := client.LatestRelease(context.Background(), "acme/widget")
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrNoReleases)
}

func TestAssetHeaders(t *testing.T) {
	client := NewClient(nil, &config.GithubConfig{Token: "secret", UserAgent: "ua"})

	h := client.AssetHeaders()
	require.Equal(t, "application/octet-stream", h["Accept"])
	require.Equal(t, "token secret", h["Authorization"])
	require.Equal(t, "ua", h["User-Agent"])
}

func TestHeadersWithoutToken(t *testing.T) {
	client := NewClient(nil, &config.GithubConfig{UserAgent: "ua"})

	_, exists := client.MetadataHeaders()["Authorization"]
	require.False(t, exists)
}
