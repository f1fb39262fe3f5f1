package retention

import (
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/jgivc/relmirror/internal/adapter/remover"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, fs afero.Fs) *Manager {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rm, err := remover.New(fs, "/downloads", log)
	require.NoError(t, err)

	return New(fs, rm, log)
}

func makeVersionDir(t *testing.T, fs afero.Fs, path string, mtime time.Time) {
	t.Helper()

	require.NoError(t, fs.MkdirAll(path, 0o755))
	require.NoError(t, afero.WriteFile(fs, path+"/file.zip", []byte("data"), 0o644))
	require.NoError(t, fs.Chtimes(path, mtime, mtime))
}

func listDirs(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()

	entries, err := afero.ReadDir(fs, root)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	return names
}

func TestPrune(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		dirs     map[string]time.Time
		keep     int
		expected []string
	}{
		{
			name: "keeps most recent",
			dirs: map[string]time.Time{
				"v1.0.0": base,
				"v1.1.0": base.Add(time.Hour),
				"v2.0.0": base.Add(2 * time.Hour),
			},
			keep:     2,
			expected: []string{"v1.1.0", "v2.0.0"},
		},
		{
			name: "fewer than keep",
			dirs: map[string]time.Time{
				"v1.0.0": base,
				"v2.0.0": base.Add(time.Hour),
			},
			keep:     3,
			expected: []string{"v1.0.0", "v2.0.0"},
		},
		{
			name: "keep zero deletes all",
			dirs: map[string]time.Time{
				"v1.0.0": base,
				"v2.0.0": base.Add(time.Hour),
			},
			keep:     0,
			expected: nil,
		},
		{
			name: "mod time tie broken by name descending",
			dirs: map[string]time.Time{
				"v1.0.0": base,
				"v1.0.1": base,
				"v1.0.2": base,
			},
			keep:     2,
			expected: []string{"v1.0.1", "v1.0.2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for name, mtime := range tc.dirs {
				makeVersionDir(t, fs, "/downloads/widget/"+name, mtime)
			}

			m := newTestManager(t, fs)
			m.Prune("/downloads/widget", tc.keep)

			require.Equal(t, tc.expected, listDirs(t, fs, "/downloads/widget"))
		})
	}
}

func TestPruneMissingRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := newTestManager(t, fs)

	m.Prune("/downloads/nothing-here", 3)
}

func TestPruneIgnoresFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	makeVersionDir(t, fs, "/downloads/widget/v1.0.0", base)
	makeVersionDir(t, fs, "/downloads/widget/v2.0.0", base.Add(time.Hour))
	require.NoError(t, afero.WriteFile(fs, "/downloads/widget/version.txt", []byte("v2.0.0"), 0o644))

	m := newTestManager(t, fs)
	m.Prune("/downloads/widget", 1)

	require.Equal(t, []string{"v2.0.0"}, listDirs(t, fs, "/downloads/widget"))

	exists, _ := afero.Exists(fs, "/downloads/widget/version.txt")
	require.True(t, exists, "the version record is not a version directory")
}
