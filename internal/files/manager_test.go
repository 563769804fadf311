package files

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hpicpulse/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()

	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	publicDataDir := filepath.Join(base, "public_data")

	paths := &config.Paths{
		ExecutableDir: base,
		DataDir:       dataDir,
		PublicDataDir: publicDataDir,
		WebDir:        filepath.Join(base, "web"),
		StaticDir:     filepath.Join(base, "web", "static"),
		ReportsDir:    filepath.Join(dataDir, "reports"),
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(base, "logs"),
		MembershipCSV: filepath.Join(publicDataDir, config.MembershipFileName),
		RevenueCSV:    filepath.Join(publicDataDir, config.RevenueFileName),
	}
	require.NoError(t, paths.EnsureDirectories())

	return paths
}

func TestNewManager(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	assert.NotNil(t, manager)
	assert.Equal(t, paths, manager.paths)
	assert.NotNil(t, manager.discovery)
}

func TestManagerResolvePath(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"reports prefix", "reports/out.csv", filepath.Join(paths.ReportsDir, "out.csv")},
		{"cache prefix", "cache/tmp.json", filepath.Join(paths.CacheDir, "tmp.json")},
		{"logs prefix", "logs/app.log", filepath.Join(paths.LogsDir, "app.log")},
		{"public data prefix", "public_data/membership_timeline.csv", paths.MembershipCSV},
		{"web prefix", "web/index.html", filepath.Join(paths.WebDir, "index.html")},
		{"static prefix", "static/app.css", filepath.Join(paths.StaticDir, "app.css")},
		{"bare name lands in data dir", "notes.txt", filepath.Join(paths.DataDir, "notes.txt")},
		{"absolute path passes through", "/tmp/abs.txt", "/tmp/abs.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, manager.resolvePath(tt.path))
		})
	}
}

func TestManagerWriteAndReadFile(t *testing.T) {
	manager := NewManager(testPaths(t))

	content := []byte("month_start,active_members\n2025-01-01,150\n")
	require.NoError(t, manager.WriteFile("reports/sample.csv", content))

	assert.True(t, manager.FileExists("reports/sample.csv"))

	got, err := manager.ReadFile("reports/sample.csv")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	size, err := manager.GetFileSize("reports/sample.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
}

func TestManagerWriteFileCreatesParents(t *testing.T) {
	manager := NewManager(testPaths(t))

	require.NoError(t, manager.WriteFile("reports/nested/deep/out.txt", []byte("x")))
	assert.True(t, manager.FileExists("reports/nested/deep/out.txt"))
}

func TestManagerCopyFile(t *testing.T) {
	manager := NewManager(testPaths(t))

	content := []byte("copy me")
	require.NoError(t, manager.WriteFile("cache/src.txt", content))
	require.NoError(t, manager.CopyFile("cache/src.txt", "reports/dst.txt"))

	assert.True(t, manager.FileExists("cache/src.txt"), "source survives a copy")

	got, err := manager.ReadFile("reports/dst.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestManagerCopyFileMissingSource(t *testing.T) {
	manager := NewManager(testPaths(t))

	err := manager.CopyFile("cache/missing.txt", "reports/dst.txt")
	assert.Error(t, err)
}

func TestManagerMoveFile(t *testing.T) {
	manager := NewManager(testPaths(t))

	content := []byte("move me")
	require.NoError(t, manager.WriteFile("cache/src.txt", content))
	require.NoError(t, manager.MoveFile("cache/src.txt", "reports/dst.txt"))

	assert.False(t, manager.FileExists("cache/src.txt"), "source is gone after a move")

	got, err := manager.ReadFile("reports/dst.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestManagerDeleteFile(t *testing.T) {
	manager := NewManager(testPaths(t))

	require.NoError(t, manager.WriteFile("cache/gone.txt", []byte("x")))
	require.NoError(t, manager.DeleteFile("cache/gone.txt"))
	assert.False(t, manager.FileExists("cache/gone.txt"))

	assert.Error(t, manager.DeleteFile("cache/gone.txt"), "deleting twice fails")
}

func TestManagerEnsureDirectory(t *testing.T) {
	manager := NewManager(testPaths(t))

	require.NoError(t, manager.EnsureDirectory("reports/archive"))
	info, err := os.Stat(manager.resolvePath("reports/archive"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent
	require.NoError(t, manager.EnsureDirectory("reports/archive"))
}

func TestManagerListFiles(t *testing.T) {
	manager := NewManager(testPaths(t))

	require.NoError(t, manager.WriteFile("reports/a.csv", []byte("a")))
	require.NoError(t, manager.WriteFile("reports/b.csv", []byte("b")))
	require.NoError(t, manager.EnsureDirectory("reports/subdir"))

	names, err := manager.ListFiles("reports/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.csv", "b.csv"}, names, "directories are excluded")
}

func TestManagerGetRelativePath(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	rel, err := manager.GetRelativePath(filepath.Join(paths.ReportsDir, "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "reports", "out.csv"), rel)
}

func TestManagerWriteReport(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	content := []byte(`{"view_state":"ok"}`)
	path, err := manager.WriteReport("hpic_insights_20250825.json", content)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "hpic_insights_20250825.json"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// The staging file must not linger in the cache directory
	leftovers, err := os.ReadDir(paths.CacheDir)
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestManagerPruneReports(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("hpic_insights_2025010%d.json", i+1)
		path := filepath.Join(paths.ReportsDir, name)
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

		modTime := time.Now().Add(time.Duration(i-5) * time.Minute)
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}
	// An unrelated report must survive pruning
	other := filepath.Join(paths.ReportsDir, "hpic_membership_20250101.csv")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))

	removed, err := manager.PruneReports("hpic_insights_", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	names, err := manager.ListFiles("reports/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"hpic_insights_20250104.json",
		"hpic_insights_20250105.json",
		"hpic_membership_20250101.csv",
	}, names, "the two newest insight reports and the unrelated file remain")
}

func TestManagerPruneReportsUnderKeep(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	require.NoError(t, os.WriteFile(
		filepath.Join(paths.ReportsDir, "hpic_insights_20250101.json"), []byte("{}"), 0644))

	removed, err := manager.PruneReports("hpic_insights_", 5)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
