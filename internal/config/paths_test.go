package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPaths tests the GetPaths function with various scenarios
func TestGetPaths(t *testing.T) {
	t.Run("basic path resolution", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)
		require.NotNil(t, paths)

		// Verify all paths are absolute
		assert.True(t, filepath.IsAbs(paths.ExecutableDir), "ExecutableDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.DataDir), "DataDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.PublicDataDir), "PublicDataDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.WebDir), "WebDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.LogsDir), "LogsDir should be absolute")

		// Verify paths are correctly related to executable dir
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "public_data"), paths.PublicDataDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "web"), paths.WebDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
	})

	t.Run("consistent calls return same paths", func(t *testing.T) {
		paths1, err1 := GetPaths()
		require.NoError(t, err1)

		paths2, err2 := GetPaths()
		require.NoError(t, err2)

		assert.Equal(t, paths1.ExecutableDir, paths2.ExecutableDir)
		assert.Equal(t, paths1.DataDir, paths2.DataDir)
		assert.Equal(t, paths1.MembershipCSV, paths2.MembershipCSV)
	})

	t.Run("nested directory structure", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(paths.DataDir, "reports"), paths.ReportsDir)
		assert.Equal(t, filepath.Join(paths.DataDir, "cache"), paths.CacheDir)
		assert.Equal(t, filepath.Join(paths.WebDir, "static"), paths.StaticDir)
	})

	t.Run("well-known dataset files", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)

		// Dataset files live in the public data directory
		assert.True(t, strings.HasPrefix(paths.MembershipCSV, paths.PublicDataDir))
		assert.True(t, strings.HasPrefix(paths.RevenueCSV, paths.PublicDataDir))

		assert.Equal(t, "membership_timeline.csv", filepath.Base(paths.MembershipCSV))
		assert.Equal(t, "revenue_analysis.csv", filepath.Base(paths.RevenueCSV))
	})
}

// TestEnsureDirectories tests directory creation functionality
func TestEnsureDirectories(t *testing.T) {
	tempDir := t.TempDir()

	paths := &Paths{
		ExecutableDir: tempDir,
		DataDir:       filepath.Join(tempDir, "data"),
		PublicDataDir: filepath.Join(tempDir, "public_data"),
		ReportsDir:    filepath.Join(tempDir, "data", "reports"),
		CacheDir:      filepath.Join(tempDir, "data", "cache"),
		LogsDir:       filepath.Join(tempDir, "logs"),
		WebDir:        filepath.Join(tempDir, "web"),
		StaticDir:     filepath.Join(tempDir, "web", "static"),
	}

	t.Run("creates all directories", func(t *testing.T) {
		err := paths.EnsureDirectories()
		require.NoError(t, err)

		assert.DirExists(t, paths.DataDir)
		assert.DirExists(t, paths.PublicDataDir)
		assert.DirExists(t, paths.ReportsDir)
		assert.DirExists(t, paths.CacheDir)
		assert.DirExists(t, paths.LogsDir)
		assert.DirExists(t, paths.WebDir)
		assert.DirExists(t, paths.StaticDir)
	})

	t.Run("idempotent - can be called multiple times", func(t *testing.T) {
		err1 := paths.EnsureDirectories()
		require.NoError(t, err1)

		err2 := paths.EnsureDirectories()
		require.NoError(t, err2)

		assert.DirExists(t, paths.DataDir)
		assert.DirExists(t, paths.LogsDir)
	})

	t.Run("handles existing directories", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(paths.DataDir, 0755))
		require.NoError(t, os.MkdirAll(paths.WebDir, 0755))

		err := paths.EnsureDirectories()
		require.NoError(t, err)

		assert.DirExists(t, paths.DataDir)
		assert.DirExists(t, paths.PublicDataDir)
		assert.DirExists(t, paths.WebDir)
		assert.DirExists(t, paths.StaticDir)
	})
}

// TestPathHelperMethods tests various path helper methods
func TestPathHelperMethods(t *testing.T) {
	paths := &Paths{
		ExecutableDir: "/app",
		WebDir:        "/app/web",
		StaticDir:     "/app/web/static",
		PublicDataDir: "/app/public_data",
		ReportsDir:    "/app/data/reports",
		LogsDir:       "/app/logs",
		CacheDir:      "/app/data/cache",
		MembershipCSV: "/app/public_data/membership_timeline.csv",
		RevenueCSV:    "/app/public_data/revenue_analysis.csv",
	}

	tests := []struct {
		name     string
		method   func(string) string
		input    string
		expected string
	}{
		{
			name:     "GetRelativePath",
			method:   paths.GetRelativePath,
			input:    "config.yaml",
			expected: filepath.Join("/app", "config.yaml"),
		},
		{
			name:     "GetWebFilePath",
			method:   paths.GetWebFilePath,
			input:    "index.html",
			expected: filepath.Join("/app/web", "index.html"),
		},
		{
			name:     "GetStaticFilePath",
			method:   paths.GetStaticFilePath,
			input:    "css/main.css",
			expected: filepath.Join("/app/web/static", "css/main.css"),
		},
		{
			name:     "GetReportPath",
			method:   paths.GetReportPath,
			input:    "membership_export.csv",
			expected: filepath.Join("/app/data/reports", "membership_export.csv"),
		},
		{
			name:     "GetLogPath",
			method:   paths.GetLogPath,
			input:    "hpicpulse.log",
			expected: filepath.Join("/app/logs", "hpicpulse.log"),
		},
		{
			name:     "GetCachePath",
			method:   paths.GetCachePath,
			input:    "snapshot.tmp",
			expected: filepath.Join("/app/data/cache", "snapshot.tmp"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.method(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}

	t.Run("dataset file accessors", func(t *testing.T) {
		assert.Equal(t, paths.MembershipCSV, paths.GetMembershipCSVPath())
		assert.Equal(t, paths.RevenueCSV, paths.GetRevenueCSVPath())
	})
}

// TestDatasetCandidates tests the dataset path probing order
func TestDatasetCandidates(t *testing.T) {
	paths := &Paths{
		ExecutableDir: "/app",
		DataDir:       "/app/data",
		PublicDataDir: "/app/public_data",
	}

	candidates := paths.DatasetCandidates("membership_timeline.csv")
	require.NotEmpty(t, candidates)

	// Public data directory always probes first, then the base data dir
	assert.Equal(t, filepath.Join("/app/public_data", "membership_timeline.csv"), candidates[0])
	assert.Equal(t, filepath.Join("/app/data", "membership_timeline.csv"), candidates[1])

	// Working directory fallbacks come last, when cwd differs from the exe dir
	wd, err := os.Getwd()
	require.NoError(t, err)
	if wd != paths.ExecutableDir {
		require.Len(t, candidates, 4)
		assert.Equal(t, filepath.Join(wd, "public_data", "membership_timeline.csv"), candidates[2])
		assert.Equal(t, filepath.Join(wd, "membership_timeline.csv"), candidates[3])
	}
}

// TestFileExists tests the FileExists helper
func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("existing file", func(t *testing.T) {
		file := filepath.Join(tempDir, "exists.csv")
		require.NoError(t, os.WriteFile(file, []byte("month_start\n"), 0644))
		assert.True(t, FileExists(file))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.False(t, FileExists(filepath.Join(tempDir, "missing.csv")))
	})

	t.Run("directory counts as existing", func(t *testing.T) {
		assert.True(t, FileExists(tempDir))
	})
}

// TestValidateDatasetFiles tests dataset presence validation
func TestValidateDatasetFiles(t *testing.T) {
	tempDir := t.TempDir()

	paths := &Paths{
		MembershipCSV: filepath.Join(tempDir, "membership_timeline.csv"),
		RevenueCSV:    filepath.Join(tempDir, "revenue_analysis.csv"),
	}

	t.Run("both files missing", func(t *testing.T) {
		err := paths.ValidateDatasetFiles()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dataset files missing")
		assert.Contains(t, err.Error(), "Membership timeline")
		assert.Contains(t, err.Error(), "Revenue analysis")
	})

	t.Run("one file missing", func(t *testing.T) {
		require.NoError(t, os.WriteFile(paths.MembershipCSV, []byte("month_start\n"), 0644))

		err := paths.ValidateDatasetFiles()
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "Membership timeline")
		assert.Contains(t, err.Error(), "Revenue analysis")
	})

	t.Run("all files present", func(t *testing.T) {
		require.NoError(t, os.WriteFile(paths.RevenueCSV, []byte("category\n"), 0644))

		err := paths.ValidateDatasetFiles()
		assert.NoError(t, err)
	})
}

// TestLogPathResolution exercises the debug logging helper
func TestLogPathResolution(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)

	// Should not panic with the default logger
	paths.LogPathResolution()
}
