package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hpicpulse/internal/config"
)

// Manager provides file management operations rooted in the application
// paths. Relative paths resolve by prefix: "reports/", "cache/", "logs/",
// "public_data/", "web/" and "static/" map to their directories, anything
// else lands in the data directory.
type Manager struct {
	paths     *config.Paths
	discovery *Discovery
}

// NewManager builds a Manager over the resolved application paths.
func NewManager(paths *config.Paths) *Manager {
	return &Manager{
		paths:     paths,
		discovery: NewDiscovery(paths.ExecutableDir),
	}
}

// FileExists reports whether the path resolves to an existing file.
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	slog.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates the directory and any missing parents.
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.resolvePath(path)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return os.MkdirAll(fullPath, 0755)
	}
	return nil
}

// CopyFile duplicates src at dst, creating parent directories and syncing
// the destination before returning.
func (m *Manager) CopyFile(src, dst string) error {
	srcPath := m.resolvePath(src)
	dstPath := m.resolvePath(dst)

	slog.Debug("Copying file",
		slog.String("src", srcPath),
		slog.String("dst", dstPath))

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	return dstFile.Sync()
}

// MoveFile moves a file from source to destination. Rename is attempted
// first; a copy-and-delete covers cross-filesystem moves.
func (m *Manager) MoveFile(src, dst string) error {
	srcPath := m.resolvePath(src)
	dstPath := m.resolvePath(dst)

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.Rename(srcPath, dstPath); err == nil {
		return nil
	}

	if err := m.CopyFile(src, dst); err != nil {
		return err
	}

	return os.Remove(srcPath)
}

// DeleteFile removes the file at the resolved path.
func (m *Manager) DeleteFile(path string) error {
	fullPath := m.resolvePath(path)

	slog.Debug("Deleting file", slog.String("path", fullPath))

	return os.Remove(fullPath)
}

// GetFileSize returns the file's size in bytes.
func (m *Manager) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(m.resolvePath(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ReadFile returns the whole file contents.
func (m *Manager) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(m.resolvePath(path))
}

// WriteFile writes data at the resolved path, creating parents as needed.
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.resolvePath(path)

	slog.Debug("Writing file",
		slog.String("path", fullPath),
		slog.Int("size_bytes", len(data)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(fullPath, data, 0644)
}

// WriteReport publishes a report file into the reports directory. The data
// is staged in the cache directory first and moved into place, so a crash
// mid-write never leaves a truncated report behind.
func (m *Manager) WriteReport(name string, data []byte) (string, error) {
	staged := filepath.Join("cache", name+".tmp")
	if err := m.WriteFile(staged, data); err != nil {
		return "", fmt.Errorf("failed to stage report: %w", err)
	}

	target := filepath.Join("reports", name)
	if err := m.MoveFile(staged, target); err != nil {
		return "", fmt.Errorf("failed to publish report: %w", err)
	}

	fullPath := m.paths.GetReportPath(name)
	slog.Info("Report written",
		slog.String("path", fullPath),
		slog.Int("size_bytes", len(data)))

	return fullPath, nil
}

// PruneReports deletes all but the newest keep report files carrying the
// given name prefix. It returns the number of files removed.
func (m *Manager) PruneReports(prefix string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	reports, err := m.discovery.FindReportFiles(m.paths.ReportsDir, prefix)
	if err != nil {
		return 0, err
	}
	if len(reports) <= keep {
		return 0, nil
	}

	removed := 0
	for _, report := range reports[keep:] {
		if err := os.Remove(report.Path); err != nil {
			slog.Warn("Failed to prune report",
				slog.String("path", report.Path),
				slog.String("error", err.Error()))
			continue
		}
		removed++
	}

	slog.Info("Pruned old reports",
		slog.String("prefix", prefix),
		slog.Int("kept", keep),
		slog.Int("removed", removed))

	return removed, nil
}

// ListFiles returns the plain-file names directly under dir.
func (m *Manager) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(m.resolvePath(dir))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}

// GetRelativePath rewrites an absolute path relative to the executable
// directory, mostly for log lines.
func (m *Manager) GetRelativePath(fullPath string) (string, error) {
	return filepath.Rel(m.paths.ExecutableDir, fullPath)
}

// resolvePath maps a relative path onto its base directory by prefix.
// Absolute paths pass through untouched.
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, "reports/"):
		return m.paths.GetReportPath(strings.TrimPrefix(path, "reports/"))
	case strings.HasPrefix(path, "cache/"):
		return m.paths.GetCachePath(strings.TrimPrefix(path, "cache/"))
	case strings.HasPrefix(path, "logs/"):
		return m.paths.GetLogPath(strings.TrimPrefix(path, "logs/"))
	case strings.HasPrefix(path, "public_data/"):
		return filepath.Join(m.paths.PublicDataDir, strings.TrimPrefix(path, "public_data/"))
	case strings.HasPrefix(path, "web/"):
		return m.paths.GetWebFilePath(strings.TrimPrefix(path, "web/"))
	case strings.HasPrefix(path, "static/"):
		return m.paths.GetStaticFilePath(strings.TrimPrefix(path, "static/"))
	default:
		return filepath.Join(m.paths.DataDir, path)
	}
}
