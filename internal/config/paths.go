package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths is where every directory and well-known file the process touches
// gets decided. Nothing else in the codebase joins path segments from
// configuration on its own.
type Paths struct {
	ExecutableDir string
	WebDir        string
	StaticDir     string
	DataDir       string
	PublicDataDir string
	ReportsDir    string
	CacheDir      string
	LogsDir       string

	// Well-known dataset files (published snapshots)
	MembershipCSV string
	RevenueCSV    string
}

// GetPaths resolves the full path layout against the executable directory.
// The working directory never participates, so launching from a shell, a
// service manager or a file browser all see the same tree.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Symlinked installs should resolve to the real binary location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	if logger := slog.Default(); logger != nil {
		logger.Debug("Resolved executable directory",
			slog.String("exe_path", exe),
			slog.String("exe_dir", exeDir))
	}

	// Layout next to the binary:
	//   public_data/   published snapshot CSVs
	//   data/reports/  generated exports
	//   data/cache/    staging and temporary files
	//   logs/          application logs
	//   web/           frontend assets
	dataDir := filepath.Join(exeDir, "data")
	publicDataDir := filepath.Join(exeDir, "public_data")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		PublicDataDir: publicDataDir,
		WebDir:        filepath.Join(exeDir, "web"),
		StaticDir:     filepath.Join(exeDir, "web", "static"),
		ReportsDir:    filepath.Join(dataDir, "reports"),
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(exeDir, "logs"),

		MembershipCSV: filepath.Join(publicDataDir, "membership_timeline.csv"),
		RevenueCSV:    filepath.Join(publicDataDir, "revenue_analysis.csv"),
	}

	return paths, nil
}

// EnsureDirectories creates the whole directory layout so later writes
// never have to care whether a parent exists.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.PublicDataDir,
		p.ReportsDir,
		p.CacheDir,
		p.LogsDir,
		p.WebDir,
		p.StaticDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath joins subpath onto the executable directory.
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists reports whether path names an existing file or directory.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// DatasetCandidates returns the paths probed for a dataset file, in priority
// order: the public data directory first, then the base data directory, then
// the working directory equivalents as a fallback for ad-hoc runs.
func (p *Paths) DatasetCandidates(filename string) []string {
	candidates := []string{
		filepath.Join(p.PublicDataDir, filename),
		filepath.Join(p.DataDir, filename),
	}

	if wd, err := os.Getwd(); err == nil && wd != p.ExecutableDir {
		candidates = append(candidates,
			filepath.Join(wd, "public_data", filename),
			filepath.Join(wd, filename),
		)
	}

	return candidates
}

// Per-directory join helpers. Callers build file paths through these so
// the directory layout stays defined in one place.

func (p *Paths) GetWebFilePath(filename string) string {
	return filepath.Join(p.WebDir, filename)
}

func (p *Paths) GetStaticFilePath(filename string) string {
	return filepath.Join(p.StaticDir, filename)
}

func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetMembershipCSVPath returns the published membership timeline snapshot.
func (p *Paths) GetMembershipCSVPath() string {
	return p.MembershipCSV
}

// GetRevenueCSVPath returns the published revenue analysis snapshot.
func (p *Paths) GetRevenueCSVPath() string {
	return p.RevenueCSV
}

// LogPathResolution writes one summary line of where everything resolved,
// the first thing to check when snapshots fail to load.
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("public_data", p.PublicDataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("cache", p.CacheDir),
			slog.String("logs", p.LogsDir),
			slog.String("web", p.WebDir),
		),
		slog.Group("dataset_files",
			slog.String("membership_csv", p.MembershipCSV),
			slog.String("revenue_csv", p.RevenueCSV),
		))
}

// ValidateDatasetFiles reports which published snapshots are missing, all
// of them in one error rather than failing on the first.
func (p *Paths) ValidateDatasetFiles() error {
	requiredFiles := map[string]string{
		"Membership timeline": p.MembershipCSV,
		"Revenue analysis":    p.RevenueCSV,
	}

	var missingFiles []string
	for name, path := range requiredFiles {
		if !FileExists(path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", name, path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("dataset files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}
