package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the application release.
	Version = "1.2.0"

	// DataFormatVersion tracks the snapshot CSV layout. Bump it when a
	// column is added or renamed so stale exports are recognizable.
	DataFormatVersion = "v1"

	// APIVersion is the HTTP API generation mounted under /api.
	APIVersion = "v1"
)

// Set at build time via -ldflags "-X hpicpulse/pkg/contracts.BuildTime=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the build identity exposed by the version endpoint.
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
	APIVersion   string `json:"api_version"`
}

// GetVersionInfo collects the build identity of the running binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
		APIVersion:   APIVersion,
	}
}

// GetVersionString returns the short banner form.
func GetVersionString() string {
	return fmt.Sprintf("HPIC Pulse v%s", Version)
}

// GetFullVersionString returns the banner with build details, logged once
// at startup.
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf(
		"%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		GetVersionString(),
		info.BuildTime,
		info.GitCommit,
		info.GoVersion,
		info.OS,
		info.Architecture,
	)
}
