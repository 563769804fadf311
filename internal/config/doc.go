// Package config loads and validates the HPIC Pulse configuration and owns
// every filesystem path the process touches.
//
// Load layers three sources, later ones winning: compiled-in defaults, an
// optional YAML file, then HPIC_* environment variables via envconfig. A
// deployment that sets nothing gets a working dashboard on :8080 reading
// snapshots from ./data/public_data next to the executable.
//
//	HPIC_SERVER_PORT=8080
//	HPIC_LOGGING_LEVEL=info
//	HPIC_DATA_CACHE_TTL=1h
//	HPIC_DATA_MILESTONE_STEP=25
//	HPIC_PATHS_PUBLIC_DATA_DIR=public_data
//
// The loaded Config is checked with validator struct tags before anything
// starts, so a bad port or an out-of-range milestone step fails at boot
// rather than on the first request.
//
// Paths (via GetPaths) resolves everything relative to the executable, never
// the working directory, so systemd units and double-clicked binaries see
// the same files:
//
//	paths, err := config.GetPaths()
//	candidates := paths.DatasetCandidates("membership_timeline.csv")
//	exportPath := paths.GetReportPath("membership_export.csv")
//
// Tests use config.Default() to get a populated Config with no environment
// or filesystem dependencies.
package config
