package config

import "time"

// Application constants - all hardcoded values for the HPIC Pulse system
const (
	// Application Info
	AppName    = "HPIC Pulse"
	AppVersion = "1.2.0"
	AppVendor  = "Highland Park Improvement Club"

	// Dataset Files
	MembershipFileName = "membership_timeline.csv"
	RevenueFileName    = "revenue_analysis.csv"

	// Dataset Names (cache keys, metric labels)
	DatasetMembership = "membership"
	DatasetRevenue    = "revenue"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultRequestTimeout = 60 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir       = "data"
	DefaultPublicDataDir = "public_data"
	DefaultLogsDir       = "logs"
	DefaultWebDir        = "web"
	DefaultReportsDir    = "data/reports"

	// Cache Settings
	DatasetCacheTTL           = 1 * time.Hour
	DatasetCacheSweepInterval = 10 * time.Minute

	// Analysis Settings
	DefaultMilestoneStep  = 25
	GrowthWindowMonths    = 6
	SharePrecisionDigits  = 1
	AmountPrecisionDigits = 2

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10

	// Error Messages
	ErrMsgMembershipMissing = "Membership timeline data not found. Publish membership_timeline.csv to the public_data directory."
	ErrMsgRevenueMissing    = "Revenue analysis data not found. Publish revenue_analysis.csv to the public_data directory."
	ErrMsgNoDataInRange     = "No data available for the selected date range."

	// Success Messages
	MsgExportReady = "Export generated successfully."
)

// Feature Flags - compile-time configuration
const (
	// Core Features
	FeatureMetricsEnabled     = true
	FeatureHealthCheckEnabled = true
	FeatureExportEnabled      = true

	// Security Features
	FeatureRateLimitingEnabled = true

	// Development Features
	FeatureDebugLoggingEnabled = false
	FeatureMockDataEnabled     = false
)

// URLs and Endpoints
const (
	// Public Site
	HPICWebsiteURL = "https://www.hpic-ws.org"

	// API Endpoints (internal)
	APIBasePath       = "/api"
	DashboardEndpoint = "/api/dashboard"
	TimelineEndpoint  = "/api/membership/timeline"
	RevenueEndpoint   = "/api/revenue/breakdown"
	ExportEndpoint    = "/api/export"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
)

// GetFeatureFlag returns the value of a feature flag
func GetFeatureFlag(flag string) bool {
	switch flag {
	case "metrics":
		return FeatureMetricsEnabled
	case "health_check":
		return FeatureHealthCheckEnabled
	case "export":
		return FeatureExportEnabled
	case "rate_limiting":
		return FeatureRateLimitingEnabled
	case "debug_logging":
		return FeatureDebugLoggingEnabled
	case "mock_data":
		return FeatureMockDataEnabled
	default:
		return false
	}
}
