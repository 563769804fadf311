package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"hpicpulse/internal/config"
	"hpicpulse/internal/dataset"
	"hpicpulse/internal/infrastructure"
	"hpicpulse/pkg/contracts"
)

// DatasetStore widens SnapshotStore with cache statistics. *dataset.Store
// satisfies it.
type DatasetStore interface {
	SnapshotStore
	Stats() dataset.CacheStats
}

// SystemStatsProvider supplies current process statistics; nil when
// observability is disabled.
type SystemStatsProvider interface {
	GetCurrentStats(ctx context.Context) *infrastructure.SystemStats
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	store     DatasetStore
	system    SystemStatsProvider
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version string, store DatasetStore, system SystemStatsProvider, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version))

	return &HealthService{
		version:   version,
		store:     store,
		system:    system,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.Debug("HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}
	status.Services["cache"] = hs.checkCacheHealth()

	return status
}

// ReadinessCheck returns readiness status. The process is ready when both
// dataset snapshots can actually be served, so each check runs a load
// through the cache rather than probing file paths a second way.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["membership_dataset"] = hs.checkMembershipDataset(ctx)
	status.Services["revenue_dataset"] = hs.checkRevenueDataset(ctx)
	status.Services["cache"] = hs.checkCacheHealth()

	allReady := true
	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			allReady = false
			break
		}
	}

	if !allReady {
		status.Status = "not_ready"
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}

	if hs.system != nil {
		if stats := hs.system.GetCurrentStats(ctx); stats != nil {
			for k, v := range stats.FormatStats() {
				status.Runtime[k] = v
			}
		}
	}

	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	build := contracts.GetVersionInfo()

	return map[string]interface{}{
		"app":          config.AppName,
		"version":      hs.version,
		"build_time":   build.BuildTime,
		"git_commit":   build.GitCommit,
		"data_format":  build.DataFormat,
		"api_version":  build.APIVersion,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"website":      config.HPICWebsiteURL,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// checkMembershipDataset verifies the membership snapshot loads
func (hs *HealthService) checkMembershipDataset(ctx context.Context) ServiceHealth {
	records, err := hs.store.MembershipTimeline(ctx)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Membership timeline unavailable: %v", err),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("Membership timeline loaded (%d months)", len(records)),
	}
}

// checkRevenueDataset verifies the revenue snapshot loads
func (hs *HealthService) checkRevenueDataset(ctx context.Context) ServiceHealth {
	categories, err := hs.store.RevenueAnalysis(ctx)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Revenue analysis unavailable: %v", err),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("Revenue analysis loaded (%d categories)", len(categories)),
	}
}

// checkCacheHealth reports cache occupancy; the cache cannot fail, so this
// is informational
func (hs *HealthService) checkCacheHealth() ServiceHealth {
	stats := hs.store.Stats()
	return ServiceHealth{
		Status: "ready",
		Message: fmt.Sprintf("%d cached datasets, %.0f%% hit ratio",
			stats.Entries, stats.HitRatio*100),
		Uptime: time.Since(hs.startTime).String(),
	}
}
