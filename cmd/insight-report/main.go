package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hpicpulse/internal/config"
	"hpicpulse/internal/dataset"
	"hpicpulse/internal/exporter"
	"hpicpulse/internal/files"
	"hpicpulse/internal/infrastructure"
	"hpicpulse/internal/services"
	"hpicpulse/internal/validation"
	"hpicpulse/pkg/contracts/domain"
)

const (
	reportPrefix = "hpic_insights_"
	dateLayout   = "2006-01-02"
)

func main() {
	dataDir := flag.String("data", "", "directory containing the published snapshot CSVs (defaults to public_data next to the executable)")
	outputDir := flag.String("out", "", "output directory for the insight report (defaults to data/reports)")
	startFlag := flag.String("start", "", "range start as YYYY-MM-DD (defaults to the first month on record)")
	endFlag := flag.String("end", "", "range end as YYYY-MM-DD (defaults to the last month on record)")
	format := flag.String("format", "json", "report format: json or csv")
	milestoneStep := flag.Int("milestone-step", config.DefaultMilestoneStep, "active-member step size for milestone detection")
	keep := flag.Int("keep", 12, "number of past insight reports to keep (older ones are pruned)")
	flag.Parse()

	infrastructure.MustInitializeLogger(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	})

	// One run shares one trace ID, the same way one HTTP request does.
	ctx := infrastructure.EnsureTraceID(context.Background())
	logger := infrastructure.LoggerWithContext(ctx)

	if *format != "json" && *format != "csv" {
		logger.Error("Unsupported report format", "format", *format, "supported", "json, csv")
		os.Exit(1)
	}

	filters, err := parseRange(*startFlag, *endFlag)
	if err != nil {
		logger.Error("Invalid date range", "error", err)
		os.Exit(1)
	}

	// Initialize paths
	paths, err := config.GetPaths()
	if err != nil {
		logger.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		abs, err := filepath.Abs(*dataDir)
		if err != nil {
			logger.Error("Failed to resolve data directory", "dir", *dataDir, "error", err)
			os.Exit(1)
		}
		paths.PublicDataDir = abs
		paths.MembershipCSV = filepath.Join(abs, config.MembershipFileName)
		paths.RevenueCSV = filepath.Join(abs, config.RevenueFileName)
	}
	if *outputDir == "" {
		*outputDir = paths.ReportsDir
	} else {
		abs, err := filepath.Abs(*outputDir)
		if err != nil {
			logger.Error("Failed to resolve output directory", "dir", *outputDir, "error", err)
			os.Exit(1)
		}
		paths.ReportsDir = abs
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(paths.PublicDataDir, "*.csv"); err != nil {
		logger.Error("Data directory is not usable", "error", err)
		os.Exit(1)
	}

	// Locate the published snapshots
	discovery := files.NewDiscovery(paths.ExecutableDir)
	snapshots, err := discovery.FindSnapshotFiles(paths.PublicDataDir)
	if err != nil {
		logger.Error("Failed to scan snapshot directory",
			"dir", paths.PublicDataDir, "error", err)
		os.Exit(1)
	}

	membership, ok := snapshots[config.DatasetMembership]
	if !ok {
		logger.Error("Membership snapshot not found",
			"dir", paths.PublicDataDir,
			"expected", config.MembershipFileName,
			"hint", "publish the snapshot CSVs or pass -data")
		os.Exit(1)
	}
	revenue, ok := snapshots[config.DatasetRevenue]
	if !ok {
		logger.Error("Revenue snapshot not found",
			"dir", paths.PublicDataDir,
			"expected", config.RevenueFileName,
			"hint", "publish the snapshot CSVs or pass -data")
		os.Exit(1)
	}

	if latest, ok := files.GetLatestFile([]files.FileInfo{membership, revenue}); ok {
		logger.Info("Snapshots located",
			"newest", latest.Name,
			"published_at", latest.ModTime.Format(time.RFC3339))
	}

	// Preflight: headers and row counts before the pipeline runs
	membershipRows, err := validator.ValidateSnapshotCSV(membership.Path, dataset.MembershipColumns())
	if err != nil {
		logger.Error("Membership snapshot failed validation", "error", err)
		os.Exit(1)
	}
	revenueRows, err := validator.ValidateSnapshotCSV(revenue.Path, dataset.RevenueColumns())
	if err != nil {
		logger.Error("Revenue snapshot failed validation", "error", err)
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(paths.ReportsDir); err != nil {
		logger.Error("Output directory is not usable", "error", err)
		os.Exit(1)
	}
	logger.Info("Snapshots validated",
		"membership_rows", membershipRows,
		"revenue_rows", revenueRows)

	// Run the dashboard pipeline against the snapshots
	loader := dataset.NewLoader(paths, logger)
	store := dataset.NewStore(loader, config.DatasetCacheTTL, config.DatasetCacheSweepInterval, logger, nil)
	defer store.Stop()

	service := services.NewDashboardService(store, nil, *milestoneStep, logger)

	view, err := service.Compute(ctx, filters)
	if err != nil {
		logger.Error("Failed to compute insights", "error", err)
		os.Exit(1)
	}
	if view.State == domain.ViewStateNoData {
		logger.Warn("No data in the selected range; the report carries a warning instead of metrics",
			"start", *startFlag, "end", *endFlag)
	}

	// Render and publish the report
	report, name, err := renderReport(view, *format)
	if err != nil {
		logger.Error("Failed to render report", "format", *format, "error", err)
		os.Exit(1)
	}

	manager := files.NewManager(paths)
	path, err := manager.WriteReport(name, report)
	if err != nil {
		logger.Error("Failed to write report", "error", err)
		os.Exit(1)
	}

	if removed, err := manager.PruneReports(reportPrefix, *keep); err != nil {
		logger.Warn("Failed to prune old reports", "error", err)
	} else if removed > 0 {
		logger.Info("Pruned old insight reports", "removed", removed)
	}

	logger.Info("Insight report generated",
		"report", path,
		"format", *format,
		"view_state", string(view.State))

	printSummary(view)
}

// parseRange converts the -start/-end flags into pipeline filters. Empty
// flags leave that side unbounded.
func parseRange(start, end string) (services.DashboardFilters, error) {
	var filters services.DashboardFilters

	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return filters, fmt.Errorf("invalid -start %q: expected YYYY-MM-DD", start)
		}
		filters.Start = t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return filters, fmt.Errorf("invalid -end %q: expected YYYY-MM-DD", end)
		}
		filters.End = t
	}
	if !filters.Start.IsZero() && !filters.End.IsZero() && filters.Start.After(filters.End) {
		return filters, fmt.Errorf("-start %s is after -end %s", start, end)
	}

	return filters, nil
}

// renderReport serializes the view in the requested format and names the
// output file with today's date stamp.
func renderReport(view *domain.DashboardView, format string) ([]byte, string, error) {
	stamp := time.Now().Format("20060102")

	switch format {
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("marshal report: %w", err)
		}
		return data, fmt.Sprintf("%s%s.json", reportPrefix, stamp), nil
	case "csv":
		var buf bytes.Buffer
		if err := exporter.WriteInsightsCSV(&buf, view); err != nil {
			return nil, "", fmt.Errorf("render report: %w", err)
		}
		return buf.Bytes(), fmt.Sprintf("%s%s.csv", reportPrefix, stamp), nil
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
}

// printSummary writes the headline numbers to stdout after the report is
// published.
func printSummary(view *domain.DashboardView) {
	if view.State == domain.ViewStateNoData {
		fmt.Println("\nNo membership data in the selected range.")
		return
	}

	fmt.Println("\n=== MEMBERSHIP ===")
	for _, tile := range view.Tiles {
		line := tile.Value
		if tile.Delta != "" {
			line += " (" + tile.Delta + ")"
		}
		if tile.Share != "" {
			line += " " + tile.Share
		}
		fmt.Printf("%-24s %s\n", tile.Label, line)
	}

	fmt.Println("\n=== GROWTH ===")
	for _, card := range view.Insights {
		line := card.Value
		if card.Caption != "" {
			line += " (" + card.Caption + ")"
		}
		fmt.Printf("%-24s %s\n", card.Label, line)
	}

	if len(view.Milestones) > 0 {
		fmt.Println("\n=== MILESTONES ===")
		for _, m := range view.Milestones {
			fmt.Printf("%-24s %s\n", m.Month.Format("January 2006"), m.Label)
		}
	}

	fmt.Println("\n=== REVENUE ===")
	for _, row := range view.RevenueRows {
		fmt.Printf("%-24s %12s  %s of total\n", row.Label, row.TotalRevenue, row.ShareOfTotal)
	}

	if view.DataThrough != "" {
		fmt.Printf("\nData through %s\n", view.DataThrough)
	}
}
