package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hpicpulse/internal/config"
	apierrors "hpicpulse/internal/errors"
	"hpicpulse/pkg/contracts/domain"
)

// monthStartLayouts are the date formats accepted for month_start. The
// snapshots come from a spreadsheet export pipeline that has produced all
// of these over time.
var monthStartLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01",
	"01/02/2006",
}

// membershipColumns are the required headers of membership_timeline.csv.
var membershipColumns = []string{
	"month_start",
	"active_members",
	"classic_members",
	"champion_members",
	"hpic_members",
	"pmp_members",
}

// revenueColumns are the required headers of revenue_analysis.csv.
var revenueColumns = []string{
	"category",
	"total_revenue",
	"revenue_2025",
	"transaction_count",
	"unique_contributors",
	"percentage_of_total",
	"avg_transaction_amount",
}

// MembershipColumns returns the required headers of membership_timeline.csv.
func MembershipColumns() []string {
	return append([]string(nil), membershipColumns...)
}

// RevenueColumns returns the required headers of revenue_analysis.csv.
func RevenueColumns() []string {
	return append([]string(nil), revenueColumns...)
}

// Loader reads the CSV snapshots from disk and parses them into domain
// records. It holds no state between calls; caching sits above it in Store.
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewLoader creates a loader that resolves files through the given paths.
func NewLoader(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		paths:  paths,
		logger: logger.With(slog.String("component", "dataset-loader")),
	}
}

// MembershipTimeline loads and parses membership_timeline.csv. Records are
// returned sorted by month ascending. The second return value is the
// resolved file path.
func (l *Loader) MembershipTimeline(ctx context.Context) ([]domain.MembershipRecord, string, error) {
	path, err := l.locate(config.MembershipFileName)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, "", apierrors.NewStorageError(
			fmt.Sprintf("failed to open %s", filepath.Base(path)), err,
		).WithContext("file", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	idx, err := columnIndex(reader, path, membershipColumns)
	if err != nil {
		return nil, "", err
	}

	var records []domain.MembershipRecord
	row := 1 // header row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, "", apierrors.NewParsingError(
				fmt.Sprintf("%s: row %d: malformed CSV record", filepath.Base(path), row), err,
			).WithContext("file", path).WithContext("row", row)
		}

		month, err := parseMonthStart(record[idx["month_start"]])
		if err != nil {
			return nil, "", cellError(path, row, "month_start", err)
		}

		rec := domain.MembershipRecord{MonthStart: month}
		for _, col := range []struct {
			name string
			dst  *int
		}{
			{"active_members", &rec.ActiveMembers},
			{"classic_members", &rec.ClassicMembers},
			{"champion_members", &rec.ChampionMembers},
			{"hpic_members", &rec.HPICMembers},
			{"pmp_members", &rec.PMPMembers},
		} {
			value, err := parseCount(record[idx[col.name]])
			if err != nil {
				return nil, "", cellError(path, row, col.name, err)
			}
			*col.dst = value
		}

		records = append(records, rec)
	}

	// Downstream stages assume chronological order
	sort.Slice(records, func(i, j int) bool {
		return records[i].MonthStart.Before(records[j].MonthStart)
	})

	l.logger.DebugContext(ctx, "membership timeline loaded",
		slog.String("file", path),
		slog.Int("rows", len(records)),
	)

	return records, path, nil
}

// RevenueAnalysis loads and parses revenue_analysis.csv. Rows keep the
// file's order; the aggregation layer does not depend on it. The second
// return value is the resolved file path.
func (l *Loader) RevenueAnalysis(ctx context.Context) ([]domain.RevenueCategory, string, error) {
	path, err := l.locate(config.RevenueFileName)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, "", apierrors.NewStorageError(
			fmt.Sprintf("failed to open %s", filepath.Base(path)), err,
		).WithContext("file", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	idx, err := columnIndex(reader, path, revenueColumns)
	if err != nil {
		return nil, "", err
	}

	var categories []domain.RevenueCategory
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, "", apierrors.NewParsingError(
				fmt.Sprintf("%s: row %d: malformed CSV record", filepath.Base(path), row), err,
			).WithContext("file", path).WithContext("row", row)
		}

		cat := domain.RevenueCategory{
			Category: strings.TrimSpace(record[idx["category"]]),
		}
		if cat.Category == "" {
			return nil, "", cellError(path, row, "category", fmt.Errorf("empty category"))
		}

		for _, col := range []struct {
			name string
			dst  *decimal.Decimal
		}{
			{"total_revenue", &cat.TotalRevenue},
			{"revenue_2025", &cat.Revenue2025},
			{"avg_transaction_amount", &cat.AvgTransactionAmount},
		} {
			value, err := parseAmount(record[idx[col.name]])
			if err != nil {
				return nil, "", cellError(path, row, col.name, err)
			}
			*col.dst = value
		}

		for _, col := range []struct {
			name string
			dst  *int
		}{
			{"transaction_count", &cat.TransactionCount},
			{"unique_contributors", &cat.UniqueContributors},
		} {
			value, err := parseCount(record[idx[col.name]])
			if err != nil {
				return nil, "", cellError(path, row, col.name, err)
			}
			*col.dst = value
		}

		pct, err := strconv.ParseFloat(strings.TrimSpace(record[idx["percentage_of_total"]]), 64)
		if err != nil {
			return nil, "", cellError(path, row, "percentage_of_total", err)
		}
		cat.PercentageOfTotal = pct

		categories = append(categories, cat)
	}

	l.logger.DebugContext(ctx, "revenue analysis loaded",
		slog.String("file", path),
		slog.Int("rows", len(categories)),
	)

	return categories, path, nil
}

// locate probes the candidate paths for a dataset file and returns the
// first that exists. Public-data directory wins over the base directory.
func (l *Loader) locate(filename string) (string, error) {
	candidates := l.paths.DatasetCandidates(filename)
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	dirs := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		dirs = append(dirs, filepath.Dir(candidate))
	}

	return "", apierrors.NewNotFoundError(filename).
		WithContext("searched", strings.Join(dirs, ", "))
}

// columnIndex reads the header row and maps required column names to their
// positions. Header matching is case-insensitive and order-free.
func columnIndex(reader *csv.Reader, path string, required []string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, apierrors.NewParsingError(
			fmt.Sprintf("%s: failed to read CSV header", filepath.Base(path)), err,
		).WithContext("file", path)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			// Tolerate a UTF-8 BOM: re-published exports carry one.
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, apierrors.NewParsingError(
				fmt.Sprintf("%s: missing required column %q", filepath.Base(path), name), nil,
			).WithContext("file", path).WithContext("column", name)
		}
	}

	return idx, nil
}

// parseMonthStart accepts the date formats the snapshot pipeline has
// produced over time.
func parseMonthStart(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range monthStartLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseCount(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}

func parseAmount(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(value))
}

// cellError builds the parsing error for a bad cell, naming the file, row,
// and column.
func cellError(path string, row int, column string, err error) *apierrors.AppError {
	return apierrors.NewParsingError(
		fmt.Sprintf("%s: row %d: invalid %s", filepath.Base(path), row, column), err,
	).WithContext("file", path).WithContext("row", row).WithContext("column", column)
}
