package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hpicpulse/pkg/contracts/domain"
)

// Sheet names match the download's two datasets.
const (
	membershipSheet = "Membership Timeline"
	revenueSheet    = "Revenue Analysis"
)

const defaultColWidth = 18

// WriteWorkbook streams one workbook holding both snapshots, one sheet
// each. Numeric cells are typed so the spreadsheet can aggregate them
// without conversion; month_start stays an ISO date string.
func WriteWorkbook(w io.Writer, records []domain.MembershipRecord, categories []domain.RevenueCategory) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", membershipSheet); err != nil {
		return fmt.Errorf("failed to name sheet %q: %w", membershipSheet, err)
	}
	if err := writeSheet(f, membershipSheet, membershipHeaders(), membershipCellRows(records)); err != nil {
		return err
	}

	if _, err := f.NewSheet(revenueSheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", revenueSheet, err)
	}
	if err := writeSheet(f, revenueSheet, revenueHeaders(), revenueCellRows(categories)); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to name header cell %d: %w", i, err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header %q: %w", header, err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to name column %d: %w", i, err)
		}
		if err := f.SetColWidth(sheet, col, col, defaultColWidth); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("failed to name header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to name cell %d,%d: %w", c, r, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	return nil
}

func membershipCellRows(records []domain.MembershipRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []interface{}{
			rec.MonthStart.Format(monthLayout),
			rec.ActiveMembers,
			rec.ClassicMembers,
			rec.ChampionMembers,
			rec.HPICMembers,
			rec.PMPMembers,
		})
	}
	return rows
}

func revenueCellRows(categories []domain.RevenueCategory) [][]interface{} {
	rows := make([][]interface{}, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, []interface{}{
			cat.Category,
			cat.TotalRevenue.InexactFloat64(),
			cat.Revenue2025.InexactFloat64(),
			cat.TransactionCount,
			cat.UniqueContributors,
			cat.PercentageOfTotal,
			cat.AvgTransactionAmount.InexactFloat64(),
		})
	}
	return rows
}
