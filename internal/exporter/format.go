package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatCurrency renders a dollar amount with thousands separators and two
// decimal places ("$29,500.50"). Negative amounts carry a leading minus.
func FormatCurrency(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	parts := strings.SplitN(fixed, ".", 2)
	grouped := parts[0]
	if units, err := strconv.ParseInt(parts[0], 10, 64); err == nil {
		grouped = humanize.Comma(units)
	}
	formatted := fmt.Sprintf("$%s.%s", grouped, parts[1])
	if amount.IsNegative() {
		return "-" + formatted
	}
	return formatted
}

// FormatPercent renders a percentage with one decimal place ("50.8%").
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// FormatDelta renders a signed member change ("+10", "-3"). Zero renders
// empty so tiles omit the delta caption for flat months.
func FormatDelta(delta int) string {
	if delta == 0 {
		return ""
	}
	return fmt.Sprintf("%+d", delta)
}

// FormatCount renders an integer with thousands separators ("1,234").
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatMonth renders a month label ("January 2006").
func FormatMonth(t time.Time) string {
	return t.Format("January 2006")
}

// CategoryLabel converts a revenue category key to its display form
// ("building_booster" becomes "Building Booster").
func CategoryLabel(category string) string {
	return cases.Title(language.AmericanEnglish).String(strings.ReplaceAll(category, "_", " "))
}

// CSV cells never carry display grouping, so a spreadsheet reimport of an
// export parses cleanly.

func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}
