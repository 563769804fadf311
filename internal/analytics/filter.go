package analytics

import (
	"time"

	"hpicpulse/pkg/contracts/domain"
)

// FilterByMonthRange returns the subsequence of records whose month
// satisfies start <= MonthStart <= end, both ends inclusive. The input is
// never mutated and its order is preserved.
func FilterByMonthRange(records []domain.MembershipRecord, start, end time.Time) []domain.MembershipRecord {
	var out []domain.MembershipRecord
	for _, rec := range records {
		if rec.MonthStart.Before(start) || rec.MonthStart.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Span reports the first and last months of a chronologically ordered
// timeline. An empty timeline yields the zero span.
func Span(records []domain.MembershipRecord) domain.TimelineSpan {
	if len(records) == 0 {
		return domain.TimelineSpan{}
	}
	return domain.TimelineSpan{
		MinMonth: records[0].MonthStart,
		MaxMonth: records[len(records)-1].MonthStart,
	}
}

// ClampRange clamps the requested bounds to the data's span. Zero-value
// bounds default to the full span; a partially overlapping range is pulled
// to the nearest edge. A range entirely outside the span is returned as
// requested: clamping it would fabricate a one-row match, and the pipeline
// wants the empty filter result so it can report no data. Empty records
// yield zero bounds.
func ClampRange(records []domain.MembershipRecord, start, end time.Time) (time.Time, time.Time) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}
	}

	span := Span(records)

	if start.IsZero() {
		start = span.MinMonth
	}
	if end.IsZero() {
		end = span.MaxMonth
	}

	if end.Before(span.MinMonth) || start.After(span.MaxMonth) {
		return start, end
	}

	if start.Before(span.MinMonth) {
		start = span.MinMonth
	}
	if end.After(span.MaxMonth) {
		end = span.MaxMonth
	}

	return start, end
}
