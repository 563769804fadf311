// Package api contains API contract definitions for HPIC Pulse.
// Version v1 represents the current stable API version.
package api

// DashboardRequest carries the user-selected date range for a dashboard
// pass. Empty bounds mean "full data span"; bounds outside the span are
// clamped to it, never rejected.
type DashboardRequest struct {
	Start string `json:"start" query:"start" validate:"omitempty,iso8601"`
	End   string `json:"end" query:"end" validate:"omitempty,iso8601"`
}

// TimelineRequest narrows the membership timeline endpoint.
type TimelineRequest struct {
	DashboardRequest
}

// ExportRequest selects the download format and, for CSV, which dataset
// to stream. The XLSX workbook always contains both sheets and ignores
// Dataset.
type ExportRequest struct {
	DashboardRequest
	Format  string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
	Dataset string `json:"dataset" query:"dataset" validate:"omitempty,dataset"`
}
