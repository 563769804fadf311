// Package analytics contains the pure computation stages of the dashboard
// pipeline: month-range filtering and clamping, the membership metrics
// engine, revenue aggregation, and milestone derivation.
//
// Every function here is a pure transformation over already-validated
// tables and performs no I/O. Division-by-zero never surfaces: shares and
// averages are defined as 0 when the denominator is zero. Malformed input
// has already failed in the dataset loader.
package analytics
