// Package charts builds figure configurations as plain data.
//
// Builders take already-filtered, already-computed inputs and assemble
// domain.Figure values: line series keyed by month, milestone annotations,
// and the category share pie. The page hands each figure to the plotting
// library verbatim, so everything here is arrangement, not math.
package charts
