// Package exporter renders HPIC Pulse data for humans and downloads.
//
// Two concerns live here so every surface formats values the same way:
//
// Format helpers: currency, percentage, count, delta, and month-label
// strings used by the dashboard view model and the report CLI. Display
// strings carry thousands separators; export cells never do.
//
// Dataset writers: streaming CSV (UTF-8 BOM for Excel compatibility) and
// XLSX workbook exports of the filtered membership timeline and revenue
// table, shared by the HTTP download handlers and the report CLI.
package exporter
