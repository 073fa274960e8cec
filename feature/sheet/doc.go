// Package sheet reads the spreadsheet export that drives a sync run.
//
// The export is a UTF-8 CSV (an optional BOM is stripped) with a SKU
// column and optional description, title, image and weight columns. Rows
// without a SKU are skipped and their line numbers kept for the report.
// Row.Desired turns a row into the desired values of each update
// operation.
package sheet
