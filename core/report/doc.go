// Package report aggregates update results into run statistics and writes
// the run artifacts: failures.csv, sync_report.md and summary.json.
//
// The failures list has a fixed shape (sku, error, stage, service,
// operation) so downstream tooling can consume it without knowing which
// updater produced a row.
package report
