// Package sync orchestrates one synchronization run.
//
// A run resolves the sheet's SKUs through the identity resolver, plans one
// update request per row and operation for every backend whose record was
// found, then runs the retail and eCom updaters concurrently. Results are
// aggregated into the failures CSV, the markdown report and summary.json,
// and optionally uploaded to the storage bucket under <prefix>/<run id>/.
//
// Only a run without usable credentials or a resolution aborted by the
// error duplicate policy fails outright; per-key and per-update failures
// are reported.
package sync
