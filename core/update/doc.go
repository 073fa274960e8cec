// Package update implements the read-compare-write discipline shared by
// every field updater.
//
// An Operation describes one field group on one backend: how to validate the
// desired values, how to read the current ones and how to write changes.
// FieldUpdater drives it through the state machine
//
//	pending -> success                               (dry run)
//	pending -> fetching_current -> no_change -> success
//	pending -> fetching_current -> writing -> success | failed
//	pending -> writing -> success | failed           (force)
//
// ComputeDelta decides which desired fields differ from the current record,
// using a Comparer per field: plain string equality by default, or a numeric
// comparison with tolerance for values such as weights.
//
// Every request yields exactly one models.UpdateResult. There is no retry at
// this layer; transient HTTP failures are retried by the API client.
package update
