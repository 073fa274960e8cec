// Package resolve maps business keys (SKUs) to record IDs in both backends.
//
// # Flow
//
//  1. Keys whose cached match is younger than the staleness window are
//     answered from the cache without any network call.
//  2. The remaining keys are resolved by a pool of workers bounded by a
//     weighted semaphore. Each worker queries every supplied backend
//     concurrently; a not-found answer is a valid partial match.
//  3. Once every worker has joined, fresh matches are written into the
//     in-memory cache and the store is flushed exactly once.
//
// Workers write only into their own slot of a pre-sized result slice, so the
// shared cache map is never touched while lookups are in flight.
//
// # Failures
//
// A lookup error for a key is logged and reported in Batch.Failed; the key
// gets an all-absent match that is not cached, so the next run retries it.
//
// # Manufacturer Keys
//
// With ByManufacturerSKU a backend may answer several candidates for one key.
// The DuplicatePolicy decides: first_found keeps the first candidate in the
// backend's order, skip leaves the backend unresolved with a warning, error
// aborts the batch with a *DuplicateKeyError and no cache writes.
//
// # Cancellation
//
// Cancelling the context stops new keys from starting. Lookups already in
// flight finish (they run detached from the cancellation) and their results
// are still cached and flushed; Resolve then returns the context error along
// with the partial batch.
package resolve
