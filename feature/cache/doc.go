// Package cache serves the identity cache over HTTP.
//
// Routes:
//   - GET /cache/stats: match counts per backend combination
//   - GET /cache/:sku: the cached match of one SKU
//   - DELETE /cache: drop every cached match
//   - POST /cache/resolve: resolve {"skus": [...]} cache-first
//
// Resolution goes through the same resolver as the sync command, so SKUs
// resolved here are reused by the next run.
package cache
