// Package cachestore persists the SKU identity cache as one serialized
// document.
//
// The document is a JSON object keyed by SKU; every value is a models.Match.
// A missing document is an empty cache. A document that cannot be decoded is
// reported as ErrMalformed so the resolver can log it and start empty.
//
// # Drivers
//
//   - file:  a local JSON file, written through a temp file and rename.
//   - s3:    one object in the configured MinIO/S3 bucket.
//   - sql:   one row in the sku_cache_documents table (MySQL or SQLite via GORM).
//   - redis: one string key.
//
// New picks the driver from Config.Driver; each driver's dependency is passed
// in Deps and only the selected one is required.
package cachestore
