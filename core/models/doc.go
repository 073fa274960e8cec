// Package models holds the value types shared by the resolver, the updaters
// and the reporting layer.
//
// # Identity Match
//
// A Match maps one SKU to the record identifiers of the two backends:
//   - Retail: the item ID in the retail (R-Series) backend.
//   - Ecom: the product ID in the eCom (C-Series) backend.
//
// An empty ID is a stable negative result ("no such record"), never an error.
//
// # Updates
//
// UpdateRequest describes the desired values for one (SKU, backend, operation)
// triple. Every request produces exactly one UpdateResult.
package models
