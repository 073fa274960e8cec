package resolve

import (
	"context"

	"catalog-sync/core/models"
)

// Lookup finds records in one backend.
type Lookup interface {
	// Backend names the backend the lookup queries.
	Backend() models.Backend

	// FindBySKU returns the record ID for sku, or "" when no record exists.
	FindBySKU(ctx context.Context, sku string) (string, error)

	// FindByManufacturerSKU returns every record ID carrying the manufacturer
	// key, in the backend's native order.
	FindByManufacturerSKU(ctx context.Context, sku string) ([]string, error)
}
