package ecom

import (
	"context"
	"errors"
	"net/url"

	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"
	"catalog-sync/core/utils"
)

// Lookup resolves SKUs to product ids.
type Lookup struct {
	client *Client
}

// NewLookup creates a lookup on client.
func NewLookup(client *Client) *Lookup {
	return &Lookup{client: client}
}

func (l *Lookup) Backend() models.Backend { return models.BackendEcom }

// FindBySKU returns the first product with the SKU, or "" when none.
func (l *Lookup) FindBySKU(ctx context.Context, sku string) (string, error) {
	products, err := l.client.SearchProducts(ctx, url.Values{"sku": {sku}}, 1)
	if errors.Is(err, apiclient.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	for _, p := range products {
		if id := utils.ToString(p["id"]); id != "" {
			return id, nil
		}
	}
	return "", nil
}

// FindByManufacturerSKU returns every product sharing the SKU. The shop
// has no separate manufacturer key, so the SKU search is used unbounded.
func (l *Lookup) FindByManufacturerSKU(ctx context.Context, sku string) ([]string, error) {
	products, err := l.client.SearchProducts(ctx, url.Values{"sku": {sku}}, 0)
	if errors.Is(err, apiclient.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		if id := utils.ToString(p["id"]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
