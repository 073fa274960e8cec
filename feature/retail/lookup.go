package retail

import (
	"context"
	"errors"
	"net/url"

	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"
)

// SKUFields are the item fields searched for a SKU, in priority order.
var SKUFields = []string{"customSku", "sku", "manufacturerSku", "defaultAlias"}

// Lookup resolves SKUs to retail item ids.
type Lookup struct {
	client *Client
}

// NewLookup creates a lookup on client.
func NewLookup(client *Client) *Lookup {
	return &Lookup{client: client}
}

func (l *Lookup) Backend() models.Backend { return models.BackendRetail }

// FindBySKU searches every SKU field in order. A not-found answer moves on
// to the next field; only exhausting all fields is a negative result.
// Any other error ends the search, and so does a cancelled context between
// fields.
func (l *Lookup) FindBySKU(ctx context.Context, sku string) (string, error) {
	for i, field := range SKUFields {
		if i > 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		found, err := l.client.SearchItems(ctx, url.Values{field: {sku}}, 1)
		if errors.Is(err, apiclient.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		for _, item := range found {
			if id := itemID(item); id != "" {
				return id, nil
			}
		}
	}
	return "", nil
}

// FindByManufacturerSKU returns every item carrying the manufacturer SKU.
func (l *Lookup) FindByManufacturerSKU(ctx context.Context, sku string) ([]string, error) {
	found, err := l.client.SearchItems(ctx, url.Values{
		"manufacturerSku": {sku},
		"load_relations":  {"all"},
	}, 0)
	if errors.Is(err, apiclient.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(found))
	for _, item := range found {
		if id := itemID(item); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
