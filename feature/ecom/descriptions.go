package ecom

import (
	"context"

	"catalog-sync/core/models"
	"catalog-sync/core/update"
	"catalog-sync/core/utils"
)

// Desired-value keys of the descriptions operation.
const (
	FieldShort = "short"
	FieldLong  = "long"
)

// productFields maps desired keys to product attributes.
var productFields = map[string]string{
	FieldShort: "description",
	FieldLong:  "content",
}

// Descriptions writes the short and long product descriptions.
type Descriptions struct {
	client *Client
}

// NewDescriptions creates the descriptions operation.
func NewDescriptions(client *Client) *Descriptions {
	return &Descriptions{client: client}
}

func (o *Descriptions) Backend() models.Backend { return models.BackendEcom }

func (o *Descriptions) Name() models.Operation { return models.OpDescriptions }

func (o *Descriptions) Comparers() update.Comparers { return nil }

func (o *Descriptions) Validate(req models.UpdateRequest) (map[string]string, error) {
	desired := make(map[string]string)
	for key := range productFields {
		if v := req.Desired[key]; v != "" {
			desired[key] = v
		}
	}
	return desired, nil
}

func (o *Descriptions) Current(ctx context.Context, id string, desired map[string]string) (map[string]string, error) {
	p, err := o.client.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	current := make(map[string]string, len(desired))
	for key := range desired {
		current[key] = utils.ToString(p[productFields[key]])
	}
	return current, nil
}

func (o *Descriptions) Write(ctx context.Context, id string, changes map[string]string) error {
	fields := make(map[string]any, len(changes))
	for key, v := range changes {
		fields[productFields[key]] = v
	}
	return o.client.UpdateProduct(ctx, id, fields)
}
