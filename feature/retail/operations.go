package retail

import (
	"context"
	"fmt"
	"strings"

	"catalog-sync/core/models"
	"catalog-sync/core/update"
	"catalog-sync/core/utils"

	"github.com/shopspring/decimal"
)

// WeightField is the desired-value key and item attribute of the weight.
const WeightField = "weight"

// CustomFields writes the labelled custom fields of an item.
type CustomFields struct {
	client  *Client
	mapping FieldMapping
}

// NewCustomFields creates the operation with a discovered mapping.
func NewCustomFields(client *Client, mapping FieldMapping) *CustomFields {
	return &CustomFields{client: client, mapping: mapping}
}

func (o *CustomFields) Backend() models.Backend { return models.BackendRetail }

func (o *CustomFields) Name() models.Operation { return models.OpCustomFields }

func (o *CustomFields) Comparers() update.Comparers { return nil }

// Validate keeps the non-empty values whose label is mapped.
func (o *CustomFields) Validate(req models.UpdateRequest) (map[string]string, error) {
	desired := make(map[string]string)
	for label, value := range req.Desired {
		if value == "" {
			continue
		}
		if _, ok := o.mapping.Field(label); ok {
			desired[label] = value
		}
	}
	return desired, nil
}

func (o *CustomFields) Current(ctx context.Context, id string, desired map[string]string) (map[string]string, error) {
	item, err := o.client.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	current := make(map[string]string, len(desired))
	for label := range desired {
		attr, _ := o.mapping.Field(label)
		current[label] = utils.ToString(item[attr])
	}
	return current, nil
}

func (o *CustomFields) Write(ctx context.Context, id string, changes map[string]string) error {
	fields := make(map[string]any, len(changes))
	for label, value := range changes {
		attr, _ := o.mapping.Field(label)
		fields[attr] = value
	}
	return o.client.UpdateItem(ctx, id, fields)
}

// Weight writes the item weight.
type Weight struct {
	client *Client
}

// NewWeight creates the weight operation.
func NewWeight(client *Client) *Weight {
	return &Weight{client: client}
}

func (o *Weight) Backend() models.Backend { return models.BackendRetail }

func (o *Weight) Name() models.Operation { return models.OpWeight }

func (o *Weight) Comparers() update.Comparers {
	return update.Comparers{WeightField: update.WeightEqual}
}

// Validate rejects weights that do not parse or are negative.
func (o *Weight) Validate(req models.UpdateRequest) (map[string]string, error) {
	raw := strings.TrimSpace(req.Desired[WeightField])
	if raw == "" {
		return nil, nil
	}
	w, err := ParseWeight(raw)
	if err != nil {
		return nil, err
	}
	return map[string]string{WeightField: w.String()}, nil
}

func (o *Weight) Current(ctx context.Context, id string, _ map[string]string) (map[string]string, error) {
	item, err := o.client.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	current := "0"
	if w, err := decimal.NewFromString(utils.ToString(item[WeightField])); err == nil {
		current = w.String()
	}
	return map[string]string{WeightField: current}, nil
}

func (o *Weight) Write(ctx context.Context, id string, changes map[string]string) error {
	w, err := decimal.NewFromString(changes[WeightField])
	if err != nil {
		return fmt.Errorf("%w: invalid weight value %q", models.ErrValidation, changes[WeightField])
	}
	return o.client.UpdateItem(ctx, id, map[string]any{WeightField: w.InexactFloat64()})
}

// ParseWeight parses a non-negative weight.
func ParseWeight(raw string) (decimal.Decimal, error) {
	w, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid weight value %q", models.ErrValidation, raw)
	}
	if w.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: weight cannot be negative", models.ErrValidation)
	}
	return w, nil
}
