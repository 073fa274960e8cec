package retail

import (
	"context"

	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"
	"catalog-sync/core/resolve"
	"catalog-sync/core/update"

	"go.uber.org/zap"
)

// Backend bundles the retail lookup and updaters on one rate-limited client.
type Backend struct {
	client *Client
	logger *zap.Logger
}

// NewBackend creates the retail backend for creds.
func NewBackend(creds *models.Credentials, cfg Config, logger *zap.Logger, opts ...apiclient.Option) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("backend", string(models.BackendRetail)))
	opts = append([]apiclient.Option{apiclient.WithLogger(logger)}, opts...)

	client, err := NewClient(creds, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Backend{client: client, logger: logger}, nil
}

// Client returns the underlying item client.
func (b *Backend) Client() *Client { return b.client }

// Lookup returns the SKU lookup.
func (b *Backend) Lookup() resolve.Lookup { return NewLookup(b.client) }

// Updaters discovers the custom field mapping and returns the custom
// fields and weight updaters.
func (b *Backend) Updaters(ctx context.Context) []update.Updater {
	mapping := Discover(ctx, b.client, b.logger)
	return []update.Updater{
		update.NewFieldUpdater(NewCustomFields(b.client, mapping), b.logger),
		update.NewFieldUpdater(NewWeight(b.client), b.logger),
	}
}
