package ecom

import (
	"context"

	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"
	"catalog-sync/core/resolve"
	"catalog-sync/core/update"

	"go.uber.org/zap"
)

// Backend bundles the eCom lookup and updaters on one rate-limited client.
type Backend struct {
	client *Client
	mode   ImageMode
	logger *zap.Logger
}

// NewBackend creates the eCom backend for creds.
func NewBackend(creds *models.Credentials, cfg Config, logger *zap.Logger, opts ...apiclient.Option) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode, err := ParseImageMode(cfg.ImageMode)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("backend", string(models.BackendEcom)))
	opts = append([]apiclient.Option{apiclient.WithLogger(logger)}, opts...)

	client, err := NewClient(creds, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Backend{client: client, mode: mode, logger: logger}, nil
}

// Client returns the underlying product client.
func (b *Backend) Client() *Client { return b.client }

// Lookup returns the SKU lookup.
func (b *Backend) Lookup() resolve.Lookup { return NewLookup(b.client) }

// Updaters returns the descriptions updater and, unless the image mode is
// skip, the images updater.
func (b *Backend) Updaters(context.Context) []update.Updater {
	ups := []update.Updater{update.NewFieldUpdater(NewDescriptions(b.client), b.logger)}
	if b.mode != ModeSkip {
		ups = append(ups, NewImages(b.client, b.mode, b.logger))
	}
	return ups
}
