package cache

import (
	"catalog-sync/core/resolve"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements loader.Feature for the identity cache routes.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the cache feature.
func NewFeature(resolver *resolve.Resolver, retail, ecom resolve.Lookup, limit int, logger *zap.Logger) *Feature {
	svc := NewService(resolver, retail, ecom, limit, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "cache"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.resolver != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
