package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-sync/core/models"
	"catalog-sync/core/resolve"

	"go.uber.org/zap"
)

// ErrTooManyKeys is returned when a resolve request exceeds the configured cap.
var ErrTooManyKeys = errors.New("too many SKUs in one request")

// Service exposes the identity cache to HTTP handlers.
type Service struct {
	resolver *resolve.Resolver
	retail   resolve.Lookup
	ecom     resolve.Lookup
	limit    int
	logger   *zap.Logger
}

// NewService creates the cache service. A nil lookup disables resolution
// against that backend.
func NewService(resolver *resolve.Resolver, retail, ecom resolve.Lookup, limit int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver: resolver,
		retail:   retail,
		ecom:     ecom,
		limit:    limit,
		logger:   logger,
	}
}

// Stats summarizes the cached matches.
func (s *Service) Stats() resolve.Stats {
	return s.resolver.Stats()
}

// Location describes where the cache is persisted.
func (s *Service) Location() string {
	return s.resolver.Location()
}

// Get returns the cached match of one SKU.
func (s *Service) Get(sku string) (models.Match, bool) {
	return s.resolver.Get(strings.TrimSpace(sku))
}

// Clear drops every cached match.
func (s *Service) Clear(ctx context.Context) error {
	return s.resolver.Clear(ctx)
}

// ResolveInput is the body of a resolve request.
type ResolveInput struct {
	SKUs            []string `json:"skus"`
	ManufacturerSKU bool     `json:"manufacturer_sku"`
	Policy          string   `json:"duplicate_policy"`
}

// Resolve resolves the given SKUs cache-first.
func (s *Service) Resolve(ctx context.Context, in ResolveInput) (*resolve.Batch, error) {
	if s.retail == nil && s.ecom == nil {
		return nil, models.ErrNoCredentials
	}

	keys := make([]string, 0, len(in.SKUs))
	for _, k := range in.SKUs {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no SKUs given", models.ErrValidation)
	}
	if s.limit > 0 && len(keys) > s.limit {
		return nil, fmt.Errorf("%w: %d given, limit is %d", ErrTooManyKeys, len(keys), s.limit)
	}

	req := resolve.Request{
		Keys:              keys,
		Retail:            s.retail,
		Ecom:              s.ecom,
		ByManufacturerSKU: in.ManufacturerSKU,
	}
	if in.ManufacturerSKU {
		policy, err := resolve.ParseDuplicatePolicy(in.Policy)
		if err != nil {
			return nil, err
		}
		req.Policy = policy
	}

	s.logger.Info("Resolving SKUs on demand",
		zap.Int("keys", len(keys)),
		zap.Bool("manufacturer_sku", in.ManufacturerSKU),
	)
	return s.resolver.Resolve(ctx, req)
}
