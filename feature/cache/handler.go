package cache

import (
	"errors"
	"sort"

	"catalog-sync/core/logger"
	"catalog-sync/core/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the identity cache.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the cache routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/cache")
	group.Get("/stats", h.HandleStats)
	group.Post("/resolve", h.HandleResolve)
	group.Get("/:sku", h.HandleGet)
	group.Delete("/", h.HandleClear)
}

// HandleStats returns match counts per backend combination.
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"location": h.service.Location(),
		"stats":    h.service.Stats(),
	})
}

// HandleGet returns the cached match of one SKU.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	sku := c.Params("sku")
	m, ok := h.service.Get(sku)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sku not cached", "sku": sku})
	}
	return c.JSON(m)
}

// HandleClear drops the whole cache.
func (h *Handler) HandleClear(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.Clear(c.Context()); err != nil {
		l.Error("Cache clear failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	l.Info("Cache cleared over HTTP")
	return c.JSON(fiber.Map{"status": "cleared"})
}

type failedKey struct {
	SKU   string `json:"sku"`
	Error string `json:"error"`
}

// HandleResolve resolves a batch of SKUs and returns their matches.
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var in ResolveInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	batch, err := h.service.Resolve(c.Context(), in)
	if err != nil {
		l.Warn("On-demand resolution failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	failed := make([]failedKey, 0, len(batch.Failed))
	for sku, ferr := range batch.Failed {
		failed = append(failed, failedKey{SKU: sku, Error: ferr.Error()})
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].SKU < failed[j].SKU })

	return c.JSON(fiber.Map{
		"matches":    batch.Matches,
		"failed":     failed,
		"warnings":   batch.Warnings,
		"cache_hits": batch.CacheHits,
		"looked_up":  batch.Looked,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, ErrTooManyKeys):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateKey):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrNoCredentials):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
