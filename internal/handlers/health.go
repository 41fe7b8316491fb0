package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// cachePinger is implemented by stores fronted by an optional cache
type cachePinger interface {
	PingCache(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version   string
	Storage   string
	Transport string
	store     Pinger
	logger    *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, storage, transport string, store Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		Version:   version,
		Storage:   storage,
		Transport: transport,
		store:     store,
		logger:    logger,
	}
}

// Check returns the health status of the service: 503 when the store is
// down, "degraded" with 200 when only the tenant cache is
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "healthy"
	statusCode := fiber.StatusOK
	storeHealthy := true

	services := fiber.Map{"transport": h.Transport}

	if cache, ok := h.store.(cachePinger); ok {
		cacheHealthy := true
		if err := cache.PingCache(ctx); err != nil {
			h.logger.Warn("Health check cache ping failed", zap.Error(err))
			status = "degraded"
			cacheHealthy = false
		}
		services["cache"] = fiber.Map{"healthy": cacheHealthy}
	}

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Health check store ping failed", zap.Error(err))
		status = "unhealthy"
		statusCode = fiber.StatusServiceUnavailable
		storeHealthy = false
	}
	services["storage"] = fiber.Map{"driver": h.Storage, "healthy": storeHealthy}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":   status,
		"service":  "ClinicBot Backend",
		"version":  h.Version,
		"services": services,
	})
}
