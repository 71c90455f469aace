package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hw-eval-api/internal/config"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoints.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	cfg config.Config
	db  Pinger
}

// NewHealthHandler builds the probe handler. db may be nil.
func NewHealthHandler(cfg config.Config, db Pinger) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db}
}

// Register attaches the probes.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.live)
	router.Get("/health/ready", h.ready)
}

func (h *HealthHandler) payload(status string) HealthResponse {
	return HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC(),
		Service:     h.cfg.AppName,
		Environment: h.cfg.AppEnv,
	}
}

func (h *HealthHandler) live(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "service healthy", h.payload("ok"))
}

func (h *HealthHandler) ready(c *fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "database unavailable")
		}
	}
	return utils.SendSuccess(c, "service ready", h.payload("ready"))
}
