package handlers

import (
	"finsignal/internal/features"

	"github.com/gofiber/fiber/v2"
	gobreaker "github.com/sony/gobreaker/v2"
)

type QueueStats interface {
	Stats() features.QueueStats
}

type BreakerState interface {
	State() gobreaker.State
}

// HealthHandler reports liveness plus the feature queue counters and the push
// gateway breaker state. Either source may be nil.
type HealthHandler struct {
	queue   QueueStats
	breaker BreakerState
}

func NewHealthHandler(queue QueueStats, breaker BreakerState) *HealthHandler {
	return &HealthHandler{queue: queue, breaker: breaker}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := fiber.Map{"status": "ok"}

	if h.queue != nil {
		stats := h.queue.Stats()
		resp["feature_queue"] = fiber.Map{
			"processed": stats.Processed,
			"failed":    stats.Failed,
			"dropped":   stats.Dropped,
			"retried":   stats.Retried,
		}
	}
	if h.breaker != nil {
		state := h.breaker.State()
		resp["push_gateway"] = state.String()
		if state == gobreaker.StateOpen {
			resp["status"] = "degraded"
		}
	}

	return c.JSON(resp)
}
