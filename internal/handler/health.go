package handler

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/pkg/health"
	"github.com/gin-gonic/gin"
)

// StatsSource exposes diagnostic counters.
type StatsSource interface {
	Stats() map[string]any
}

type HealthHandler struct {
	monitor  *health.Monitor
	pool     StatsSource
	breakers StatsSource
	redis    StatsSource
}

type HealthCheckResponse struct {
	Status    string                        `json:"status"`
	Version   string                        `json:"version"`
	Timestamp time.Time                     `json:"timestamp"`
	Checks    map[string]health.CheckResult `json:"checks"`
	Pool      map[string]any                `json:"pool,omitempty"`
	Breakers  map[string]any                `json:"breakers,omitempty"`
	Redis     map[string]any                `json:"redis,omitempty"`
}

// NewHealthHandler takes optional stats sources; pass a nil interface, not a
// typed nil pointer, to omit one.
func NewHealthHandler(monitor *health.Monitor, pool, breakers, redis StatsSource) *HealthHandler {
	return &HealthHandler{monitor: monitor, pool: pool, breakers: breakers, redis: redis}
}

// HealthCheck reports the latest background check results. Only an
// unhealthy critical dependency turns the response into a 503.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	overall := h.monitor.Overall()
	resp := HealthCheckResponse{
		Status:    overall.String(),
		Version:   constants.AppVersion,
		Timestamp: time.Now(),
		Checks:    h.monitor.GetAllResults(),
	}
	if h.pool != nil {
		resp.Pool = h.pool.Stats()
	}
	if h.breakers != nil {
		resp.Breakers = h.breakers.Stats()
	}
	if h.redis != nil {
		resp.Redis = h.redis.Stats()
	}

	status := http.StatusOK
	if overall == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
