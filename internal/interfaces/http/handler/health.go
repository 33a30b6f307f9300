package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/littlelemon/menu/internal/infrastructure/logger"
	"github.com/littlelemon/menu/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// DatabaseChecker reports database liveness and pool usage
type DatabaseChecker interface {
	Ping() error
	Stats() (persistence.ConnectionStats, error)
}

// LiveStats counts the live-update plumbing in use
type LiveStats struct {
	StreamClients   int `json:"stream_clients"`
	FeedSubscribers int `json:"feed_subscribers"`
	BusHandlers     int `json:"bus_handlers"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string                       `json:"status"`
	Database string                       `json:"database"`
	Pool     *persistence.ConnectionStats `json:"pool,omitempty"`
	Live     *LiveStats                   `json:"live,omitempty"`
}

// HealthHandler answers liveness checks
type HealthHandler struct {
	db        DatabaseChecker
	liveStats func() LiveStats
}

// HealthOption configures a HealthHandler
type HealthOption func(*HealthHandler)

// WithLiveStats adds the counters returned by fn to healthy responses
func WithLiveStats(fn func() LiveStats) HealthOption {
	return func(h *HealthHandler) {
		h.liveStats = fn
	}
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db DatabaseChecker, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{db: db}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Check pings the database
// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c).Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
		})
		return
	}

	resp := HealthResponse{Status: "healthy", Database: "connected"}
	if stats, err := h.db.Stats(); err == nil {
		resp.Pool = &stats
	}
	if h.liveStats != nil {
		live := h.liveStats()
		resp.Live = &live
	}
	c.JSON(http.StatusOK, resp)
}
