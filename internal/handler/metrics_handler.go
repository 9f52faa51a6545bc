package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/service"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/response"
)

type dbPinger interface {
	Ping() error
}

// MetricsHandler exposes liveness, readiness and observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      dbPinger
	started time.Time
}

// NewMetricsHandler constructs a metrics handler. db may be nil; Ready then
// reports ready unconditionally.
func NewMetricsHandler(metrics *service.MetricsService, db dbPinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db, started: time.Now().UTC()}
}

// Health is the liveness probe. It reports uptime and never touches
// downstream dependencies.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Truncate(time.Second).String(),
	})
}

// Ready is the readiness probe. It degrades when the database is unreachable
// so load balancers stop routing traffic here.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Prometheus serves the Prometheus scrape endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Snapshot returns aggregated runtime counters for operators.
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.OK(c, h.metrics.Snapshot())
}
