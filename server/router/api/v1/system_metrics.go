package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/czdate/plugin/cache"
	"github.com/hrygo/czdate/server/internal/observability"
)

// MetricsResponse represents the system metrics overview.
type MetricsResponse struct {
	*observability.MetricsSnapshot
	SuccessRate float64      `json:"success_rate"`
	Cache       *CacheStatus `json:"cache,omitempty"`
}

// CacheStatus reports oracle cache usage.
type CacheStatus struct {
	cache.Stats
	HitRate float64 `json:"hit_rate"`
}

// GetMetrics returns request counters, latency percentiles and cache usage.
// GET /api/v1/system/metrics
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	snapshot := s.Metrics.Snapshot()
	resp := MetricsResponse{
		MetricsSnapshot: snapshot,
		SuccessRate:     snapshot.SuccessRate(),
	}
	if s.Cache != nil {
		stats := s.Cache.Stats()
		resp.Cache = &CacheStatus{Stats: stats, HitRate: stats.HitRate()}
	}
	return c.JSON(http.StatusOK, resp)
}
