package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/tapqyr/analytics/server/internal/errors"
	"github.com/tapqyr/analytics/server/internal/observability"
)

// MetricsOverviewResponse represents the overview response of system metrics
type MetricsOverviewResponse struct {
	TotalRequests int64   `json:"total_requests"`
	SuccessRate   float64 `json:"success_rate"`
	AvgLatencyMs  int64   `json:"avg_latency_ms"`
	P50LatencyMs  int64   `json:"p50_latency_ms"`
	P95LatencyMs  int64   `json:"p95_latency_ms"`
	ErrorCount    int64   `json:"error_count"`
	TimeRange     string  `json:"time_range"`
}

// GetMetricsOverview returns the request metrics recorded inside the given range.
// GET /api/v1/system/metrics/overview?range=
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	timeRange := c.QueryParam("range")
	if timeRange == "" {
		timeRange = "24h"
	}
	since, err := parseTimeRange(s.now(), timeRange)
	if err != nil {
		return writeError(c, apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "invalid time range"))
	}

	resp := MetricsOverviewResponse{TimeRange: timeRange, SuccessRate: 100}
	if s.Metrics != nil {
		snapshot := s.Metrics.Snapshot(since)
		resp.TotalRequests = snapshot.WindowCount
		resp.ErrorCount = snapshot.WindowFailed
		resp.SuccessRate = snapshot.WindowSuccessRate()
		resp.AvgLatencyMs = snapshot.WindowAvg.Milliseconds()
		resp.P50LatencyMs = snapshot.WindowP50.Milliseconds()
		resp.P95LatencyMs = snapshot.WindowP95.Milliseconds()
	}
	observability.LoggerFromContext(c.Request().Context()).Debug("metrics overview", "range", timeRange, "requests", resp.TotalRequests)
	return c.JSON(http.StatusOK, resp)
}

// parseTimeRange parses time range string and returns the start time
func parseTimeRange(now time.Time, timeRange string) (time.Time, error) {
	switch timeRange {
	case "1h":
		return now.Add(-1 * time.Hour), nil
	case "24h":
		return now.Add(-24 * time.Hour), nil
	case "7d":
		return now.Add(-7 * 24 * time.Hour), nil
	case "30d":
		return now.Add(-30 * 24 * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("invalid time range: %s (valid: 1h, 24h, 7d, 30d)", timeRange)
	}
}
