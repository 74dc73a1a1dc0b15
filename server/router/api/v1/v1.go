package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tapqyr/analytics/internal/profile"
	"github.com/tapqyr/analytics/server/internal/observability"
	"github.com/tapqyr/analytics/server/service/analytics"
	"github.com/tapqyr/analytics/store"
)

type APIV1Service struct {
	Profile          *profile.Profile
	Store            *store.Store
	AnalyticsService analytics.Service
	Metrics          *observability.Metrics

	loc *time.Location
	now func() time.Time
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, metrics *observability.Metrics) *APIV1Service {
	loc := profile.Location()
	return &APIV1Service{
		Profile: profile,
		Store:   store,
		AnalyticsService: analytics.NewService(store,
			analytics.WithLocation(loc),
			analytics.WithConcurrency(profile.SimilarUsersConcurrency),
		),
		Metrics: metrics,
		loc:     loc,
		now:     time.Now,
	}
}

// RegisterRoutes registers the analytics and system routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.Healthz)

	analyticsGroup := echoServer.Group("/api/analytics")
	analyticsGroup.GET("/growth", s.GetGrowthMetrics)
	analyticsGroup.GET("/todo/completion-rates", s.GetCompletionRates)
	analyticsGroup.GET("/todo/analytics", s.GetTodoAnalytics)
	analyticsGroup.GET("/user/:userId/activity-patterns", s.GetActivityPatterns)
	analyticsGroup.GET("/user/:userId/engagement", s.GetEngagementMetrics)
	analyticsGroup.GET("/user/:userId/weekly-report", s.GetWeeklyReport)
	analyticsGroup.GET("/user/:userId/similar-users", s.GetSimilarUsers)
	analyticsGroup.GET("/user/:userId/comprehensive", s.GetComprehensiveAnalytics)

	systemGroup := echoServer.Group("/api/v1/system")
	systemGroup.GET("/metrics/overview", s.GetMetricsOverview)
}

// Healthz reports liveness and whether the store answers.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	if s.Store != nil {
		if err := s.Store.GetDriver().GetDB().PingContext(c.Request().Context()); err != nil {
			observability.LoggerFromContext(c.Request().Context()).Warn("store ping failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": s.Profile.Version})
}
