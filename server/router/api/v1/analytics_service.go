package v1

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	apierrors "github.com/tapqyr/analytics/server/internal/errors"
	"github.com/tapqyr/analytics/server/internal/observability"
	"github.com/tapqyr/analytics/server/service/analytics"
	"github.com/tapqyr/analytics/server/timezone"
)

// GET /api/analytics/growth
func (s *APIV1Service) GetGrowthMetrics(c echo.Context) error {
	return s.respond(c, func(ctx context.Context) (any, error) {
		return s.AnalyticsService.GetGrowthMetrics(ctx)
	})
}

// GET /api/analytics/todo/completion-rates
func (s *APIV1Service) GetCompletionRates(c echo.Context) error {
	return s.respond(c, func(ctx context.Context) (any, error) {
		return s.AnalyticsService.GetCompletionRates(ctx)
	})
}

// GetTodoAnalytics summarizes todos created within [startDate, endDate].
// GET /api/analytics/todo/analytics?startDate=&endDate=
func (s *APIV1Service) GetTodoAnalytics(c echo.Context) error {
	start, err := s.parseDateParam(c, "startDate")
	if err != nil {
		return writeError(c, err)
	}
	end, err := s.parseDateParam(c, "endDate")
	if err != nil {
		return writeError(c, err)
	}
	if start.After(end) {
		return writeError(c, apierrors.InvalidArgument("startDate must not be after endDate"))
	}
	return s.respond(c, func(ctx context.Context) (any, error) {
		return s.AnalyticsService.GetTodoAnalytics(ctx, start, end)
	})
}

// GET /api/analytics/user/:userId/activity-patterns
func (s *APIV1Service) GetActivityPatterns(c echo.Context) error {
	return s.respondForUser(c, func(ctx context.Context, userID string) (any, error) {
		return s.AnalyticsService.GetActivityPatterns(ctx, userID)
	})
}

// GET /api/analytics/user/:userId/engagement
func (s *APIV1Service) GetEngagementMetrics(c echo.Context) error {
	return s.respondForUser(c, func(ctx context.Context, userID string) (any, error) {
		return s.AnalyticsService.GetEngagementMetrics(ctx, userID)
	})
}

// GET /api/analytics/user/:userId/weekly-report
func (s *APIV1Service) GetWeeklyReport(c echo.Context) error {
	return s.respondForUser(c, func(ctx context.Context, userID string) (any, error) {
		return s.AnalyticsService.GetWeeklyReport(ctx, userID)
	})
}

// GET /api/analytics/user/:userId/similar-users
func (s *APIV1Service) GetSimilarUsers(c echo.Context) error {
	return s.respondForUser(c, func(ctx context.Context, userID string) (any, error) {
		return s.AnalyticsService.GetSimilarUsers(ctx, userID)
	})
}

// GET /api/analytics/user/:userId/comprehensive
func (s *APIV1Service) GetComprehensiveAnalytics(c echo.Context) error {
	return s.respondForUser(c, func(ctx context.Context, userID string) (any, error) {
		return s.AnalyticsService.GetComprehensiveAnalytics(ctx, userID)
	})
}

func (s *APIV1Service) respondForUser(c echo.Context, fn func(ctx context.Context, userID string) (any, error)) error {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		return writeError(c, apierrors.InvalidArgument("userId is required"))
	}
	return s.respond(c, func(ctx context.Context) (any, error) {
		return fn(ctx, userID)
	})
}

// respond runs fn under the configured request timeout and writes its result as JSON.
func (s *APIV1Service) respond(c echo.Context, fn func(ctx context.Context) (any, error)) error {
	ctx := c.Request().Context()
	if s.Profile != nil && s.Profile.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Profile.RequestTimeout)
		defer cancel()
	}

	result, err := fn(ctx)
	if err != nil {
		return writeError(c, toAPIError(err))
	}
	return c.JSON(http.StatusOK, result)
}

func (s *APIV1Service) parseDateParam(c echo.Context, name string) (time.Time, error) {
	value := c.QueryParam(name)
	if value == "" {
		return time.Time{}, apierrors.InvalidArgument(name + " is required")
	}
	parsed, err := timezone.ParseDateTime(value, s.loc)
	if err != nil {
		return time.Time{}, apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "invalid "+name+": "+value)
	}
	return parsed, nil
}

// toAPIError maps service errors onto boundary error codes.
func toAPIError(err error) *apierrors.APIError {
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, analytics.ErrInvalidArgument):
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apierrors.Timeout(err)
	case errors.Is(err, context.Canceled):
		return apierrors.ContextCanceled(err)
	default:
		return apierrors.UpstreamFailure(err)
	}
}

func writeError(c echo.Context, err error) error {
	apiErr := toAPIError(err)
	logger := observability.LoggerFromContext(c.Request().Context())
	attrs := []any{slog.String(observability.LogFieldErrorCode, string(apiErr.Code))}
	if apiErr.Cause != nil {
		attrs = append(attrs, slog.String("error", apiErr.Cause.Error()))
	}
	if apiErr.Code.HTTPStatus() >= http.StatusInternalServerError {
		logger.Error(apiErr.Message, attrs...)
	} else {
		logger.Debug(apiErr.Message, attrs...)
	}
	return c.JSON(apiErr.Code.HTTPStatus(), apiErr.ToResponse())
}
