package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapqyr/analytics/internal/profile"
	"github.com/tapqyr/analytics/server/internal/observability"
	"github.com/tapqyr/analytics/server/service/analytics"
)

type fakeAnalyticsService struct {
	err error

	gotUserID string
	gotStart  time.Time
	gotEnd    time.Time
}

func (f *fakeAnalyticsService) GetGrowthMetrics(context.Context) (*analytics.GrowthMetrics, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.GrowthMetrics{DailyNewUsers: 1, WeeklyNewUsers: 2, MonthlyNewUsers: 3, TotalUsers: 4}, nil
}

func (f *fakeAnalyticsService) GetCompletionRates(context.Context) ([]*analytics.UserCompletionRate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*analytics.UserCompletionRate{{UserID: "u1", CompletedCount: 1, TotalCount: 2, CompletionRate: 50}}, nil
}

func (f *fakeAnalyticsService) GetActivityPatterns(_ context.Context, userID string) (*analytics.FeatureSummary, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.FeatureSummary{TodoCount: 3}, nil
}

func (f *fakeAnalyticsService) GetEngagementMetrics(_ context.Context, userID string) (*analytics.EngagementMetrics, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.EngagementMetrics{}, nil
}

func (f *fakeAnalyticsService) GetTodoAnalytics(_ context.Context, start, end time.Time) (*analytics.TodoAnalytics, error) {
	f.gotStart, f.gotEnd = start, end
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.TodoAnalytics{TodoCount: 7}, nil
}

func (f *fakeAnalyticsService) GetWeeklyReport(_ context.Context, userID string) (*analytics.WeeklyReport, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.WeeklyReport{UserID: userID, PriorityBreakdown: map[string]int{}}, nil
}

func (f *fakeAnalyticsService) GetSimilarUsers(_ context.Context, userID string) ([]*analytics.SimilarUser, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return []*analytics.SimilarUser{}, nil
}

func (f *fakeAnalyticsService) GetComprehensiveAnalytics(_ context.Context, userID string) (*analytics.ComprehensiveAnalytics, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.ComprehensiveAnalytics{}, nil
}

func newTestServer(t *testing.T, svc analytics.Service) (*echo.Echo, *APIV1Service) {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Timezone: "UTC", RequestTimeout: time.Second, Version: "test"}
	s := &APIV1Service{
		Profile:          p,
		AnalyticsService: svc,
		Metrics:          observability.NewMetrics(100),
		loc:              time.UTC,
		now:              time.Now,
	}
	e := echo.New()
	s.RegisterRoutes(e)
	return e, s
}

func doGet(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGrowthMetricsHandler(t *testing.T) {
	e, _ := newTestServer(t, &fakeAnalyticsService{})

	rec := doGet(e, "/api/analytics/growth")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dailyNewUsers":1,"weeklyNewUsers":2,"monthlyNewUsers":3,"totalUsers":4}`, rec.Body.String())
}

func TestCompletionRatesHandler(t *testing.T) {
	e, _ := newTestServer(t, &fakeAnalyticsService{})

	rec := doGet(e, "/api/analytics/todo/completion-rates")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"userId":"u1","completedCount":1,"totalCount":2,"completionRate":50}]`, rec.Body.String())
}

func TestUserRoutesPassUserID(t *testing.T) {
	paths := []string{
		"/api/analytics/user/alice/activity-patterns",
		"/api/analytics/user/alice/engagement",
		"/api/analytics/user/alice/weekly-report",
		"/api/analytics/user/alice/similar-users",
		"/api/analytics/user/alice/comprehensive",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			svc := &fakeAnalyticsService{}
			e, _ := newTestServer(t, svc)

			rec := doGet(e, path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "alice", svc.gotUserID)
		})
	}
}

func TestEngagementForUnknownUserIsEmptyObject(t *testing.T) {
	e, _ := newTestServer(t, &fakeAnalyticsService{})

	rec := doGet(e, "/api/analytics/user/ghost/engagement")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestTodoAnalyticsHandler(t *testing.T) {
	t.Run("parses dates in the configured location", func(t *testing.T) {
		svc := &fakeAnalyticsService{}
		e, _ := newTestServer(t, svc)

		rec := doGet(e, "/api/analytics/todo/analytics?startDate=2024-06-01&endDate=2024-06-30T12:00:00Z")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, svc.gotStart.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
		assert.True(t, svc.gotEnd.Equal(time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)))
		assert.JSONEq(t, `{"todoCount":7}`, rec.Body.String())
	})

	tests := []struct {
		name  string
		query string
	}{
		{"missing start", "?endDate=2024-06-30"},
		{"missing end", "?startDate=2024-06-01"},
		{"malformed start", "?startDate=yesterday&endDate=2024-06-30"},
		{"inverted range", "?startDate=2024-07-01&endDate=2024-06-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestServer(t, &fakeAnalyticsService{})

			rec := doGet(e, "/api/analytics/todo/analytics"+tt.query)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "INVALID_ARGUMENT", body["code"])
		})
	}
}

func TestServiceErrorsAreMapped(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError, "UPSTREAM_FAILURE"},
		{"invalid argument", errors.Wrap(analytics.ErrInvalidArgument, "bad period"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"deadline", errors.Wrap(context.DeadlineExceeded, "list todos"), http.StatusGatewayTimeout, "TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestServer(t, &fakeAnalyticsService{err: tt.err})

			rec := doGet(e, "/api/analytics/user/alice/weekly-report")
			require.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestUpstreamFailureHidesCause(t *testing.T) {
	e, _ := newTestServer(t, &fakeAnalyticsService{err: errors.New("pq: password authentication failed")})

	rec := doGet(e, "/api/analytics/growth")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t, &fakeAnalyticsService{})

	rec := doGet(e, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, rec.Body.String())
}
