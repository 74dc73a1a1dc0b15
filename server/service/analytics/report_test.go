package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapqyr/analytics/store"
)

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"monday midnight", monday},
		{"wednesday noon", monday.AddDate(0, 0, 2).Add(12 * time.Hour)},
		{"sunday last second", monday.AddDate(0, 0, 7).Add(-time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := WeekOf(tt.now, time.UTC)
			assert.True(t, week.Start.Equal(monday), "start %s", week.Start)
			assert.True(t, week.End.Equal(monday.AddDate(0, 0, 7).Add(-time.Nanosecond)), "end %s", week.End)

			prev := week.Previous()
			assert.True(t, prev.Start.Equal(monday.AddDate(0, 0, -7)))
			assert.True(t, prev.End.Equal(monday.Add(-time.Nanosecond)))
		})
	}
}

func TestWeekOfLocation(t *testing.T) {
	// Monday 02:00 in Tokyo is still Sunday in UTC.
	tokyo := time.FixedZone("JST", 9*3600)
	week := WeekOf(time.Date(2024, 6, 16, 17, 0, 0, 0, time.UTC), tokyo)
	assert.Equal(t, "2024-06-17", week.Start.Format(dateLayout))
	assert.Equal(t, time.Date(2024, 6, 17, 0, 0, 0, 0, tokyo), week.Start)
}

func TestBuildGrowthMetrics(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	windows := NewGrowthWindows(now)
	assert.True(t, windows.DayStart.Equal(now.AddDate(0, 0, -1)))
	assert.True(t, windows.WeekStart.Equal(now.AddDate(0, 0, -7)))
	assert.True(t, windows.MonthStart.Equal(now.AddDate(0, 0, -30)))

	assert.Equal(t, &GrowthMetrics{DailyNewUsers: 2, WeeklyNewUsers: 5, MonthlyNewUsers: 9, TotalUsers: 20},
		BuildGrowthMetrics(2, 5, 9, 20))
}

func TestBuildCompletionRates(t *testing.T) {
	name := "Bea"
	rows := []*store.TodoCompletionCount{
		{UserID: "u2", CompletedCount: 3, TotalCount: 4},
		{UserID: "ghost", CompletedCount: 0, TotalCount: 2},
		{UserID: "u1", CompletedCount: 0, TotalCount: 0},
	}
	users := map[string]*store.User{
		"u1": {ID: "u1", Email: "a@example.com"},
		"u2": {ID: "u2", Email: "b@example.com", Name: &name},
	}

	list := BuildCompletionRates(rows, users)
	require.Len(t, list, 3)

	assert.Equal(t, "ghost", list[0].UserID)
	assert.Equal(t, 0.0, list[0].CompletionRate)
	assert.Nil(t, list[0].UserEmail)
	assert.Nil(t, list[0].UserName)

	assert.Equal(t, "u1", list[1].UserID)
	assert.Equal(t, 0.0, list[1].CompletionRate)
	assert.Equal(t, "a@example.com", *list[1].UserEmail)

	assert.Equal(t, "u2", list[2].UserID)
	assert.Equal(t, 0.75, list[2].CompletionRate)
	assert.Equal(t, "Bea", *list[2].UserName)
}

func TestBuildTodoAnalytics(t *testing.T) {
	result := BuildTodoAnalytics(ExtractFeatures(tenTodoScenario("u"), time.UTC))
	assert.Equal(t, 10, result.TodoCount)
	assert.Equal(t, 0.6, *result.CompletionRate)
	assert.Equal(t, 3, *result.WithDueDate)
	assert.Equal(t, 7, *result.WithoutDueDate)
	assert.Equal(t, 2, *result.AIGeneratedCount)

	empty := BuildTodoAnalytics(ExtractFeatures(nil, time.UTC))
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"todoCount":0}`, string(data))
}

func TestBuildWeeklyReportPreviousWeekOnly(t *testing.T) {
	week := WeekOf(monday.AddDate(0, 0, 2), time.UTC)
	prevWeekTodos := []*store.Todo{
		newTodo("u", monday.AddDate(0, 0, -6), completed()),
		newTodo("u", monday.AddDate(0, 0, -5), completed()),
		newTodo("u", monday.AddDate(0, 0, -5)),
	}

	report := BuildWeeklyReport("u", week, nil, prevWeekTodos, prevWeekTodos)
	assert.Equal(t, "u", report.UserID)
	assert.Equal(t, "2024-06-10", report.WeekStart)
	assert.Equal(t, "2024-06-16", report.WeekEnd)
	assert.Equal(t, 0, report.TotalTodosCreated)
	assert.Equal(t, 0.0, report.CompletionRate)
	assert.Equal(t, 0.0, report.AIGeneratedPercentage)
	assert.Empty(t, report.PriorityBreakdown)

	require.NotNil(t, report.PrevWeekTodoCount)
	assert.Equal(t, 3, *report.PrevWeekTodoCount)
	require.NotNil(t, report.TodoCountChangeFromPrevWeek)
	assert.Equal(t, 0-3, *report.TodoCountChangeFromPrevWeek)
	assert.InDelta(t, 2.0/3.0, *report.PrevWeekCompletionRate, 1e-12)
	assert.InDelta(t, -2.0/3.0, *report.CompletionRateChangeFromPrevWeek, 1e-12)
	assert.InDelta(t, -2.0/3.0, *report.CompletionRateChangeFromAverage, 1e-12)
}

func TestBuildWeeklyReportWithoutHistory(t *testing.T) {
	report := BuildWeeklyReport("u", WeekOf(monday, time.UTC), nil, nil, nil)
	assert.Nil(t, report.CompletionRateChangeFromAverage)
	assert.Nil(t, report.PrevWeekTodoCount)
	assert.Nil(t, report.TodoCountChangeFromPrevWeek)
	assert.Nil(t, report.PrevWeekCompletionRate)
	assert.Nil(t, report.CompletionRateChangeFromPrevWeek)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"userId": "u",
		"weekStart": "2024-06-10",
		"weekEnd": "2024-06-16",
		"totalTodosCreated": 0,
		"completedTodos": 0,
		"completionRate": 0,
		"priorityBreakdown": {},
		"aiGeneratedCount": 0,
		"aiGeneratedPercentage": 0,
		"withDueDate": 0,
		"withoutDueDate": 0
	}`, string(data))
}

func TestBuildWeeklyReportCurrentWeek(t *testing.T) {
	week := WeekOf(monday, time.UTC)
	due := monday.AddDate(0, 0, 3)
	weekTodos := []*store.Todo{
		newTodo("u", monday, completed(), withPriority("high"), withDue(due)),
		newTodo("u", monday.AddDate(0, 0, 1), aiGenerated(), withPriority("high")),
	}
	older := newTodo("u", monday.AddDate(0, 0, -30))
	all := append([]*store.Todo{older}, weekTodos...)

	report := BuildWeeklyReport("u", week, weekTodos, nil, all)
	assert.Equal(t, 2, report.TotalTodosCreated)
	assert.Equal(t, 1, report.CompletedTodos)
	assert.Equal(t, 0.5, report.CompletionRate)
	assert.Equal(t, map[string]int{"high": 2}, report.PriorityBreakdown)
	assert.Equal(t, 1, report.AIGeneratedCount)
	assert.Equal(t, 0.5, report.AIGeneratedPercentage)
	assert.Equal(t, 1, report.WithDueDate)
	assert.Equal(t, 1, report.WithoutDueDate)
	assert.InDelta(t, 0.5-1.0/3.0, *report.CompletionRateChangeFromAverage, 1e-12)
	assert.Equal(t, 0, *report.PrevWeekTodoCount)
	assert.Equal(t, 2, *report.TodoCountChangeFromPrevWeek)
	assert.Equal(t, 0.0, *report.PrevWeekCompletionRate)
	assert.Equal(t, 0.5, *report.CompletionRateChangeFromPrevWeek)
}

func TestBuildEngagementMetrics(t *testing.T) {
	now := time.Date(2024, 6, 30, 1, 0, 0, 0, time.UTC)

	t.Run("missing user", func(t *testing.T) {
		metrics := BuildEngagementMetrics(nil, 0, nil, now, time.UTC)
		data, err := json.Marshal(metrics)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
	})

	t.Run("user without memory", func(t *testing.T) {
		name, goals := "Ada", "ship it"
		onboarded := false
		user := &store.User{
			ID:                 "u",
			Email:              "ada@example.com",
			Name:               &name,
			ShortTermGoals:     &goals,
			OnboardingComplete: &onboarded,
			// Only calendar dates count, not elapsed hours.
			CreatedAt: time.Date(2024, 6, 19, 23, 0, 0, 0, time.UTC),
		}
		metrics := BuildEngagementMetrics(user, 7, nil, now, time.UTC)
		assert.Equal(t, int64(11), *metrics.DaysSinceRegistration)
		assert.Equal(t, 0.4, *metrics.ProfileCompleteness)
		assert.Equal(t, int64(7), *metrics.TotalTodos)
		assert.False(t, *metrics.OnboardingComplete)
		assert.False(t, *metrics.HasMemory)
		assert.Nil(t, metrics.LastLogin)
		assert.Nil(t, metrics.MemoryLastUpdated)
		assert.Nil(t, metrics.HasTaskPreferences)
	})

	t.Run("user with memory", func(t *testing.T) {
		lastLogin := now.Add(-time.Hour)
		prefs, persona := `{}`, `{"role":"pm"}`
		user := &store.User{ID: "u", CreatedAt: now, LastLogin: &lastLogin}
		memory := &store.UserMemory{UserID: "u", UpdatedAt: now.Add(-2 * time.Hour), TaskPreferences: &prefs, UserPersona: &persona}

		metrics := BuildEngagementMetrics(user, 0, memory, now, time.UTC)
		assert.Equal(t, int64(0), *metrics.DaysSinceRegistration)
		assert.Equal(t, 0.0, *metrics.ProfileCompleteness)
		assert.Equal(t, lastLogin, *metrics.LastLogin)
		assert.True(t, *metrics.HasMemory)
		assert.Equal(t, memory.UpdatedAt, *metrics.MemoryLastUpdated)
		assert.True(t, *metrics.HasTaskPreferences)
		assert.False(t, *metrics.HasWorkPatterns)
		assert.False(t, *metrics.HasInteractionHistory)
		assert.True(t, *metrics.HasUserPersona)
	})
}

func TestCalendarDaysBetween(t *testing.T) {
	from := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	to := time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, int64(1), calendarDaysBetween(from, to, time.UTC))
	assert.Equal(t, int64(0), calendarDaysBetween(from, to, time.FixedZone("UTC+1", 3600)))
}
