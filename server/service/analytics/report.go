package analytics

import (
	"sort"
	"time"

	"github.com/tapqyr/analytics/server/timezone"
	"github.com/tapqyr/analytics/store"
)

const dateLayout = "2006-01-02"

// profileFieldCount is the number of optional profile fields counted by
// profile completeness: name, work description, short and long term goals, other context.
const profileFieldCount = 5

// GrowthWindows are the lower bounds of the new user windows ending at Now.
type GrowthWindows struct {
	Now        time.Time
	DayStart   time.Time
	WeekStart  time.Time
	MonthStart time.Time
}

// NewGrowthWindows returns the 24 hour, 7 day and 30 day windows ending at now.
func NewGrowthWindows(now time.Time) GrowthWindows {
	return GrowthWindows{
		Now:        now,
		DayStart:   now.Add(-24 * time.Hour),
		WeekStart:  now.Add(-7 * 24 * time.Hour),
		MonthStart: now.Add(-30 * 24 * time.Hour),
	}
}

func BuildGrowthMetrics(daily, weekly, monthly, total int64) *GrowthMetrics {
	return &GrowthMetrics{
		DailyNewUsers:   daily,
		WeeklyNewUsers:  weekly,
		MonthlyNewUsers: monthly,
		TotalUsers:      total,
	}
}

// BuildCompletionRates turns per-user completion counts into rates.
// Users found in users contribute their name and email. The result is ordered by user ID.
func BuildCompletionRates(rows []*store.TodoCompletionCount, users map[string]*store.User) []*UserCompletionRate {
	list := make([]*UserCompletionRate, 0, len(rows))
	for _, row := range rows {
		item := &UserCompletionRate{
			UserID:         row.UserID,
			CompletedCount: row.CompletedCount,
			TotalCount:     row.TotalCount,
			CompletionRate: ratio(row.CompletedCount, row.TotalCount),
		}
		if user, ok := users[row.UserID]; ok && user != nil {
			item.UserName = user.Name
			email := user.Email
			item.UserEmail = &email
		}
		list = append(list, item)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UserID < list[j].UserID
	})
	return list
}

// BuildTodoAnalytics flattens a window summary into the period analytics shape.
func BuildTodoAnalytics(summary *FeatureSummary) *TodoAnalytics {
	result := &TodoAnalytics{TodoCount: summary.TodoCount}
	if summary.TodoCount == 0 {
		return result
	}
	result.CompletionRate = summary.CompletionRate
	result.PriorityDistribution = summary.PriorityDistribution
	result.AIGeneratedCount = summary.AIGeneratedCount
	result.AIGeneratedPercentage = summary.AIGeneratedPercentage
	if p := summary.DueDatePatterns; p != nil {
		result.WithDueDate = ptr(p.WithDueDate)
		result.WithoutDueDate = ptr(p.WithoutDueDate)
	}
	return result
}

// Week is a calendar week from Monday 00:00 to the last nanosecond of Sunday.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the week containing now in loc.
func WeekOf(now time.Time, loc *time.Location) Week {
	if loc == nil {
		loc = time.UTC
	}
	today := timezone.StartOfDay(now, loc)
	monday := today.AddDate(0, 0, -int(DayOfWeekOf(now, loc)))
	return Week{
		Start: monday,
		End:   timezone.EndOfDay(monday.AddDate(0, 0, 6), loc),
	}
}

// Previous returns the week shifted back by seven calendar days.
func (w Week) Previous() Week {
	return Week{
		Start: w.Start.AddDate(0, 0, -7),
		End:   w.End.AddDate(0, 0, -7),
	}
}

// BuildWeeklyReport summarizes the week's todos. The all-time and previous week
// comparisons are only filled when allTodos is not empty.
func BuildWeeklyReport(userID string, week Week, weekTodos, prevWeekTodos, allTodos []*store.Todo) *WeeklyReport {
	total := len(weekTodos)
	completed := countIf(weekTodos, func(t *store.Todo) bool { return t.Completed })
	ai := countIf(weekTodos, func(t *store.Todo) bool { return t.IsAIGenerated })
	withDue := countIf(weekTodos, func(t *store.Todo) bool { return t.DueDate != nil })
	weekRate := ratio(completed, total)

	report := &WeeklyReport{
		UserID:                userID,
		WeekStart:             week.Start.Format(dateLayout),
		WeekEnd:               week.End.Format(dateLayout),
		TotalTodosCreated:     total,
		CompletedTodos:        completed,
		CompletionRate:        weekRate,
		PriorityBreakdown:     priorityDistribution(weekTodos),
		AIGeneratedCount:      ai,
		AIGeneratedPercentage: ratio(ai, total),
		WithDueDate:           withDue,
		WithoutDueDate:        total - withDue,
	}

	if len(allTodos) == 0 {
		return report
	}

	allCompleted := countIf(allTodos, func(t *store.Todo) bool { return t.Completed })
	report.CompletionRateChangeFromAverage = ptr(weekRate - ratio(allCompleted, len(allTodos)))

	prevTotal := len(prevWeekTodos)
	prevCompleted := countIf(prevWeekTodos, func(t *store.Todo) bool { return t.Completed })
	prevRate := ratio(prevCompleted, prevTotal)
	report.PrevWeekTodoCount = ptr(prevTotal)
	report.TodoCountChangeFromPrevWeek = ptr(total - prevTotal)
	report.PrevWeekCompletionRate = ptr(prevRate)
	report.CompletionRateChangeFromPrevWeek = ptr(weekRate - prevRate)
	return report
}

// BuildEngagementMetrics describes how engaged user is. A nil user yields an empty result.
func BuildEngagementMetrics(user *store.User, totalTodos int64, memory *store.UserMemory, now time.Time, loc *time.Location) *EngagementMetrics {
	metrics := &EngagementMetrics{}
	if user == nil {
		return metrics
	}

	metrics.LastLogin = user.LastLogin
	if !user.CreatedAt.IsZero() {
		metrics.DaysSinceRegistration = ptr(calendarDaysBetween(user.CreatedAt, now, loc))
	}
	metrics.OnboardingComplete = user.OnboardingComplete

	filled := 0
	for _, field := range []*string{user.Name, user.WorkDescription, user.ShortTermGoals, user.LongTermGoals, user.OtherContext} {
		if field != nil {
			filled++
		}
	}
	metrics.ProfileCompleteness = ptr(ratio(filled, profileFieldCount))
	metrics.TotalTodos = ptr(totalTodos)

	metrics.HasMemory = ptr(memory != nil)
	if memory != nil {
		updated := memory.UpdatedAt
		metrics.MemoryLastUpdated = &updated
		metrics.HasTaskPreferences = ptr(memory.TaskPreferences != nil)
		metrics.HasWorkPatterns = ptr(memory.WorkPatterns != nil)
		metrics.HasInteractionHistory = ptr(memory.InteractionHistory != nil)
		metrics.HasUserPersona = ptr(memory.UserPersona != nil)
	}
	return metrics
}

// calendarDaysBetween counts date boundaries between from and to in loc,
// ignoring the time of day.
func calendarDaysBetween(from, to time.Time, loc *time.Location) int64 {
	if loc == nil {
		loc = time.UTC
	}
	civil := func(t time.Time) time.Time {
		y, m, d := t.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return int64(civil(to).Sub(civil(from)).Hours() / 24)
}
