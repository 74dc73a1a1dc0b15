package analytics

import (
	"context"
	"time"
)

// Service computes descriptive analytics over users and todos.
// Every call reads fresh records from the store; nothing is cached.
type Service interface {
	// GetGrowthMetrics counts users created in the last 24 hours, 7 days and 30 days, plus all users.
	GetGrowthMetrics(ctx context.Context) (*GrowthMetrics, error)

	// GetCompletionRates returns the completion rate of every user with at least one todo.
	GetCompletionRates(ctx context.Context) ([]*UserCompletionRate, error)

	// GetActivityPatterns summarizes all todos of a user.
	GetActivityPatterns(ctx context.Context, userID string) (*FeatureSummary, error)

	// GetEngagementMetrics describes a user's profile, activity and memory.
	// An unknown user yields an empty result, not an error.
	GetEngagementMetrics(ctx context.Context, userID string) (*EngagementMetrics, error)

	// GetTodoAnalytics summarizes every todo created within [start, end].
	GetTodoAnalytics(ctx context.Context, start, end time.Time) (*TodoAnalytics, error)

	// GetWeeklyReport summarizes the user's current calendar week.
	GetWeeklyReport(ctx context.Context, userID string) (*WeeklyReport, error)

	// GetSimilarUsers returns the other users whose activity scores above the
	// similarity threshold, best match first.
	GetSimilarUsers(ctx context.Context, userID string) ([]*SimilarUser, error)

	// GetComprehensiveAnalytics combines activity patterns, engagement and the weekly report.
	GetComprehensiveAnalytics(ctx context.Context, userID string) (*ComprehensiveAnalytics, error)
}

type GrowthMetrics struct {
	DailyNewUsers   int64 `json:"dailyNewUsers"`
	WeeklyNewUsers  int64 `json:"weeklyNewUsers"`
	MonthlyNewUsers int64 `json:"monthlyNewUsers"`
	TotalUsers      int64 `json:"totalUsers"`
}

type UserCompletionRate struct {
	UserID         string  `json:"userId"`
	CompletedCount int64   `json:"completedCount"`
	TotalCount     int64   `json:"totalCount"`
	CompletionRate float64 `json:"completionRate"`
	UserName       *string `json:"userName,omitempty"`
	UserEmail      *string `json:"userEmail,omitempty"`
}

// TodoAnalytics is the summary of todos created in a caller supplied period.
type TodoAnalytics struct {
	TodoCount             int            `json:"todoCount"`
	CompletionRate        *float64       `json:"completionRate,omitempty"`
	PriorityDistribution  map[string]int `json:"priorityDistribution,omitempty"`
	AIGeneratedCount      *int           `json:"aiGeneratedCount,omitempty"`
	AIGeneratedPercentage *float64       `json:"aiGeneratedPercentage,omitempty"`
	WithDueDate           *int           `json:"withDueDate,omitempty"`
	WithoutDueDate        *int           `json:"withoutDueDate,omitempty"`
}

type WeeklyReport struct {
	UserID                string         `json:"userId"`
	WeekStart             string         `json:"weekStart"`
	WeekEnd               string         `json:"weekEnd"`
	TotalTodosCreated     int            `json:"totalTodosCreated"`
	CompletedTodos        int            `json:"completedTodos"`
	CompletionRate        float64        `json:"completionRate"`
	PriorityBreakdown     map[string]int `json:"priorityBreakdown"`
	AIGeneratedCount      int            `json:"aiGeneratedCount"`
	AIGeneratedPercentage float64        `json:"aiGeneratedPercentage"`
	WithDueDate           int            `json:"withDueDate"`
	WithoutDueDate        int            `json:"withoutDueDate"`

	// Comparisons, omitted when the user has no todos at all.
	CompletionRateChangeFromAverage  *float64 `json:"completionRateChangeFromAverage,omitempty"`
	PrevWeekTodoCount                *int     `json:"prevWeekTodoCount,omitempty"`
	TodoCountChangeFromPrevWeek      *int     `json:"todoCountChangeFromPrevWeek,omitempty"`
	PrevWeekCompletionRate           *float64 `json:"prevWeekCompletionRate,omitempty"`
	CompletionRateChangeFromPrevWeek *float64 `json:"completionRateChangeFromPrevWeek,omitempty"`
}

type EngagementMetrics struct {
	LastLogin             *time.Time `json:"lastLogin,omitempty"`
	DaysSinceRegistration *int64     `json:"daysSinceRegistration,omitempty"`
	OnboardingComplete    *bool      `json:"onboardingComplete,omitempty"`
	ProfileCompleteness   *float64   `json:"profileCompleteness,omitempty"`
	TotalTodos            *int64     `json:"totalTodos,omitempty"`
	HasMemory             *bool      `json:"hasMemory,omitempty"`
	MemoryLastUpdated     *time.Time `json:"memoryLastUpdated,omitempty"`
	HasTaskPreferences    *bool      `json:"hasTaskPreferences,omitempty"`
	HasWorkPatterns       *bool      `json:"hasWorkPatterns,omitempty"`
	HasInteractionHistory *bool      `json:"hasInteractionHistory,omitempty"`
	HasUserPersona        *bool      `json:"hasUserPersona,omitempty"`
}

type SharedPatterns struct {
	SharedMostActiveDay *DayOfWeek `json:"sharedMostActiveDay,omitempty"`
}

type SimilarUser struct {
	UserID          string         `json:"userId"`
	UserName        *string        `json:"userName,omitempty"`
	SimilarityScore float64        `json:"similarityScore"`
	SharedPatterns  SharedPatterns `json:"sharedPatterns"`
	MatchedPatterns []string       `json:"matchedPatterns,omitempty"`
}

type ComprehensiveAnalytics struct {
	TaskAnalytics     *FeatureSummary    `json:"taskAnalytics"`
	EngagementMetrics *EngagementMetrics `json:"engagementMetrics"`
	WeeklyReport      *WeeklyReport      `json:"weeklyReport"`
}
