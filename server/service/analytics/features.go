package analytics

import (
	"time"

	"github.com/tapqyr/analytics/store"
)

// NoPriority is the distribution key for todos without a priority label.
const NoPriority = ""

// DueDatePatterns splits todos by due date presence.
type DueDatePatterns struct {
	WithDueDate    int `json:"withDueDate"`
	WithoutDueDate int `json:"withoutDueDate"`
}

// FeatureSummary is the aggregate view of one subject's todos, either one user
// or one time window. When TodoCount is 0 every other field is nil.
type FeatureSummary struct {
	TodoCount             int               `json:"todoCount"`
	TodosByDayOfWeek      map[DayOfWeek]int `json:"todosByDayOfWeek,omitempty"`
	ActiveDayCount        *int              `json:"activeDayCount,omitempty"`
	MostActiveDay         *DayOfWeek        `json:"mostActiveDay,omitempty"`
	MostActiveDayCount    *int              `json:"mostActiveDayCount,omitempty"`
	CompletedCount        *int              `json:"completedCount,omitempty"`
	CompletionRate        *float64          `json:"completionRate,omitempty"`
	DueDatePatterns       *DueDatePatterns  `json:"dueDatePatterns,omitempty"`
	PriorityDistribution  map[string]int    `json:"priorityDistribution,omitempty"`
	AIGeneratedCount      *int              `json:"aiGeneratedCount,omitempty"`
	AIGeneratedPercentage *float64          `json:"aiGeneratedPercentage,omitempty"`
}

// ExtractFeatures summarizes todos. Weekdays are taken from CreatedAt in loc.
func ExtractFeatures(todos []*store.Todo, loc *time.Location) *FeatureSummary {
	total := len(todos)
	summary := &FeatureSummary{TodoCount: total}
	if total == 0 {
		return summary
	}

	byDay := groupCount(todos, func(t *store.Todo) DayOfWeek { return DayOfWeekOf(t.CreatedAt, loc) })
	summary.TodosByDayOfWeek = byDay
	summary.ActiveDayCount = ptr(len(byDay))
	day, count := mostActiveDay(byDay)
	summary.MostActiveDay = &day
	summary.MostActiveDayCount = &count

	completed := countIf(todos, func(t *store.Todo) bool { return t.Completed })
	summary.CompletedCount = &completed
	summary.CompletionRate = rate(completed, total)

	withDue := countIf(todos, func(t *store.Todo) bool { return t.DueDate != nil })
	summary.DueDatePatterns = &DueDatePatterns{WithDueDate: withDue, WithoutDueDate: total - withDue}

	summary.PriorityDistribution = priorityDistribution(todos)

	ai := countIf(todos, func(t *store.Todo) bool { return t.IsAIGenerated })
	summary.AIGeneratedCount = &ai
	summary.AIGeneratedPercentage = rate(ai, total)

	return summary
}

// mostActiveDay returns the day with the highest count.
// Ties go to the earliest day of the week.
func mostActiveDay(byDay map[DayOfWeek]int) (DayOfWeek, int) {
	best, bestCount := Monday, -1
	for d := Monday; d <= Sunday; d++ {
		if c, ok := byDay[d]; ok && c > bestCount {
			best, bestCount = d, c
		}
	}
	return best, bestCount
}

func priorityDistribution(todos []*store.Todo) map[string]int {
	return groupCount(todos, func(t *store.Todo) string {
		if t.Priority == nil {
			return NoPriority
		}
		return *t.Priority
	})
}
