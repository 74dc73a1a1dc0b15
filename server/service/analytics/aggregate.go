package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DayOfWeek is a calendar weekday indexed from Monday (0) to Sunday (6).
// It marshals as the upper-case English day name, e.g. "MONDAY".
type DayOfWeek int

const (
	Monday DayOfWeek = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// DayOfWeekOf returns the weekday of t in loc.
func DayOfWeekOf(t time.Time, loc *time.Location) DayOfWeek {
	if loc == nil {
		loc = time.UTC
	}
	// time.Weekday starts at Sunday = 0.
	return DayOfWeek((int(t.In(loc).Weekday()) + 6) % 7)
}

func (d DayOfWeek) String() string {
	if d < Monday || d > Sunday {
		return "UNKNOWN"
	}
	return dayNames[d]
}

func (d DayOfWeek) MarshalText() ([]byte, error) {
	if d < Monday || d > Sunday {
		return nil, errors.Errorf("invalid day of week %d", int(d))
	}
	return []byte(dayNames[d]), nil
}

func (d *DayOfWeek) UnmarshalText(text []byte) error {
	name := strings.ToUpper(string(text))
	for i, n := range dayNames {
		if n == name {
			*d = DayOfWeek(i)
			return nil
		}
	}
	return errors.Errorf("invalid day of week %q", string(text))
}

func countIf[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}

func groupCount[T any, K comparable](items []T, key func(T) K) map[K]int {
	groups := make(map[K]int)
	for _, item := range items {
		groups[key(item)]++
	}
	return groups
}

// ratio returns n/total, or 0 when total is 0.
func ratio[N int | int64](n, total N) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// rate returns n/total, or nil when total is 0.
func rate(n, total int) *float64 {
	if total == 0 {
		return nil
	}
	v := float64(n) / float64(total)
	return &v
}

// sortedKeys returns the union of the keys of maps in ascending order.
func sortedKeys[V any](maps ...map[string]V) []string {
	seen := make(map[string]struct{})
	for _, m := range maps {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ptr[T any](v T) *T {
	return &v
}
