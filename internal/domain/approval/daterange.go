package approval

import (
	"strings"
	"time"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// DateRange is a named relative window over submission creation time
type DateRange string

const (
	RangeAllTime     DateRange = "All Time"
	RangeToday       DateRange = "Today"
	RangeThisWeek    DateRange = "This Week"
	RangeThisMonth   DateRange = "This Month"
	RangeLast3Months DateRange = "Last 3 Months"
	RangeLast6Months DateRange = "Last 6 Months"
	RangeThisYear    DateRange = "This Year"
)

// DateRanges lists every named range in display order
var DateRanges = []DateRange{
	RangeAllTime,
	RangeToday,
	RangeThisWeek,
	RangeThisMonth,
	RangeLast3Months,
	RangeLast6Months,
	RangeThisYear,
}

// String returns the string representation of the range
func (r DateRange) String() string {
	return string(r)
}

// ParseDateRange matches a range name case-insensitively, ignoring spaces,
// hyphens and underscores ("last-3-months" matches "Last 3 Months").
func ParseDateRange(name string) (DateRange, bool) {
	key := compactName(name)
	for _, r := range DateRanges {
		if compactName(string(r)) == key {
			return r, true
		}
	}
	return "", false
}

func compactName(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// DateMatcher evaluates date ranges against a clock
type DateMatcher struct {
	now func() time.Time
}

// NewDateMatcher creates a matcher. A nil clock uses time.Now.
func NewDateMatcher(now func() time.Time) *DateMatcher {
	if now == nil {
		now = time.Now
	}
	return &DateMatcher{now: now}
}

// Matches reports whether createdAt falls inside the named range, evaluated
// against the start of the current day. Unknown range names match everything.
func (m *DateMatcher) Matches(createdAt time.Time, r DateRange) bool {
	if r == RangeAllTime || r == "" {
		return true
	}

	now := m.now()
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	created := createdAt.In(loc)

	switch r {
	case RangeToday:
		y, mo, d := created.Date()
		return y == today.Year() && mo == today.Month() && d == today.Day()
	case RangeThisWeek:
		return !created.Before(today.AddDate(0, 0, -7))
	case RangeThisMonth:
		return !created.Before(monthsBefore(today, 1))
	case RangeLast3Months:
		return !created.Before(monthsBefore(today, 3))
	case RangeLast6Months:
		return !created.Before(monthsBefore(today, 6))
	case RangeThisYear:
		return !created.Before(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc))
	default:
		return true
	}
}

// monthsBefore steps back n calendar months, clamping the day to the end of
// the target month (Mar 31 minus one month is Feb 29, not Mar 2)
func monthsBefore(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// MatchesRaw parses a raw created_at value (epoch on failure) and matches it
func (m *DateMatcher) MatchesRaw(createdAt interface{}, r DateRange) bool {
	return m.Matches(entity.ParseTimestamp(createdAt), r)
}

// MatchesSubmission matches a submission's created_at
func (m *DateMatcher) MatchesSubmission(sub entity.Submission, r DateRange) bool {
	return m.Matches(sub.CreatedAt(), r)
}

var defaultMatcher = NewDateMatcher(nil)

// Matches evaluates a range against the wall clock
func Matches(createdAt time.Time, r DateRange) bool {
	return defaultMatcher.Matches(createdAt, r)
}
