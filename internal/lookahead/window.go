// Package lookahead defines the fixed reminder windows and the UTC day
// interval each of them selects.
package lookahead

import "time"

type Tag string

const (
	OneDay   Tag = "1_DAY"
	ThreeDay Tag = "3_DAYS"
	OneWeek  Tag = "1_WEEK"
	TwoWeeks Tag = "2_WEEKS"
	OneMonth Tag = "1_MONTH"
)

// Window is a reminder lead time a user can subscribe an event to.
type Window struct {
	Tag       Tag
	DaysAhead int
	Display   string
}

// Order matters: runs process windows in this order.
var windows = [...]Window{
	{Tag: OneDay, DaysAhead: 1, Display: "tomorrow"},
	{Tag: ThreeDay, DaysAhead: 3, Display: "in 3 days"},
	{Tag: OneWeek, DaysAhead: 7, Display: "in 1 week"},
	{Tag: TwoWeeks, DaysAhead: 14, Display: "in 2 weeks"},
	{Tag: OneMonth, DaysAhead: 30, Display: "in 1 month"},
}

// All returns the five reminder windows in processing order.
func All() []Window {
	out := make([]Window, len(windows))
	copy(out, windows[:])
	return out
}

// Lookup finds a window by tag.
func Lookup(tag Tag) (Window, bool) {
	for _, w := range windows {
		if w.Tag == tag {
			return w, true
		}
	}
	return Window{}, false
}

// Interval is a single UTC calendar day, both ends inclusive.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the interval.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}

// Interval returns the day this window selects relative to now.
func (w Window) Interval(now time.Time) Interval {
	return WindowFor(w.DaysAhead, now)
}

// WindowFor returns the UTC day daysAhead days after now, from midnight to
// 23:59:59.999.
func WindowFor(daysAhead int, now time.Time) Interval {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day()+daysAhead, 0, 0, 0, 0, time.UTC)
	return Interval{
		Start: start,
		End:   start.Add(24*time.Hour - time.Millisecond),
	}
}
