package lookahead

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(year int, month time.Month, day, hour, min, sec, ms int) time.Time {
	return time.Date(year, month, day, hour, min, sec, ms*int(time.Millisecond), time.UTC)
}

func TestWindowFor(t *testing.T) {
	tests := []struct {
		name      string
		daysAhead int
		now       time.Time
		wantStart time.Time
	}{
		{"month boundary", 1, utc(2024, time.January, 31, 9, 30, 0, 0), utc(2024, time.February, 1, 0, 0, 0, 0)},
		{"leap year", 1, utc(2024, time.February, 28, 8, 0, 0, 0), utc(2024, time.February, 29, 0, 0, 0, 0)},
		{"non-leap year", 1, utc(2025, time.February, 28, 8, 0, 0, 0), utc(2025, time.March, 1, 0, 0, 0, 0)},
		{"year boundary", 3, utc(2025, time.December, 30, 23, 59, 0, 0), utc(2026, time.January, 2, 0, 0, 0, 0)},
		{"one month", 30, utc(2026, time.October, 15, 0, 0, 0, 0), utc(2026, time.November, 14, 0, 0, 0, 0)},
		{"zero days", 0, utc(2026, time.October, 15, 12, 0, 0, 0), utc(2026, time.October, 15, 0, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowFor(tt.daysAhead, tt.now)
			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantStart.Add(24*time.Hour-time.Millisecond), got.End)
		})
	}
}

func TestWindowForEndOfDay(t *testing.T) {
	got := WindowFor(1, utc(2024, time.January, 31, 0, 0, 0, 0))
	assert.Equal(t, utc(2024, time.February, 1, 23, 59, 59, 999), got.End)
}

func TestWindowForConvertsToUTC(t *testing.T) {
	taipei := time.FixedZone("UTC+8", 8*60*60)
	// 2026-10-16 07:00 in Taipei is still 2026-10-15 in UTC.
	now := time.Date(2026, time.October, 16, 7, 0, 0, 0, taipei)

	got := WindowFor(1, now)
	assert.Equal(t, utc(2026, time.October, 16, 0, 0, 0, 0), got.Start)
}

func TestIntervalContains(t *testing.T) {
	iv := WindowFor(1, utc(2026, time.October, 15, 10, 0, 0, 0))

	assert.True(t, iv.Contains(iv.Start))
	assert.True(t, iv.Contains(iv.End))
	assert.False(t, iv.Contains(iv.Start.Add(-time.Millisecond)))
	assert.False(t, iv.Contains(iv.End.Add(time.Millisecond)))
}

func TestAllWindowsInTableOrder(t *testing.T) {
	all := All()
	require.Len(t, all, 5)

	var tags []Tag
	var days []int
	for _, w := range all {
		tags = append(tags, w.Tag)
		days = append(days, w.DaysAhead)
	}
	assert.Equal(t, []Tag{OneDay, ThreeDay, OneWeek, TwoWeeks, OneMonth}, tags)
	assert.Equal(t, []int{1, 3, 7, 14, 30}, days)
	assert.Equal(t, "tomorrow", all[0].Display)
	assert.Equal(t, "in 1 month", all[4].Display)

	all[0].Display = "mutated"
	assert.Equal(t, "tomorrow", All()[0].Display)
}

func TestLookup(t *testing.T) {
	w, ok := Lookup(TwoWeeks)
	require.True(t, ok)
	assert.Equal(t, 14, w.DaysAhead)
	assert.Equal(t, "in 2 weeks", w.Display)

	_, ok = Lookup("6_MONTHS")
	assert.False(t, ok)
}
