package recurrence

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/datekeeper/internal/models"
)

func event(id string, date time.Time, r models.Recurrence) *models.Event {
	return &models.Event{EventID: id, UserID: "u1", Name: id, Date: date, Recurrence: r}
}

func TestExpandNoneIgnoresTargetYear(t *testing.T) {
	ev := event("dentist", Date(2023, time.March, 14), models.RecurrenceNone)

	occ, err := Expand(ev, 2031, Date(2026, time.October, 15))
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, Date(2023, time.March, 14), occ[0].Date)
	assert.Equal(t, "dentist", occ[0].ID)
}

func TestMonthlyClampsEveryMonth(t *testing.T) {
	for _, year := range []int{2023, 2024} {
		for day := 1; day <= 31; day++ {
			base := Date(2020, time.January, day)
			dates, err := Monthly(base, year)
			require.NoError(t, err, "day %d year %d", day, year)
			require.Len(t, dates, 12)

			for i, d := range dates {
				month := time.Month(i + 1)
				assert.Equal(t, year, d.Year())
				assert.Equal(t, month, d.Month(), "day %d", day)
				assert.Equal(t, min(day, DaysIn(year, month)), d.Day(), "day %d in %s %d", day, month, year)
			}
		}
	}
}

func TestMonthlyLeapDayClampsToFeb28(t *testing.T) {
	dates, err := Monthly(Date(2024, time.February, 29), 2025)
	require.NoError(t, err)
	assert.Equal(t, Date(2025, time.February, 28), dates[1])
	assert.Equal(t, Date(2025, time.March, 29), dates[2])
}

func TestMonthly31stUsesLastDayOfShortMonths(t *testing.T) {
	dates, err := Monthly(Date(2022, time.January, 31), 2024)
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.February, 29), dates[1])
	assert.Equal(t, Date(2024, time.April, 30), dates[3])
	assert.Equal(t, Date(2024, time.December, 31), dates[11])
}

func TestExpandMonthlyDerivesDistinctIDs(t *testing.T) {
	ev := event("rent", Date(2021, time.May, 30), models.RecurrenceMonthly)

	occ, err := Expand(ev, 2026, Date(2026, time.October, 15))
	require.NoError(t, err)
	require.Len(t, occ, 12)

	seen := map[string]bool{}
	for i, o := range occ {
		assert.NotEqual(t, ev.EventID, o.ID)
		assert.Equal(t, fmt.Sprintf("rent-2026-%02d", i+1), o.ID)
		assert.Equal(t, ev.Date, o.OriginalDate)
		assert.Same(t, ev, o.Event)
		seen[o.ID] = true
	}
	assert.Len(t, seen, 12)
}

func TestNextYearly(t *testing.T) {
	today := Date(2026, time.October, 15)

	tests := []struct {
		name string
		base time.Time
		want time.Time
	}{
		{"later this year", Date(1990, time.December, 1), Date(2026, time.December, 1)},
		{"today counts as upcoming", Date(1990, time.October, 15), Date(2026, time.October, 15)},
		{"yesterday rolls to next year", Date(1990, time.October, 14), Date(2027, time.October, 14)},
		{"earlier month rolls", Date(1985, time.January, 3), Date(2027, time.January, 3)},
		{"future base year still uses current year", Date(2030, time.November, 2), Date(2026, time.November, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextYearly(tt.base, today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextYearlyIgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2026, time.October, 15, 23, 59, 0, 0, time.UTC)
	got, err := NextYearly(Date(2000, time.October, 15), late)
	require.NoError(t, err)
	assert.Equal(t, Date(2026, time.October, 15), got)
}

func TestNextYearlyLeapDay(t *testing.T) {
	got, err := NextYearly(Date(2000, time.February, 29), Date(2026, time.January, 10))
	require.NoError(t, err)
	assert.Equal(t, Date(2026, time.February, 28), got)

	got, err = NextYearly(Date(2000, time.February, 29), Date(2027, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, Date(2028, time.February, 29), got)
}

func TestExpandYearlyNeverReturnsPastDate(t *testing.T) {
	today := Date(2026, time.October, 15)
	for m := time.January; m <= time.December; m++ {
		ev := event("bday", Date(1970, m, 15), models.RecurrenceYearly)
		occ, err := Expand(ev, 1999, today)
		require.NoError(t, err)
		require.Len(t, occ, 1)
		assert.False(t, occ[0].Date.Before(today), "month %s", m)
		assert.True(t, occ[0].Date.Before(today.AddDate(1, 0, 1)), "month %s", m)
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		name     string
		original time.Time
		on       time.Time
		want     int
	}{
		{"birthday reached", Date(1990, time.May, 1), Date(2026, time.May, 1), 36},
		{"birthday not yet", Date(1990, time.May, 2), Date(2026, time.May, 1), 35},
		{"earlier month", Date(1990, time.December, 1), Date(2026, time.May, 1), 35},
		{"leap day in non-leap year", Date(2000, time.February, 29), Date(2026, time.February, 28), 26},
		{"original after occurrence clamps to zero", Date(2030, time.June, 1), Date(2026, time.June, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Age(tt.original, tt.on))
		})
	}
}

func TestOccurrenceAge(t *testing.T) {
	ev := event("bday", Date(1990, time.November, 2), models.RecurrenceYearly)
	occ, err := Expand(ev, 0, Date(2026, time.October, 15))
	require.NoError(t, err)
	assert.Equal(t, 36, occ[0].Age())
}
