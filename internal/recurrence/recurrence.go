// Package recurrence expands stored events into concrete calendar
// occurrences. Everything here is pure: callers pass "today" explicitly and
// all dates are civil dates carried as midnight UTC.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hray3182/datekeeper/internal/models"
)

// Occurrence is one concrete date of an event. It is never persisted.
type Occurrence struct {
	// ID is unique per occurrence so list views can key on it.
	ID   string
	Date time.Time
	// OriginalDate is the stored event date, used for age counting.
	OriginalDate time.Time
	Event        *models.Event
}

// Age returns the number of completed years between the original date and
// this occurrence. Never negative.
func (o Occurrence) Age() int {
	return Age(o.OriginalDate, o.Date)
}

// Date builds a civil date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func civil(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// Age counts completed years from original to on, treating a Feb 29
// original as Feb 28 in non-leap years. Dates before the original yield 0.
func Age(original, on time.Time) int {
	age := on.Year() - original.Year()

	day := min(original.Day(), DaysIn(on.Year(), original.Month()))
	if on.Month() < original.Month() || (on.Month() == original.Month() && on.Day() < day) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// Expand returns the occurrences of event relevant to targetYear:
//   - one-off events yield their stored date, whatever the target year
//   - yearly events yield the next occurrence on or after today
//   - monthly events yield one occurrence per month of targetYear
func Expand(event *models.Event, targetYear int, today time.Time) ([]Occurrence, error) {
	switch event.Recurrence {
	case models.RecurrenceYearly:
		next, err := NextYearly(event.Date, today)
		if err != nil {
			return nil, err
		}
		return []Occurrence{newOccurrence(event, next)}, nil

	case models.RecurrenceMonthly:
		dates, err := Monthly(event.Date, targetYear)
		if err != nil {
			return nil, err
		}
		out := make([]Occurrence, len(dates))
		for i, d := range dates {
			out[i] = newOccurrence(event, d)
		}
		return out, nil

	default:
		return []Occurrence{{
			ID:           event.EventID,
			Date:         civil(event.Date),
			OriginalDate: civil(event.Date),
			Event:        event,
		}}, nil
	}
}

func newOccurrence(event *models.Event, date time.Time) Occurrence {
	return Occurrence{
		ID:           fmt.Sprintf("%s-%d-%02d", event.EventID, date.Year(), int(date.Month())),
		Date:         date,
		OriginalDate: civil(event.Date),
		Event:        event,
	}
}

// NextYearly returns base's month and day in today's year, or in the
// following year if that date is already behind today. Feb 29 becomes
// Feb 28 in non-leap years.
func NextYearly(base, today time.Time) (time.Time, error) {
	today = civil(today)

	rule, err := newRuleSpec(rrule.YEARLY, base).Build(Date(today.Year(), time.January, 1))
	if err != nil {
		return time.Time{}, err
	}

	next := rule.After(today, true)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("no yearly occurrence after %s", today.Format(time.DateOnly))
	}
	return civil(next), nil
}

// Monthly returns twelve dates in year, one per month, each carrying base's
// day-of-month clamped to the month's last day.
func Monthly(base time.Time, year int) ([]time.Time, error) {
	start := Date(year, time.January, 1)
	end := Date(year, time.December, 31)

	rule, err := newRuleSpec(rrule.MONTHLY, base).Build(start)
	if err != nil {
		return nil, err
	}

	dates := rule.Between(start, end, true)
	if len(dates) != 12 {
		return nil, fmt.Errorf("monthly expansion for %d produced %d dates", year, len(dates))
	}
	for i := range dates {
		dates[i] = civil(dates[i])
	}
	return dates, nil
}
