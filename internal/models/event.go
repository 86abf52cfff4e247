package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = "NONE"
	RecurrenceMonthly Recurrence = "MONTHLY"
	RecurrenceYearly  Recurrence = "YEARLY"
)

// ParseRecurrence accepts the stored representation, case-insensitively.
// An empty string is treated as RecurrenceNone.
func ParseRecurrence(s string) (Recurrence, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(RecurrenceNone):
		return RecurrenceNone, nil
	case string(RecurrenceMonthly):
		return RecurrenceMonthly, nil
	case string(RecurrenceYearly):
		return RecurrenceYearly, nil
	default:
		return "", fmt.Errorf("unknown recurrence %q", s)
	}
}

type Category string

const (
	CategoryBirthday    Category = "BIRTHDAY"
	CategoryAnniversary Category = "ANNIVERSARY"
	CategoryHoliday     Category = "HOLIDAY"
	CategoryOther       Category = "OTHER"
)

// Label returns the category as shown in reminder emails.
func (c Category) Label() string {
	switch c {
	case CategoryBirthday:
		return "Birthday"
	case CategoryAnniversary:
		return "Anniversary"
	case CategoryHoliday:
		return "Holiday"
	case "", CategoryOther:
		return "Other"
	default:
		s := strings.ToLower(string(c))
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// NormalizeRecurrence forces birthdays and anniversaries to recur yearly.
// Creation flows call this before persisting an event.
func NormalizeRecurrence(c Category, r Recurrence) Recurrence {
	if c == CategoryBirthday || c == CategoryAnniversary {
		return RecurrenceYearly
	}
	if r == "" {
		return RecurrenceNone
	}
	return r
}

type Event struct {
	EventID      string     `json:"event_id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Date         time.Time  `json:"date"` // Original occurrence, midnight UTC
	Recurrence   Recurrence `json:"recurrence"`
	Category     Category   `json:"category"`
	Notes        *string    `json:"notes"`
	Color        string     `json:"color"`
	ReminderTags []string   `json:"reminder_tags"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsRecurring returns true if this event repeats monthly or yearly
func (e *Event) IsRecurring() bool {
	return e.Recurrence == RecurrenceMonthly || e.Recurrence == RecurrenceYearly
}

// HasReminderTag reports whether the user asked to be reminded under tag.
func (e *Event) HasReminderTag(tag string) bool {
	return slices.Contains(e.ReminderTags, tag)
}

// HasNotes is false for both missing and blank notes.
func (e *Event) HasNotes() bool {
	return e.Notes != nil && strings.TrimSpace(*e.Notes) != ""
}
