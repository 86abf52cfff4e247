package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hray3182/datekeeper/internal/models"
)

// clampFrom is the first day-of-month that does not exist in every month.
const clampFrom = 29

// ruleSpec describes a clamped day-of-month recurrence. Days past the end of
// a short month fall back to that month's last day, expressed in RFC 5545 as
// BYMONTHDAY=28,...,d;BYSETPOS=-1.
type ruleSpec struct {
	Freq       rrule.Frequency
	ByMonth    []int
	ByMonthDay []int
	BySetPos   []int
}

func newRuleSpec(freq rrule.Frequency, base time.Time) ruleSpec {
	spec := ruleSpec{Freq: freq}
	if freq == rrule.YEARLY {
		spec.ByMonth = []int{int(base.Month())}
	}

	day := base.Day()
	if day < clampFrom {
		spec.ByMonthDay = []int{day}
		return spec
	}
	for d := clampFrom - 1; d <= day; d++ {
		spec.ByMonthDay = append(spec.ByMonthDay, d)
	}
	spec.BySetPos = []int{-1}
	return spec
}

func (s ruleSpec) Build(dtstart time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{
		Freq:       s.Freq,
		Interval:   1,
		Dtstart:    dtstart,
		Bymonthday: s.ByMonthDay,
	}
	if len(s.ByMonth) > 0 {
		opt.Bymonth = s.ByMonth
	}
	if len(s.BySetPos) > 0 {
		opt.Bysetpos = s.BySetPos
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}
	return r, nil
}

func (s ruleSpec) String() string {
	var parts []string

	switch s.Freq {
	case rrule.MONTHLY:
		parts = append(parts, "FREQ=MONTHLY")
	case rrule.YEARLY:
		parts = append(parts, "FREQ=YEARLY")
	}

	if len(s.ByMonth) > 0 {
		parts = append(parts, "BYMONTH="+joinInts(s.ByMonth))
	}
	if len(s.ByMonthDay) > 0 {
		parts = append(parts, "BYMONTHDAY="+joinInts(s.ByMonthDay))
	}
	if len(s.BySetPos) > 0 {
		parts = append(parts, "BYSETPOS="+joinInts(s.BySetPos))
	}

	return strings.Join(parts, ";")
}

func joinInts(values []int) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return strings.Join(out, ",")
}

// RuleString returns the RFC 5545 RRULE for an event's recurrence, or an
// empty string for one-off events.
func RuleString(event *models.Event) string {
	switch event.Recurrence {
	case models.RecurrenceMonthly:
		return newRuleSpec(rrule.MONTHLY, event.Date).String()
	case models.RecurrenceYearly:
		return newRuleSpec(rrule.YEARLY, event.Date).String()
	default:
		return ""
	}
}

// ParseRule parses an RRULE produced by RuleString, anchored at dtstart.
func ParseRule(ruleStr string, dtstart time.Time) (*rrule.RRule, error) {
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}
	opt.Dtstart = civil(dtstart)
	return rrule.NewRRule(*opt)
}

// HumanReadable returns a short English description of a recurrence
func HumanReadable(r models.Recurrence) string {
	switch r {
	case models.RecurrenceMonthly:
		return "Every month"
	case models.RecurrenceYearly:
		return "Every year"
	default:
		return "One-time"
	}
}
