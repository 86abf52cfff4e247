package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/datekeeper/internal/models"
)

func TestRuleString(t *testing.T) {
	tests := []struct {
		name string
		ev   *models.Event
		want string
	}{
		{"one-off", event("a", Date(2026, time.May, 3), models.RecurrenceNone), ""},
		{"monthly short day", event("b", Date(2026, time.May, 3), models.RecurrenceMonthly), "FREQ=MONTHLY;BYMONTHDAY=3"},
		{"monthly clamped", event("c", Date(2026, time.May, 31), models.RecurrenceMonthly), "FREQ=MONTHLY;BYMONTHDAY=28,29,30,31;BYSETPOS=-1"},
		{"yearly leap day", event("d", Date(2000, time.February, 29), models.RecurrenceYearly), "FREQ=YEARLY;BYMONTH=2;BYMONTHDAY=28,29;BYSETPOS=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RuleString(tt.ev))
		})
	}
}

func TestParseRuleRoundTrip(t *testing.T) {
	ev := event("c", Date(2026, time.January, 30), models.RecurrenceMonthly)

	rule, err := ParseRule("RRULE:"+RuleString(ev), Date(2026, time.January, 1))
	require.NoError(t, err)

	got := rule.Between(Date(2026, time.February, 1), Date(2026, time.March, 31), true)
	require.Len(t, got, 2)
	assert.Equal(t, Date(2026, time.February, 28), got[0].UTC())
	assert.Equal(t, Date(2026, time.March, 30), got[1].UTC())
}

func TestParseRuleRejectsGarbage(t *testing.T) {
	_, err := ParseRule("FREQ=SOMETIMES", Date(2026, time.January, 1))
	require.Error(t, err)
}

func TestHumanReadable(t *testing.T) {
	assert.Equal(t, "Every month", HumanReadable(models.RecurrenceMonthly))
	assert.Equal(t, "Every year", HumanReadable(models.RecurrenceYearly))
	assert.Equal(t, "One-time", HumanReadable(models.RecurrenceNone))
}
