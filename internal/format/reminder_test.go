package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/datekeeper/internal/models"
)

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRenderSingleEvent(t *testing.T) {
	r := NewRenderer("https://dates.example.com")

	out, err := r.Render(Reminder{
		RecipientName: "Ada",
		WindowPhrase:  "tomorrow",
		Day:           day(2026, time.October, 16),
		Events: []*models.Event{{
			EventID:  "e1",
			Name:     "Team offsite",
			Date:     day(2026, time.October, 16),
			Category: models.CategoryOther,
			Notes:    strPtr("Bring laptop"),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Reminder: Team offsite tomorrow", out.Subject)
	assert.Contains(t, out.Text, "Hi Ada,")
	assert.Contains(t, out.Text, "You have an upcoming event tomorrow:")
	assert.Contains(t, out.Text, "Team offsite")
	assert.Contains(t, out.Text, "Date: Friday, October 16, 2026")
	assert.Contains(t, out.Text, "Category: Other")
	assert.Contains(t, out.Text, "Notes: Bring laptop")
	assert.Contains(t, out.Text, "https://dates.example.com")
	assert.NotContains(t, out.Text, "**")

	assert.Contains(t, out.HTML, "<strong>Team offsite</strong>")
	assert.Contains(t, out.HTML, `href="https://dates.example.com"`)
}

func TestRenderOmitsMissingNotes(t *testing.T) {
	r := NewRenderer("")

	out, err := r.Render(Reminder{
		WindowPhrase: "in 3 days",
		Events: []*models.Event{
			{Name: "No notes", Date: day(2026, time.October, 18), Category: models.CategoryHoliday},
			{Name: "Blank notes", Date: day(2026, time.October, 18), Notes: strPtr("   ")},
		},
	})
	require.NoError(t, err)

	for _, part := range []string{out.Subject, out.Text, out.HTML} {
		assert.NotContains(t, part, "null")
		assert.NotContains(t, part, "Notes:")
	}
	assert.Equal(t, "Reminder: 2 events in 3 days", out.Subject)
	assert.Contains(t, out.Text, "Hi there,")
	assert.Contains(t, out.Text, "You have 2 upcoming events in 3 days:")
	assert.NotContains(t, out.HTML, "Open your calendar")
}

func TestRenderAgeLines(t *testing.T) {
	r := NewRenderer("")
	onDay := day(2026, time.October, 22)

	out, err := r.Render(Reminder{
		WindowPhrase: "in 1 week",
		Day:          onDay,
		Events: []*models.Event{
			{Name: "Mom", Date: day(1966, time.October, 22), Recurrence: models.RecurrenceYearly, Category: models.CategoryBirthday},
			{Name: "Wedding", Date: day(2016, time.October, 22), Recurrence: models.RecurrenceYearly, Category: models.CategoryAnniversary},
			{Name: "First date", Date: day(2025, time.October, 22), Recurrence: models.RecurrenceYearly, Category: models.CategoryAnniversary},
			{Name: "Born later", Date: day(2030, time.October, 22), Recurrence: models.RecurrenceYearly, Category: models.CategoryBirthday},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out.Text, "Turns 60")
	assert.Contains(t, out.Text, "10 years")
	assert.Contains(t, out.Text, "1 year\n")
	assert.NotContains(t, out.Text, "Turns 0")
	assert.NotContains(t, out.Text, "Turns -")
}

func TestRenderSkipsAgeOnStoredDate(t *testing.T) {
	r := NewRenderer("")
	stored := day(1990, time.October, 16)

	out, err := r.Render(Reminder{
		WindowPhrase: "tomorrow",
		Day:          stored,
		Events: []*models.Event{
			{Name: "Dad", Date: stored, Recurrence: models.RecurrenceYearly, Category: models.CategoryBirthday},
			{Name: "Wedding", Date: stored, Recurrence: models.RecurrenceYearly, Category: models.CategoryAnniversary},
		},
	})
	require.NoError(t, err)

	assert.NotContains(t, out.Text, "Turns")
	assert.NotContains(t, out.Text, "year")
}

func TestRenderEscapesUserText(t *testing.T) {
	r := NewRenderer("")

	out, err := r.Render(Reminder{
		RecipientName: "<script>",
		WindowPhrase:  "tomorrow",
		Events: []*models.Event{{
			Name:  "**not bold** <b>x</b>",
			Date:  day(2026, time.October, 16),
			Notes: strPtr("[link](http://evil.example)"),
		}},
	})
	require.NoError(t, err)

	assert.NotContains(t, out.HTML, "<script>")
	assert.NotContains(t, out.HTML, "<b>x</b>")
	assert.NotContains(t, out.HTML, `href="http://evil.example"`)
	assert.Contains(t, out.Text, "**not bold** <b>x</b>")
	assert.True(t, strings.Contains(out.Text, "Notes: [link](http://evil.example)"))
}

func TestToHTML(t *testing.T) {
	html, err := ToHTML("**bold**\nnext line")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>bold</strong><br>")
}
