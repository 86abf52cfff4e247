package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/hray3182/datekeeper/internal/models"
	"github.com/hray3182/datekeeper/internal/recurrence"
)

const dateLayout = "Monday, January 2, 2006"

// Reminder is everything needed to word one reminder email.
type Reminder struct {
	RecipientName string
	// WindowPhrase reads naturally after "upcoming", e.g. "tomorrow".
	WindowPhrase string
	// Day is the calendar day the reminder is about.
	Day    time.Time
	Events []*models.Event
}

type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

type Renderer struct {
	appURL string
}

// NewRenderer returns a renderer that links to appURL when it is set.
func NewRenderer(appURL string) *Renderer {
	return &Renderer{appURL: strings.TrimSpace(appURL)}
}

func (r *Renderer) Render(rem Reminder) (Rendered, error) {
	md := r.body(rem)

	htmlBody, err := ToHTML(md)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{
		Subject: subject(rem),
		Text:    Plain(md),
		HTML:    htmlBody,
	}, nil
}

func subject(rem Reminder) string {
	if len(rem.Events) == 1 {
		return fmt.Sprintf("Reminder: %s %s", rem.Events[0].Name, rem.WindowPhrase)
	}
	return fmt.Sprintf("Reminder: %d events %s", len(rem.Events), rem.WindowPhrase)
}

func (r *Renderer) body(rem Reminder) string {
	var b strings.Builder

	name := strings.TrimSpace(rem.RecipientName)
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", Escape(name))

	if len(rem.Events) == 1 {
		fmt.Fprintf(&b, "You have an upcoming event %s:\n\n", rem.WindowPhrase)
	} else {
		fmt.Fprintf(&b, "You have %d upcoming events %s:\n\n", len(rem.Events), rem.WindowPhrase)
	}

	for _, ev := range rem.Events {
		writeEvent(&b, ev, rem.Day)
		b.WriteString("\n")
	}

	if r.appURL != "" {
		fmt.Fprintf(&b, "[Open your calendar](%s)\n", r.appURL)
	}
	return b.String()
}

func writeEvent(b *strings.Builder, ev *models.Event, day time.Time) {
	fmt.Fprintf(b, "**%s**\n", Escape(ev.Name))
	fmt.Fprintf(b, "Date: %s\n", ev.Date.Format(dateLayout))
	fmt.Fprintf(b, "Category: %s\n", ev.Category.Label())

	if line := ageLine(ev, day); line != "" {
		b.WriteString(line + "\n")
	}
	if ev.HasNotes() {
		fmt.Fprintf(b, "Notes: %s\n", Escape(strings.TrimSpace(*ev.Notes)))
	}
}

func ageLine(ev *models.Event, day time.Time) string {
	if ev.Recurrence != models.RecurrenceYearly || day.IsZero() {
		return ""
	}

	n := recurrence.Age(ev.Date, day)
	if n <= 0 {
		return ""
	}

	switch ev.Category {
	case models.CategoryBirthday:
		return fmt.Sprintf("Turns %d", n)
	case models.CategoryAnniversary:
		if n == 1 {
			return "1 year"
		}
		return fmt.Sprintf("%d years", n)
	default:
		return ""
	}
}
