package memory

import (
	"context"
	"time"

	"github.com/hray3182/datekeeper/internal/lookahead"
	"github.com/hray3182/datekeeper/internal/models"
)

// Seed fills the store with a small demo dataset relative to now, so a
// -memory run has something due in every window.
func (s *Store) Seed(ctx context.Context, now time.Time) error {
	email := "demo@example.com"
	demo, err := s.AddUser(ctx, models.User{Email: &email, DisplayName: "Demo"})
	if err != nil {
		return err
	}
	if _, err := s.AddUser(ctx, models.User{DisplayName: "No Email"}); err != nil {
		return err
	}

	notes := "Book the restaurant"
	for _, w := range lookahead.All() {
		day := w.Interval(now).Start
		if _, err := s.AddEvent(ctx, models.Event{
			UserID:       demo.UserID,
			Name:         "Reminder demo " + string(w.Tag),
			Date:         day,
			Category:     models.CategoryOther,
			ReminderTags: []string{string(w.Tag)},
		}); err != nil {
			return err
		}
	}

	day := lookahead.WindowFor(7, now).Start
	_, err = s.AddEvent(ctx, models.Event{
		UserID:       demo.UserID,
		Name:         "Anniversary",
		Date:         day,
		Category:     models.CategoryAnniversary,
		Notes:        &notes,
		ReminderTags: []string{string(lookahead.OneWeek), string(lookahead.OneDay)},
	})
	return err
}
