// Package memory holds users and events in process memory. It backs
// -memory runs and tests that do not need Postgres.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hray3182/datekeeper/internal/lookahead"
	"github.com/hray3182/datekeeper/internal/models"
)

type Store struct {
	mu     sync.RWMutex
	users  map[string]models.User
	events []models.Event
}

func NewStore() *Store {
	return &Store{users: make(map[string]models.User)}
}

// AddUser stores u, assigning an ID when it has none.
func (s *Store) AddUser(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	if u.Email != nil {
		email := *u.Email
		u.Email = &email
	}
	s.users[u.UserID] = u
	return u, nil
}

// AddEvent stores e for an existing user. The date is truncated to its
// UTC calendar day, matching what a DATE column would keep.
func (s *Store) AddEvent(_ context.Context, e models.Event) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[e.UserID]; !ok {
		return models.Event{}, fmt.Errorf("add event %q: unknown user %q", e.Name, e.UserID)
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.Category == "" {
		e.Category = models.CategoryOther
	}
	e.Recurrence = models.NormalizeRecurrence(e.Category, e.Recurrence)
	e.Date = utcDay(e.Date)
	e.ReminderTags = append([]string(nil), e.ReminderTags...)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	s.events = append(s.events, e)
	return e, nil
}

// DueUsers matches events on their stored date, like the Postgres adapter.
func (s *Store) DueUsers(_ context.Context, in lookahead.Interval, tag lookahead.Tag) ([]*models.DueUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grouped := make(map[string]*models.DueUser)
	for i := range s.events {
		e := s.events[i]
		if !e.HasReminderTag(string(tag)) || !in.Contains(e.Date) {
			continue
		}
		u, ok := s.users[e.UserID]
		if !ok {
			continue
		}
		due, ok := grouped[u.UserID]
		if !ok {
			due = &models.DueUser{User: u}
			grouped[u.UserID] = due
		}
		due.Events = append(due.Events, cloneEvent(e))
	}

	out := make([]*models.DueUser, 0, len(grouped))
	for _, due := range grouped {
		sortEvents(due.Events)
		out = append(out, due)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Store) UserByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *Store) EventsByOwner(_ context.Context, userID string) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Event
	for i := range s.events {
		if s.events[i].UserID == userID {
			out = append(out, cloneEvent(s.events[i]))
		}
	}
	sortEvents(out)
	return out, nil
}

func cloneEvent(e models.Event) *models.Event {
	e.ReminderTags = append([]string(nil), e.ReminderTags...)
	if e.Notes != nil {
		notes := *e.Notes
		e.Notes = &notes
	}
	return &e
}

func sortEvents(events []*models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Name < events[j].Name
	})
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
