package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/datekeeper/internal/database"
	"github.com/hray3182/datekeeper/internal/lookahead"
	"github.com/hray3182/datekeeper/internal/models"
)

const eventColumns = `e.event_id::text, e.user_id::text, e.name, e.event_date, e.recurrence,
	e.category, e.notes, e.color, e.reminder_tags, e.created_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	event.Recurrence = models.NormalizeRecurrence(event.Category, event.Recurrence)
	if event.Category == "" {
		event.Category = models.CategoryOther
	}
	if event.ReminderTags == nil {
		event.ReminderTags = []string{}
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO event (user_id, name, event_date, recurrence, category, notes, color, reminder_tags)
		 VALUES ($1::uuid, $2, $3::date, $4, $5, $6, $7, $8)
		 RETURNING event_id::text, created_at`,
		event.UserID, event.Name, dateParam(event.Date), event.Recurrence, event.Category,
		event.Notes, event.Color, event.ReminderTags,
	).Scan(&event.EventID, &event.CreatedAt)
}

// EventsByOwner returns every event of one user ordered by stored date.
func (r *EventRepository) EventsByOwner(ctx context.Context, userID string) ([]*models.Event, error) {
	key, err := userKey(userID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM event e WHERE e.user_id = $1::uuid
		 ORDER BY e.event_date ASC, e.name ASC`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("query events of %s: %w", userID, err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DueUsers returns the users owning at least one event whose stored date
// falls inside the interval and whose reminder tags contain tag. Only the
// matching events are attached. Recurring events match on their stored
// date only.
func (r *EventRepository) DueUsers(ctx context.Context, in lookahead.Interval, tag lookahead.Tag) ([]*models.DueUser, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT u.user_id::text, u.email, u.display_name, `+eventColumns+`
		 FROM event e
		 JOIN app_user u ON u.user_id = e.user_id
		 WHERE e.event_date BETWEEN $1::date AND $2::date
		   AND $3 = ANY(e.reminder_tags)
		 ORDER BY u.user_id, e.event_date, e.name`,
		dateParam(in.Start), dateParam(in.End), string(tag),
	)
	if err != nil {
		return nil, fmt.Errorf("query due events: %w", err)
	}
	defer rows.Close()

	var (
		due     []*models.DueUser
		current *models.DueUser
	)
	for rows.Next() {
		var (
			user  models.User
			event models.Event
		)
		if err := rows.Scan(&user.UserID, &user.Email, &user.DisplayName,
			&event.EventID, &event.UserID, &event.Name, &event.Date, &event.Recurrence,
			&event.Category, &event.Notes, &event.Color, &event.ReminderTags, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan due event: %w", err)
		}

		// Rows arrive ordered by user, so a change of id starts a new group.
		if current == nil || current.UserID != user.UserID {
			current = &models.DueUser{User: user}
			due = append(due, current)
		}
		current.Events = append(current.Events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read due events: %w", err)
	}
	return due, nil
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	event := &models.Event{}
	err := row.Scan(&event.EventID, &event.UserID, &event.Name, &event.Date, &event.Recurrence,
		&event.Category, &event.Notes, &event.Color, &event.ReminderTags, &event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return event, nil
}
