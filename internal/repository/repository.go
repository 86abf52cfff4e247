// Package repository is the Postgres-backed data access layer.
package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hray3182/datekeeper/internal/models"
)

// Dates are passed as text so the session time zone cannot shift them.
const sqlDate = "2006-01-02"

func dateParam(t time.Time) string {
	return t.UTC().Format(sqlDate)
}

// userKey normalizes a user id for comparison against the uuid column. An id
// that is not a uuid cannot match any row.
func userKey(userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", fmt.Errorf("user %q: %w", userID, models.ErrNotFound)
	}
	return id.String(), nil
}
