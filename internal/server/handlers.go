package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hray3182/datekeeper/internal/models"
	"github.com/hray3182/datekeeper/internal/pipeline"
	"github.com/hray3182/datekeeper/internal/recurrence"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRunReminders(c *gin.Context) {
	// A caller hanging up must not cut a batch off halfway.
	ctx := context.WithoutCancel(c.Request.Context())

	sum, err := s.runner.Run(ctx)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "Reminder run already in progress"})
		return
	}
	if err != nil {
		s.logger.Error("reminder run failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, sum.Response())
}

// Monthly expansion starts at January 1 of the year, which rrule-go cannot
// represent for year 1.
const (
	minYear = 2
	maxYear = 9999
)

type occurrenceJSON struct {
	ID           string            `json:"id"`
	EventID      string            `json:"eventId"`
	Name         string            `json:"name"`
	Date         string            `json:"date"`
	OriginalDate string            `json:"originalDate"`
	Category     models.Category   `json:"category"`
	Recurrence   models.Recurrence `json:"recurrence"`
	Repeats      string            `json:"repeats"`
	RRule        string            `json:"rrule,omitempty"`
	Age          *int              `json:"age,omitempty"`
	Color        string            `json:"color,omitempty"`
}

func (s *Server) handleOccurrences(c *gin.Context) {
	userID := c.Param("id")
	today := s.now().UTC()

	year := today.Year()
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < minYear || y > maxYear {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be between 2 and 9999"})
			return
		}
		year = y
	}

	if _, err := s.dir.UserByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		s.logger.Error("look up user failed", "user_id", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	events, err := s.dir.EventsByOwner(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("list events failed", "user_id", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := make([]occurrenceJSON, 0, len(events))
	for _, ev := range events {
		occs, err := recurrence.Expand(ev, year, today)
		if err != nil {
			s.logger.Error("expand event failed", "event_id", ev.EventID, "year", year, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		for _, o := range occs {
			out = append(out, toJSON(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	c.JSON(http.StatusOK, gin.H{"year": year, "occurrences": out})
}

func toJSON(o recurrence.Occurrence) occurrenceJSON {
	ev := o.Event
	j := occurrenceJSON{
		ID:           o.ID,
		EventID:      ev.EventID,
		Name:         ev.Name,
		Date:         o.Date.Format(time.DateOnly),
		OriginalDate: o.OriginalDate.Format(time.DateOnly),
		Category:     ev.Category,
		Recurrence:   ev.Recurrence,
		Repeats:      recurrence.HumanReadable(ev.Recurrence),
		RRule:        recurrence.RuleString(ev),
		Color:        ev.Color,
	}
	if ev.Recurrence == models.RecurrenceYearly {
		age := o.Age()
		j.Age = &age
	}
	return j
}
