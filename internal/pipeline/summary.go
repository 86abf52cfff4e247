package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/hray3182/datekeeper/internal/lookahead"
)

const completedMessage = "Reminders processed"

// FailureDetail describes one (user, window) pair that got no email.
type FailureDetail struct {
	User     string `json:"user"`
	Error    string `json:"error"`
	Attempts int    `json:"attempts"`
}

// Summary is the outcome of one run across every window.
type Summary struct {
	RunID            uuid.UUID
	StartedAt        time.Time
	FinishedAt       time.Time
	TotalSent        int
	TotalFailures    int
	ProcessedWindows []lookahead.Tag
	// FailureDetails stays nil when nothing failed.
	FailureDetails []FailureDetail
}

// Response is the JSON body returned to whoever triggered the run.
type Response struct {
	Message                string          `json:"message"`
	TotalNotificationsSent int             `json:"totalNotificationsSent"`
	TotalFailures          int             `json:"totalFailures"`
	ProcessedReminderTypes []lookahead.Tag `json:"processedReminderTypes"`
	FailureDetails         []FailureDetail `json:"failureDetails,omitempty"`
}

func (s *Summary) Response() Response {
	resp := Response{
		Message:                completedMessage,
		TotalNotificationsSent: s.TotalSent,
		TotalFailures:          s.TotalFailures,
		ProcessedReminderTypes: s.ProcessedWindows,
	}
	if resp.ProcessedReminderTypes == nil {
		resp.ProcessedReminderTypes = []lookahead.Tag{}
	}
	if s.TotalFailures > 0 {
		resp.FailureDetails = s.FailureDetails
	}
	return resp
}
