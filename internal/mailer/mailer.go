// Package mailer is the outbound email boundary. A Transport sends exactly
// one message and reports either a receipt or an error.
package mailer

import (
	"context"
	"errors"
)

type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Receipt identifies an accepted message.
type Receipt struct {
	MessageID string
}

type Transport interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// RejectedError is returned when the mail service answered but refused the
// message, as opposed to failing to reach it.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return "message rejected"
	}
	return e.Reason
}

// IsRejected reports whether err is an application-level rejection.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}
