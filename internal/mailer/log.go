package mailer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hray3182/datekeeper/internal/logging"
)

// LogTransport writes messages to the log instead of sending them.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logging.OrDiscard(logger)}
}

func (t *LogTransport) Send(ctx context.Context, m Message) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	id := uuid.NewString()
	t.logger.Info("mail not sent (log transport)",
		"message_id", id,
		"to", m.To,
		"subject", m.Subject,
		"body", m.Text,
	)
	return Receipt{MessageID: id}, nil
}
