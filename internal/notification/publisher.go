package notification

import (
	"context"
	"log/slog"
)

// Publisher delivers ledger events somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// LogPublisher writes events to the structured log. It is used when no
// broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event
func (p *LogPublisher) Publish(ctx context.Context, event *Event) error {
	p.logger.InfoContext(ctx, "ledger event",
		"type", event.Type,
		"group", event.GroupName,
		"message", event.Message,
		"debts", len(event.Debts),
	)
	return nil
}

// Close is a no-op
func (p *LogPublisher) Close() error {
	return nil
}
