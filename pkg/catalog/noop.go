package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful for testing or when lifecycle notifications are not needed
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) ContentCreated(ctx context.Context, content *Content) error {
	return nil
}

func (n *NoopEventSink) ContentUpdated(ctx context.Context, content *Content) error {
	return nil
}

func (n *NoopEventSink) ContentDeleted(ctx context.Context, contentID uuid.UUID) error {
	return nil
}

func (n *NoopEventSink) WatchlistChanged(ctx context.Context, userID uuid.UUID, watchlist []WatchlistEntry) error {
	return nil
}

// LogEventSink writes lifecycle notifications to a structured logger
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink logging at info level. A nil logger
// uses slog.Default().
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger.With("component", "events")}
}

func (l *LogEventSink) ContentCreated(ctx context.Context, content *Content) error {
	l.logger.InfoContext(ctx, "Content created", "content_id", content.ID, "title", content.Title)
	return nil
}

func (l *LogEventSink) ContentUpdated(ctx context.Context, content *Content) error {
	l.logger.InfoContext(ctx, "Content updated", "content_id", content.ID, "title", content.Title)
	return nil
}

func (l *LogEventSink) ContentDeleted(ctx context.Context, contentID uuid.UUID) error {
	l.logger.InfoContext(ctx, "Content deleted", "content_id", contentID)
	return nil
}

func (l *LogEventSink) WatchlistChanged(ctx context.Context, userID uuid.UUID, watchlist []WatchlistEntry) error {
	l.logger.InfoContext(ctx, "Watchlist changed", "user_id", userID, "entries", len(watchlist))
	return nil
}
