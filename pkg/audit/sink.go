package audit

import (
	"context"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

// Sink receives lifecycle events. Publish must not block the caller on delivery.
type Sink interface {
	Publish(ctx context.Context, e Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, e Event)

func (f SinkFunc) Publish(ctx context.Context, e Event) {
	f(ctx, e)
}

// LogSink writes events to a logger.
type LogSink struct {
	l *slog.Logger
}

// NewLogSink creates a sink that logs every event at info level.
func NewLogSink(l *slog.Logger) *LogSink {
	return &LogSink{l: l}
}

func (s *LogSink) Publish(ctx context.Context, e Event) {
	s.l.InfoContext(ctx, "Ticket "+string(e.Kind),
		slog.String("event_id", e.ID),
		slog.String(logging.KeyGuild, e.GuildID),
		slog.String(logging.KeyChannel, e.ChannelID),
		slog.String("type", e.TypeName),
		slog.Int64("number", e.Number),
		slog.String("owner_id", e.OwnerID),
		slog.String("claimed_by", e.ClaimedBy),
		slog.String("closed_by", e.ClosedBy),
		slog.Duration("open_for", e.OpenFor),
	)
}

// Multi fans an event out to several sinks.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, e Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(ctx, e)
		}
	}
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) {})
