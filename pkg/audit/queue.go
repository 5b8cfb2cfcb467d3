package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

// Deliverer sends an event somewhere durable, such as a guild's log channel.
type Deliverer interface {
	Deliver(ctx context.Context, e Event) error
}

// DelivererFunc adapts a function to a Deliverer.
type DelivererFunc func(ctx context.Context, e Event) error

func (f DelivererFunc) Deliver(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Queue is a Sink that delivers events in the background. Events are dropped when the buffer is full.
type Queue struct {
	l       *slog.Logger
	d       Deliverer
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan Event
	done   chan struct{}
}

// NewQueue creates a queue with the given buffer size and starts its worker.
func NewQueue(l *slog.Logger, d Deliverer, size int, timeout time.Duration) *Queue {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	q := &Queue{
		l:       l,
		d:       d,
		timeout: timeout,
		events:  make(chan Event, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) Publish(_ context.Context, e Event) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		EventsDropped.WithLabelValues(string(e.Kind)).Inc()
		return
	}

	select {
	case q.events <- e:
	default:
		EventsDropped.WithLabelValues(string(e.Kind)).Inc()
		q.l.Warn("Audit queue full, dropping event",
			slog.String("event_id", e.ID),
			slog.String(logging.KeyGuild, e.GuildID),
		)
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for e := range q.events {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := q.d.Deliver(ctx, e)
		cancel()

		if err != nil {
			EventsDelivered.WithLabelValues(string(e.Kind), "error").Inc()
			q.l.Error("Error delivering audit event",
				slog.String(logging.KeyError, err.Error()),
				slog.String("event_id", e.ID),
				slog.String(logging.KeyGuild, e.GuildID),
			)
			continue
		}
		EventsDelivered.WithLabelValues(string(e.Kind), "ok").Inc()
	}
}

// Close stops accepting events and waits for the buffered ones to be delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()

	<-q.done
}
