package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrBufferFull is returned when an asynchronous publisher cannot enqueue.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher captures structured audit events. Synchronous publishers append
// straight to the store; asynchronous ones hand events to a Worker.
type Publisher struct {
	store  Store
	inbox  chan<- Event
	logger *slog.Logger
}

type Option func(p *Publisher)

// WithInbox makes Emit enqueue onto inbox instead of writing to the store.
func WithInbox(inbox chan<- Event) Option {
	return func(p *Publisher) {
		p.inbox = inbox
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event dropped",
				"action", event.Action,
				"session_id", event.SessionID,
			)
		}
		return ErrBufferFull
	}
}
