package audit

import (
	"context"
	"log/slog"

	"baiki/pkg/requestcontext"
)

// Store is an append-only audit sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher enriches events from the request context, writes one structured
// log line per event, and appends them to the configured store. Audit failures
// are logged and never fail the calling operation.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

// NewPublisher creates a Publisher. A nil store means log-only.
func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger}
}

// Emit records the event.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx).UTC()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}

	p.logger.InfoContext(ctx, string(event.Action),
		"log_type", "audit",
		"category", event.Category,
		"user_id", event.UserID,
		"tenant_id", event.TenantID,
		"reason", event.Reason,
		"request_id", event.RequestID,
	)

	if p.store == nil {
		return
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to append audit event",
			"action", event.Action,
			"error", err,
			"request_id", event.RequestID,
		)
	}
}
