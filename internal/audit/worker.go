package audit

import (
	"context"
	"errors"
	"log/slog"
)

// ErrQueueFull is returned by Queue.Append when the buffer is saturated.
var ErrQueueFull = errors.New("audit queue full")

// Queue decouples request latency from the audit sink. Append enqueues;
// a Worker drains the queue into the underlying store.
type Queue struct {
	inbox chan Event
}

// NewQueue creates a Queue with the given buffer size.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1024
	}
	return &Queue{inbox: make(chan Event, size)}
}

// Append enqueues without blocking.
func (q *Queue) Append(_ context.Context, event Event) error {
	select {
	case q.inbox <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Worker consumes audit events from a queue and persists them.
type Worker struct {
	store  Store
	queue  *Queue
	logger *slog.Logger
}

func NewWorker(store Store, queue *Queue, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, queue: queue, logger: logger}
}

// Run drains the queue until ctx is cancelled, then flushes what is buffered.
// Sink failures are logged and the event is dropped.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.queue.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.queue.inbox:
			w.append(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "audit sink append failed",
			"action", event.Action,
			"error", err,
			"request_id", event.RequestID,
		)
	}
}
