package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/events"
)

// Handler processes one event off the queue.
type Handler func(context.Context, events.Event) error

// NotificationWorker decouples request handling from notification delivery:
// ledger events are queued and processed by a single background goroutine.
// When the queue is full the event is dropped rather than blocking a request.
type NotificationWorker struct {
	queue   chan events.Event
	handler Handler
	logger  *zap.Logger

	wg   sync.WaitGroup
	once sync.Once
}

// NewNotificationWorker builds the worker.
func NewNotificationWorker(handler Handler, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &NotificationWorker{
		queue:   make(chan events.Event, queueSize),
		handler: handler,
		logger:  logger,
	}
}

// Subscribe registers the worker's enqueue on the dispatcher for the given
// event types.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher, types ...events.EventType) {
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			w.Enqueue(event)
			return nil
		})
	}
}

// Enqueue adds an event to the queue, dropping it if the queue is full.
func (w *NotificationWorker) Enqueue(event events.Event) {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("transaction_id", event.TransactionID),
		)
	}
}

// Start runs the processing loop until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-w.queue:
				if err := w.handler(ctx, event); err != nil {
					w.logger.Error("notification handling failed",
						zap.String("event_type", string(event.Type)),
						zap.String("transaction_id", event.TransactionID),
						zap.Error(err),
					)
				}
			}
		}
	}()
}

// Stop waits for the processing loop to finish. Cancel the context passed to
// Start before calling it.
func (w *NotificationWorker) Stop() {
	w.once.Do(func() {
		w.wg.Wait()
	})
}
