// Package worker runs background delivery of ticket notifications so that a
// slow webhook or Redis never holds up a ticket operation.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/diario-de-bordo/internal/events"
	"github.com/spec-kit/diario-de-bordo/internal/service"
)

const (
	defaultQueueSize       = 64
	defaultDeliveryTimeout = 10 * time.Second
)

// NotificationWorker queues dispatched events and delivers them on a single
// goroutine, in publication order.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
	timeout       time.Duration
	wg            sync.WaitGroup
}

// NewNotificationWorker builds a worker with the given queue size.
func NewNotificationWorker(notifications *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan events.Event, queueSize),
		timeout:       defaultDeliveryTimeout,
	}
}

// StartNotificationWorker subscribes the worker to dispatcher and starts the
// delivery loop. It stops when ctx is cancelled; Wait blocks until then.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	if notifications == nil || dispatcher == nil {
		return nil
	}
	w := NewNotificationWorker(notifications, logger, defaultQueueSize)
	for _, eventType := range notifications.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
	w.wg.Add(1)
	go w.run(ctx)
	return w
}

// Wait blocks until the delivery loop has exited.
func (w *NotificationWorker) Wait() {
	if w == nil {
		return
	}
	w.wg.Wait()
}

// enqueue never blocks the publisher; a full queue drops the event.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
	}
	return nil
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.queue:
			w.deliver(ctx, event)
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	deliveryCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.notifications.Handle(deliveryCtx, event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
