// internal/service/event_publisher.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"example.com/backstage/services/assets/internal/messaging"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventPublisher drains lifecycle events to the message broker without
// blocking request handling. Delivery is best-effort: failures are logged
// and the event dropped.
type EventPublisher struct {
	messagingClient messaging.ServiceBusClient
	log             *logrus.Logger
	workers         int
	queue           chan messaging.Event
	wg              sync.WaitGroup
	ctx             context.Context
	cancel          context.CancelFunc
}

// NewEventPublisher creates a new publisher with a worker pool
func NewEventPublisher(
	messagingClient messaging.ServiceBusClient,
	log *logrus.Logger,
	workers int,
) *EventPublisher {
	ctx, cancel := context.WithCancel(context.Background())
	ep := &EventPublisher{
		messagingClient: messagingClient,
		log:             log,
		workers:         workers,
		queue:           make(chan messaging.Event, 1000),
		ctx:             ctx,
		cancel:          cancel,
	}

	// Start worker pool
	ep.startWorkers()

	ep.log.Infof("Started event publisher with %d workers", workers)

	return ep
}

// startWorkers launches the worker goroutines
func (ep *EventPublisher) startWorkers() {
	for i := 0; i < ep.workers; i++ {
		ep.wg.Add(1)
		go ep.worker(i)
	}
}

// worker publishes events from the queue
func (ep *EventPublisher) worker(id int) {
	defer ep.wg.Done()

	for {
		select {
		case <-ep.ctx.Done():
			return
		case evt, ok := <-ep.queue:
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			sessionID := fmt.Sprintf("%s-%d", evt.Kind, evt.EntityID)
			if err := ep.messagingClient.SendMessage(ctx, evt, sessionID); err != nil {
				ep.log.WithError(err).WithFields(logrus.Fields{
					"worker": id,
					"kind":   evt.Kind,
					"entity": evt.EntityID,
				}).Warn("Failed to publish lifecycle event")
			}
			cancel()
		}
	}
}

// Enqueue queues an event for publishing. A full queue returns an error
// instead of blocking the caller.
func (ep *EventPublisher) Enqueue(kind, actor string, entityID uint, payload map[string]any) error {
	evt := messaging.Event{
		ID:         uuid.New().String(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		Actor:      actor,
		EntityID:   entityID,
		Payload:    payload,
	}

	select {
	case ep.queue <- evt:
		return nil
	default:
		return fmt.Errorf("event queue is full (capacity %d)", cap(ep.queue))
	}
}

// QueueStats returns statistics about the publisher queue
func (ep *EventPublisher) QueueStats() map[string]interface{} {
	return map[string]interface{}{
		"queue_length":   len(ep.queue),
		"queue_capacity": cap(ep.queue),
		"workers":        ep.workers,
	}
}

// Stop shuts the publisher down, waiting for in-flight sends to finish
func (ep *EventPublisher) Stop() {
	ep.cancel()
	ep.wg.Wait()
}
