// Package messaging implements the in-process event bus that carries
// domain events from command handlers to their subscribers.
package messaging

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEventBusClosed is returned when operations are attempted on a
	// closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrNilHandler is returned when a nil handler is subscribed.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrNilEvent is returned when a nil event is published.
	ErrNilEvent = errors.New("event cannot be nil")
)

// EventBusConfig contains configuration for the in-memory bus.
type EventBusConfig struct {
	// Async dispatches handlers on a bounded worker pool instead of
	// inline on the publisher's goroutine.
	Async bool

	// WorkerPoolSize bounds concurrent handler executions in async mode.
	WorkerPoolSize int

	Logger *slog.Logger
}

// DefaultEventBusConfig returns sensible defaults.
func DefaultEventBusConfig() EventBusConfig {
	return EventBusConfig{
		Async:          true,
		WorkerPoolSize: 10,
	}
}

// EventBus is an in-memory implementation of shared.EventPublisher with
// per-type and catch-all subscriptions. Suitable for single-instance
// deployments; handler failures are logged, never propagated to the
// publisher.
type EventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler

	async      bool
	workerPool chan struct{}
	logger     *slog.Logger

	published map[shared.EventType]int64

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewEventBus creates a new in-memory event bus.
func NewEventBus(cfg EventBusConfig) *EventBus {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 10
	}

	return &EventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		async:      cfg.Async,
		workerPool: make(chan struct{}, cfg.WorkerPoolSize),
		logger:     cfg.Logger,
		published:  make(map[shared.EventType]int64),
		closeCh:    make(chan struct{}),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *EventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debug("subscribed handler", "event_type", eventType, "handler", handler.Name())
	return nil
}

// SubscribeAll registers a handler for every event type.
func (b *EventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.allHandlers = append(b.allHandlers, handler)
	b.logger.Debug("subscribed catch-all handler", "handler", handler.Name())
	return nil
}

// Publish sends an event to all subscribed handlers.
func (b *EventBus) Publish(event shared.Event) error {
	if event == nil {
		return ErrNilEvent
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrEventBusClosed
	}
	b.published[event.EventType()]++

	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	b.mu.Unlock()

	if len(handlers) == 0 {
		b.logger.Debug("no handlers for event", "event_type", event.EventType())
		return nil
	}

	for _, handler := range handlers {
		if b.async {
			b.dispatchAsync(event, handler)
		} else {
			b.dispatch(event, handler)
		}
	}
	return nil
}

// PublishedCount returns how many events of the given type have been
// published since the bus was created.
func (b *EventBus) PublishedCount(eventType shared.EventType) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.published[eventType]
}

// Close stops accepting events and waits for in-flight handlers.
func (b *EventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("event bus closed")
	return nil
}

func (b *EventBus) dispatchAsync(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		select {
		case b.workerPool <- struct{}{}:
			defer func() { <-b.workerPool }()
		case <-b.closeCh:
			return
		}

		b.dispatch(event, handler)
	}()
}

func (b *EventBus) dispatch(event shared.Event, handler shared.EventHandler) {
	start := time.Now()
	if err := handler.Handle(event); err != nil {
		b.logger.Error("event handler failed",
			"event_type", event.EventType(),
			"handler", handler.Name(),
			"duration", time.Since(start),
			"error", err,
		)
	}
}
