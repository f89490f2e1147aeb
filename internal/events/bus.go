// Package events provides the in-process event bus that carries store
// change notifications to subscribed components (websocket push, toast
// lifecycle, aggregator rescheduling).
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a category of event
type EventType string

const (
	// AlertsChanged is emitted after any alert collection mutation
	AlertsChanged EventType = "alerts_changed"
	// NotificationAdded is emitted after a notification enters the feed
	NotificationAdded EventType = "notification_added"
	// NotificationDismissed is emitted after an explicit dismiss or overflow eviction
	NotificationDismissed EventType = "notification_dismissed"
	// NotificationRead is emitted after a notification is marked read
	NotificationRead EventType = "notification_read"
	// GroupsChanged is emitted after any group collection mutation
	GroupsChanged EventType = "groups_changed"
	// PreferencesChanged is emitted after a preferences update or reset
	PreferencesChanged EventType = "preferences_changed"
	// StateReset is emitted after a full reset
	StateReset EventType = "state_reset"
	// ToastSurfaced is emitted when the lifecycle controller surfaces a toast
	ToastSurfaced EventType = "toast_surfaced"
	// ToastCleared is emitted when a toast is dismissed, escalated or times out
	ToastCleared EventType = "toast_cleared"
)

// Event is a single emitted event with its payload
type Event struct {
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Handler processes a single event
type Handler func(event *Event)

// Bus is a synchronous publish/subscribe event bus.
// Handlers run on the emitting goroutine, so they must not block.
type Bus struct {
	handlers map[EventType][]Handler
	all      map[uint64]Handler
	nextID   uint64
	mu       sync.RWMutex
	log      zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		all:      make(map[uint64]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler that receives every event and returns
// a function that removes it again. Used by transient subscribers such as
// websocket clients.
func (b *Bus) SubscribeAll(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.all[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.all, id)
	}
}

// Emit dispatches an event to all matching handlers.
// A panicking handler is logged and does not take down the emitter.
func (b *Bus) Emit(eventType EventType, source string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[eventType])+len(b.all))
	handlers = append(handlers, b.handlers[eventType]...)
	for _, handler := range b.all {
		handlers = append(handlers, handler)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(event, handler)
	}
}

func (b *Bus) dispatch(event *Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("event_type", string(event.Type)).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	handler(event)
}
