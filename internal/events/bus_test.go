package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestBus() *Bus {
	return NewBus(zerolog.New(nil).Level(zerolog.Disabled))
}

// TestSubscribe_TypedDelivery tests that handlers only see their event type.
func TestSubscribe_TypedDelivery(t *testing.T) {
	bus := newTestBus()

	var got []string
	bus.Subscribe(AlertsChanged, func(e *Event) {
		got = append(got, e.Data["alert_id"].(string))
	})

	bus.Emit(AlertsChanged, "test", map[string]interface{}{"alert_id": "a1"})
	bus.Emit(GroupsChanged, "test", map[string]interface{}{"group_id": "g1"})

	assert.Equal(t, []string{"a1"}, got)
}

// TestEmit_PopulatesEnvelope tests source and timestamp stamping.
func TestEmit_PopulatesEnvelope(t *testing.T) {
	bus := newTestBus()

	var event *Event
	bus.Subscribe(StateReset, func(e *Event) { event = e })

	bus.Emit(StateReset, "store", nil)

	assert.NotNil(t, event)
	assert.Equal(t, StateReset, event.Type)
	assert.Equal(t, "store", event.Source)
	assert.False(t, event.Timestamp.IsZero())
}

// TestSubscribeAll_ReceivesEverything tests the wildcard subscription and
// its unsubscribe function.
func TestSubscribeAll_ReceivesEverything(t *testing.T) {
	bus := newTestBus()

	count := 0
	unsubscribe := bus.SubscribeAll(func(*Event) { count++ })

	bus.Emit(AlertsChanged, "test", nil)
	bus.Emit(NotificationAdded, "test", nil)
	assert.Equal(t, 2, count)

	unsubscribe()
	bus.Emit(AlertsChanged, "test", nil)
	assert.Equal(t, 2, count, "unsubscribed handler sees nothing")
}

// TestUnsubscribe_Idempotent tests calling the unsubscribe function twice.
func TestUnsubscribe_Idempotent(t *testing.T) {
	bus := newTestBus()
	unsubscribe := bus.SubscribeAll(func(*Event) {})
	unsubscribe()
	unsubscribe()
}

// TestPanickingHandlerIsContained tests that a panicking handler does not
// take down the emitter or starve later handlers.
func TestPanickingHandlerIsContained(t *testing.T) {
	bus := newTestBus()

	delivered := false
	bus.Subscribe(AlertsChanged, func(*Event) { panic("boom") })
	bus.Subscribe(AlertsChanged, func(*Event) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Emit(AlertsChanged, "test", nil)
	})
	assert.True(t, delivered)
}
