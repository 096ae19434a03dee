package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesPublishedEvent(t *testing.T) {
	b := NewEventBus()

	var mu sync.Mutex
	var got []Event
	b.Subscribe(EventTypeWakeDetected, func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	b.PublishSync(Event{Type: EventTypeWakeDetected, Data: map[string]any{"heard": "hey ziggy"}})
	b.PublishSync(Event{Type: EventTypeBargeIn})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1, "handler only sees its own event type")
	assert.Equal(t, "hey ziggy", got[0].Data["heard"])
}

func TestSubscribeMultipleCoversWholeStream(t *testing.T) {
	b := NewEventBus()

	var mu sync.Mutex
	seen := make(map[EventType]int)
	b.SubscribeMultiple(Types(), func(ev Event) {
		mu.Lock()
		seen[ev.Type]++
		mu.Unlock()
	})

	for _, et := range Types() {
		b.PublishSync(Event{Type: et})
	}

	mu.Lock()
	defer mu.Unlock()
	for _, et := range Types() {
		assert.Equal(t, 1, seen[et], "event type %s reached the subscriber", et)
	}
}

func TestClearDropsHandlers(t *testing.T) {
	b := NewEventBus()

	calls := 0
	b.Subscribe(EventTypeShutdown, func(Event) { calls++ })
	b.Clear()
	b.PublishSync(Event{Type: EventTypeShutdown})

	assert.Zero(t, calls)
}
