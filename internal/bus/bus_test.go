package bus

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishRunsHandlersInRegistrationOrder(t *testing.T) {
	b := New(nil)
	var order []int
	for i := 1; i <= 3; i++ {
		n := i
		b.Subscribe(PageChanged, func(Event) { order = append(order, n) })
	}

	b.Emit(PageChanged, "navigation", nil)

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestBus_PublishOnlyReachesMatchingName(t *testing.T) {
	b := New(nil)
	hits := 0
	b.Subscribe(StateChanged, func(Event) { hits++ })

	b.Emit(PageChanged, "", nil)
	assert.Equal(t, 0, hits)

	b.Emit(StateChanged, "", nil)
	assert.Equal(t, 1, hits)
}

func TestBus_PublishStampsTime(t *testing.T) {
	b := New(nil)
	var got Event
	b.Subscribe(AppReady, func(ev Event) { got = ev })

	b.Publish(Event{Name: AppReady})

	assert.False(t, got.At.IsZero())
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New(nil)
	hits := 0
	sub := b.Subscribe(PageChanged, func(Event) { hits++ })

	sub.Unsubscribe()
	sub.Unsubscribe()
	b.Emit(PageChanged, "", nil)

	assert.Equal(t, 0, hits)
	assert.Equal(t, 0, b.Count(PageChanged))
}

func TestBus_AliasDeliversCanonicalEventsToLegacySubscribers(t *testing.T) {
	b := New(nil)
	b.Alias("pageChanged", PageChanged)
	b.Alias("pageChanged", PageChanged)

	var legacy []Event
	b.Subscribe("pageChanged", func(ev Event) { legacy = append(legacy, ev) })

	b.Emit(PageChanged, "history", "profiles")

	if assert.Len(t, legacy, 1) {
		assert.Equal(t, PageChanged, legacy[0].Name)
		assert.Equal(t, "history", legacy[0].Reason)
		assert.Equal(t, "profiles", legacy[0].Payload)
	}
}

func TestBus_AliasIgnoresDegenerateInput(t *testing.T) {
	b := New(nil)
	b.Alias("", PageChanged)
	b.Alias(PageChanged, PageChanged)

	hits := 0
	b.Subscribe(PageChanged, func(Event) { hits++ })
	b.Emit(PageChanged, "", nil)

	assert.Equal(t, 1, hits)
}

func TestBus_PanickingHandlerDoesNotStopFanOut(t *testing.T) {
	var buf bytes.Buffer
	b := New(log.New(&buf, "", 0))
	reached := false
	b.Subscribe(Notification, func(Event) { panic("boom") })
	b.Subscribe(Notification, func(Event) { reached = true })

	assert.NotPanics(t, func() { b.Emit(Notification, "", nil) })
	assert.True(t, reached)
	assert.Contains(t, buf.String(), "panicked")
}

func TestBus_ReentrantPublish(t *testing.T) {
	b := New(nil)
	var seen []string
	b.Subscribe(StateChanged, func(ev Event) {
		seen = append(seen, "state")
		if ev.Reason == "first" {
			b.Emit(StateChanged, "second", nil)
		}
	})

	b.Emit(StateChanged, "first", nil)

	assert.Equal(t, []string{"state", "state"}, seen)
}

func TestBus_SubscribeDuringDeliveryDoesNotAffectCurrentEvent(t *testing.T) {
	b := New(nil)
	late := 0
	b.Subscribe(PageChanged, func(Event) {
		b.Subscribe(PageChanged, func(Event) { late++ })
	})

	b.Emit(PageChanged, "", nil)
	assert.Equal(t, 0, late)

	b.Emit(PageChanged, "", nil)
	assert.Equal(t, 1, late)
}

func TestBus_NilHandler(t *testing.T) {
	b := New(nil)
	sub := b.Subscribe(PageChanged, nil)
	assert.NotNil(t, sub)
	assert.Equal(t, 0, b.Count(PageChanged))
	assert.NotPanics(t, sub.Unsubscribe)
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "page.changed", Event{Name: PageChanged}.String())
	assert.Equal(t, "page.changed(history)", Event{Name: PageChanged, Reason: "history"}.String())
}
