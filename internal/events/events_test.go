package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got BookingEventPayload
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		assert.Equal(t, EventBookingCreated, event.Type)
		assert.False(t, event.CreatedAt.IsZero())
		return json.Unmarshal(event.Payload, &got)
	})

	err := bus.PublishJSON(EventBookingCreated, BookingEventPayload{
		BookingID:   "bk-1",
		ClientPhone: "01011112222",
		Status:      "pending",
		TotalCost:   190000,
	})
	require.NoError(t, err)
	assert.Equal(t, "bk-1", got.BookingID)
	assert.Equal(t, int64(190000), got.TotalCost)
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	handler := func(event *Event) error {
		calls++
		return nil
	}
	bus.Subscribe(EventPayoutReady, handler)
	bus.Subscribe(EventPayoutReady, handler)

	require.NoError(t, bus.PublishJSON(EventPayoutReady, map[string]string{"booking_id": "bk-1"}))
	assert.Equal(t, 2, calls)
}

func TestSubscriberErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	delivered := false
	bus.Subscribe(EventStoryPosted, func(event *Event) error {
		return errors.New("handler failure")
	})
	bus.Subscribe(EventStoryPosted, func(event *Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventStoryPosted, map[string]string{"story_id": "st-1"}))
	assert.True(t, delivered)
}

func TestUnsubscribedTypeIsIgnored(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.PublishJSON(EventBookingCompleted, map[string]string{"booking_id": "bk-1"}))
}

func TestNilBusPublishIsNoOp(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
}
