package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated      = "booking_created"
	EventBookingApproved     = "booking_approved"
	EventBookingRejected     = "booking_rejected"
	EventPaymentConfirmed    = "payment_confirmed"
	EventBookingCompleted    = "booking_completed"
	EventPartnerAssigned     = "partner_assigned"
	EventPayoutReady         = "payout_ready"
	EventPayoutCompleted     = "payout_completed"
	EventAdjustmentRequested = "adjustment_requested"
	EventAdjustmentResolved  = "adjustment_resolved"
	EventStoryPosted         = "story_posted"
)

// BookingEventPayload is the minimal booking snapshot event consumers see.
type BookingEventPayload struct {
	BookingID   string `json:"booking_id"`
	ClientPhone string `json:"client_phone"`
	ClientName  string `json:"client_name"`
	MimiPhone   string `json:"mimi_phone,omitempty"`
	MimiName    string `json:"mimi_name,omitempty"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	TotalCost   int64  `json:"total_cost"`
	Payout      int64  `json:"payout,omitempty"`
	ChangedBy   string `json:"changed_by,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
