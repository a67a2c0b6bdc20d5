package events

import (
	"sync"
	"time"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventReportCreated  EventType = "REPORT_CREATED"
	EventReportUpdated  EventType = "REPORT_UPDATED"
	EventReportDeleted  EventType = "REPORT_DELETED"
	EventOrdersUploaded EventType = "ORDERS_UPLOADED"
	EventOrdersLinked   EventType = "ORDERS_LINKED"
	EventBalanceUpdate  EventType = "BALANCE_UPDATE"
	EventScamRecorded   EventType = "SCAM_RECORDED"
	EventError          EventType = "ERROR"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// EventBus manages event publishing and subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		allSubs:     make([]Subscriber, 0),
	}
}

// Subscribe registers a subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish sends an event to all subscribers. Subscribers run in their own
// goroutines so a slow consumer cannot block the publisher.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			go sub(event)
		}
	}
	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishReportCreated publishes a report created event
func (eb *EventBus) PublishReportCreated(reportID, employeeID int64, shiftDate, shiftType string) {
	eb.Publish(Event{
		Type: EventReportCreated,
		Data: map[string]interface{}{
			"report_id":   reportID,
			"employee_id": employeeID,
			"shift_date":  shiftDate,
			"shift_type":  shiftType,
		},
	})
}

// PublishReportUpdated publishes a report updated event
func (eb *EventBus) PublishReportUpdated(reportID, employeeID int64) {
	eb.Publish(Event{
		Type: EventReportUpdated,
		Data: map[string]interface{}{
			"report_id":   reportID,
			"employee_id": employeeID,
		},
	})
}

// PublishReportDeleted publishes a report deleted event
func (eb *EventBus) PublishReportDeleted(reportID int64) {
	eb.Publish(Event{
		Type: EventReportDeleted,
		Data: map[string]interface{}{
			"report_id": reportID,
		},
	})
}

// PublishOrdersUploaded publishes an upload summary event
func (eb *EventBus) PublishOrdersUploaded(platform, filename string, parsed, created, skipped int) {
	eb.Publish(Event{
		Type: EventOrdersUploaded,
		Data: map[string]interface{}{
			"platform": platform,
			"filename": filename,
			"parsed":   parsed,
			"created":  created,
			"skipped":  skipped,
		},
	})
}

// PublishOrdersLinked publishes a link pass result
func (eb *EventBus) PublishOrdersLinked(reportID, employeeID int64, linked int) {
	eb.Publish(Event{
		Type: EventOrdersLinked,
		Data: map[string]interface{}{
			"report_id":   reportID,
			"employee_id": employeeID,
			"linked":      linked,
		},
	})
}

// PublishScamRecorded publishes a scam recorded event
func (eb *EventBus) PublishScamRecorded(reportID, employeeID int64, amount float64, personal bool) {
	eb.Publish(Event{
		Type: EventScamRecorded,
		Data: map[string]interface{}{
			"report_id":   reportID,
			"employee_id": employeeID,
			"amount":      amount,
			"personal":    personal,
		},
	})
}

// PublishError publishes an error event
func (eb *EventBus) PublishError(component, message string) {
	eb.Publish(Event{
		Type: EventError,
		Data: map[string]interface{}{
			"component": component,
			"message":   message,
		},
	})
}
