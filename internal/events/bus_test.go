package events

import (
	"sync"
	"testing"
	"time"
)

// collector gathers events delivered on subscriber goroutines
type collector struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
	want   int
}

func newCollector(want int) *collector {
	return &collector{done: make(chan struct{}), want: want}
}

func (c *collector) handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	if len(c.events) == c.want {
		close(c.done)
	}
}

func (c *collector) wait(t *testing.T) []Event {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for events, got %d of %d", len(c.events), c.want)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewEventBus()
	c := newCollector(1)
	bus.Subscribe(EventReportCreated, c.handle)

	bus.PublishReportDeleted(9)
	bus.PublishReportCreated(1, 42, "2025-06-01", "morning")

	got := c.wait(t)
	if got[0].Type != EventReportCreated {
		t.Errorf("event type = %s, want %s", got[0].Type, EventReportCreated)
	}
	if got[0].Data["report_id"] != int64(1) {
		t.Errorf("report_id = %v, want 1", got[0].Data["report_id"])
	}
	if got[0].Timestamp.IsZero() {
		t.Error("expected Publish to stamp the event")
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewEventBus()
	c := newCollector(3)
	bus.SubscribeAll(c.handle)

	bus.PublishOrdersUploaded("bybit", "export.csv", 10, 8, 2)
	bus.PublishOrdersLinked(1, 42, 8)
	bus.PublishError("ingest", "boom")

	got := c.wait(t)
	seen := make(map[EventType]bool, len(got))
	for _, e := range got {
		seen[e.Type] = true
	}
	for _, want := range []EventType{EventOrdersUploaded, EventOrdersLinked, EventError} {
		if !seen[want] {
			t.Errorf("missing event type %s", want)
		}
	}
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	bus := NewEventBus()
	release := make(chan struct{})
	bus.Subscribe(EventScamRecorded, func(Event) { <-release })

	done := make(chan struct{})
	go func() {
		bus.PublishScamRecorded(1, 42, 150.0, true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
	close(release)
}
