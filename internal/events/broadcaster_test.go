package events

import (
	"testing"
	"time"
)

func receive(t *testing.T, sub Subscriber) (Event, bool) {
	t.Helper()
	select {
	case e, ok := <-sub:
		return e, ok
	case <-time.After(100 * time.Millisecond):
		return Event{}, false
	}
}

func TestSubscriberCountTracksSubscriptions(t *testing.T) {
	initial := SubscriberCount()

	a := Subscribe()
	b := Subscribe("seed.")
	if got := SubscriberCount(); got != initial+2 {
		t.Fatalf("expected %d subscribers, got %d", initial+2, got)
	}

	Unsubscribe(a)
	Unsubscribe(a)
	if got := SubscriberCount(); got != initial+1 {
		t.Errorf("double unsubscribe changed the count: %d", got)
	}
	Unsubscribe(b)
	if got := SubscriberCount(); got != initial {
		t.Errorf("expected %d subscribers, got %d", initial, got)
	}
}

func TestBroadcastDeliversFields(t *testing.T) {
	sub := Subscribe()
	defer Unsubscribe(sub)

	Emit(LevelInfo, "fill.started", "", map[string]interface{}{"seed": "seed-1"})

	e, ok := receive(t, sub)
	if !ok {
		t.Fatal("timeout waiting for broadcast event")
	}
	if e.Name != "fill.started" || e.Fields["seed"] != "seed-1" {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestSubscribeFiltersByPrefix(t *testing.T) {
	sub := Subscribe("seed.", "mqtt.")
	defer Unsubscribe(sub)

	Emit(LevelDebug, "fill.sphere", "", nil)
	Emit(LevelInfo, "seed.generated", "", nil)

	e, ok := receive(t, sub)
	if !ok {
		t.Fatal("expected the seed event")
	}
	if e.Name != "seed.generated" {
		t.Errorf("filter let %s through", e.Name)
	}
	if _, ok := receive(t, sub); ok {
		t.Error("expected no further events")
	}
}

func TestRecentEventsWindowAndFilter(t *testing.T) {
	Clear()
	for i := 0; i < 10; i++ {
		Emit(LevelDebug, "fill.sphere", "", map[string]interface{}{"index": i})
	}
	Emit(LevelInfo, "seed.generated", "", nil)

	last := RecentEvents(3)
	if len(last) != 3 {
		t.Fatalf("expected 3 events, got %d", len(last))
	}
	if last[0].Fields["index"] != 8 || last[2].Name != "seed.generated" {
		t.Errorf("unexpected window %+v", last)
	}

	spheres := RecentEvents(0, "fill.")
	if len(spheres) != 10 {
		t.Errorf("expected 10 sphere events, got %d", len(spheres))
	}
	if all := RecentEvents(100); len(all) != 11 {
		t.Errorf("expected every buffered event, got %d", len(all))
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	Clear()
	sub := Subscribe()
	defer Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+10; i++ {
			Emit(LevelDebug, "fill.sphere", "", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full subscriber")
	}
	if got := DroppedCount(); got < 10 {
		t.Errorf("expected at least 10 dropped deliveries, got %d", got)
	}
}

func TestCloseAllSubscribers(t *testing.T) {
	a := Subscribe()
	b := Subscribe("fill.")

	CloseAllSubscribers()

	if SubscriberCount() != 0 {
		t.Errorf("expected no subscribers, got %d", SubscriberCount())
	}
	for _, sub := range []Subscriber{a, b} {
		if _, ok := <-sub; ok {
			t.Error("expected closed channel")
		}
	}
	// Handlers unsubscribe after shutdown; that must not panic.
	Unsubscribe(a)
}
