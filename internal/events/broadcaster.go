package events

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Subscriber receives events. Slow subscribers miss events rather than
// stall Emit.
type Subscriber chan Event

const subscriberBuffer = 64

// filter selects events by name prefix, e.g. "fill." or "seed.". An empty
// filter accepts everything.
type filter []string

func (f filter) accepts(name string) bool {
	if len(f) == 0 {
		return true
	}
	for _, prefix := range f {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

type hub struct {
	mu      sync.RWMutex
	subs    map[Subscriber]filter
	dropped atomic.Int64
}

var subscribers = &hub{subs: make(map[Subscriber]filter)}

// Subscribe registers a subscriber for events whose names start with one of
// prefixes, or for every event when none are given.
func Subscribe(prefixes ...string) Subscriber {
	ch := make(Subscriber, subscriberBuffer)
	subscribers.mu.Lock()
	subscribers.subs[ch] = filter(prefixes)
	subscribers.mu.Unlock()
	return ch
}

// Unsubscribe removes sub and closes it. Unsubscribing twice is a no-op.
func Unsubscribe(sub Subscriber) {
	subscribers.mu.Lock()
	defer subscribers.mu.Unlock()
	if _, ok := subscribers.subs[sub]; !ok {
		return
	}
	delete(subscribers.subs, sub)
	close(sub)
}

// CloseAllSubscribers closes every subscriber so stream handlers return on
// shutdown.
func CloseAllSubscribers() {
	subscribers.mu.Lock()
	defer subscribers.mu.Unlock()
	for sub := range subscribers.subs {
		delete(subscribers.subs, sub)
		close(sub)
	}
}

func broadcast(e Event) {
	subscribers.mu.RLock()
	defer subscribers.mu.RUnlock()

	for sub, f := range subscribers.subs {
		if !f.accepts(e.Name) {
			continue
		}
		select {
		case sub <- e:
		default:
			subscribers.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func SubscriberCount() int {
	subscribers.mu.RLock()
	defer subscribers.mu.RUnlock()
	return len(subscribers.subs)
}

// DroppedCount returns how many deliveries were skipped because a
// subscriber's buffer was full.
func DroppedCount() int64 {
	return subscribers.dropped.Load()
}

// RecentEvents returns up to the last n buffered events matching prefixes,
// oldest first. n <= 0 means all of them.
func RecentEvents(n int, prefixes ...string) []Event {
	f := filter(prefixes)
	var out []Event
	for _, e := range buffer.Snapshot() {
		if f.accepts(e.Name) {
			out = append(out, e)
		}
	}
	if n <= 0 || n >= len(out) {
		return out
	}
	return out[len(out)-n:]
}
