package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Levels used across the module.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var buffer = NewRingBuffer(256)

// Sink persists events outside the process. Implementations must not call
// Emit.
type Sink interface {
	AppendEvent(e Event) error
}

var (
	sink            Sink
	sinkMu          sync.RWMutex
	sinkErrorLogged bool

	output   io.Writer
	outputMu sync.Mutex

	total atomic.Int64
)

// SetSink sets the persistent sink. Pass nil to disable persistence.
func SetSink(s Sink) {
	sinkMu.Lock()
	sink = s
	sinkErrorLogged = false
	sinkMu.Unlock()
}

// SetOutput makes Emit also write every event as a JSON line to w. Command
// binaries point it at stderr. Pass nil to disable.
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Time parses the event timestamp.
func (e Event) Time() time.Time {
	t, _ := time.Parse(time.RFC3339Nano, e.Timestamp)
	return t
}

// Emit records an allow-listed event: ring buffer, subscribers, the optional
// sink and the optional output writer. It returns the JSON encoding.
func Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	buffer.Add(e)
	total.Add(1)
	broadcast(e)
	persist(e)

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	outputMu.Lock()
	if output != nil {
		output.Write(append(b, '\n'))
	}
	outputMu.Unlock()

	return b, nil
}

func persist(e Event) {
	sinkMu.RLock()
	s := sink
	errorLogged := sinkErrorLogged
	sinkMu.RUnlock()

	if s == nil {
		return
	}
	err := s.AppendEvent(e)
	if err == nil || errorLogged {
		return
	}

	// Reported once, straight into the buffer: going through Emit would
	// recurse while the sink keeps failing.
	sinkMu.Lock()
	if sinkErrorLogged {
		sinkMu.Unlock()
		return
	}
	sinkErrorLogged = true
	sinkMu.Unlock()

	buffer.Add(Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     LevelError,
		Name:      "system.error",
		Message:   "event sink append failed",
		Fields: map[string]interface{}{
			"error": err.Error(),
		},
	})
}

func Snapshot() []Event {
	return buffer.Snapshot()
}

// TotalCount returns how many events were emitted since start or the last
// Clear.
func TotalCount() int64 {
	return total.Load()
}

// BufferedCount returns how many events the ring buffer currently holds.
func BufferedCount() int {
	return buffer.Len()
}

// Clear resets the event buffer and counters. Used for testing.
func Clear() {
	buffer.Clear()
	total.Store(0)
	subscribers.dropped.Store(0)
	sinkMu.Lock()
	sinkErrorLogged = false
	sinkMu.Unlock()
}
