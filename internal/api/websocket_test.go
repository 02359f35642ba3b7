package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AaronLay10/SeedEngine/internal/events"
)

// waitFor polls a condition until it returns true or timeout expires.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("timeout waiting for: %s", msg)
}

func dialEvents(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("failed to connect: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var e events.Event
	if err := json.Unmarshal(msg, &e); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	return e
}

func TestWebSocketReceivesRecentEvents(t *testing.T) {
	events.Clear()
	for i := 0; i < 5; i++ {
		events.Emit(events.LevelInfo, "fill.sphere", "", map[string]interface{}{"index": i})
	}

	conn, done := dialEvents(t)
	defer done()

	for i := 0; i < 5; i++ {
		if e := readEvent(t, conn); e.Name != "fill.sphere" {
			t.Errorf("expected 'fill.sphere', got '%s'", e.Name)
		}
	}
}

func TestWebSocketReceivesNewEvents(t *testing.T) {
	events.Clear()
	conn, done := dialEvents(t)
	defer done()

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.Emit(events.LevelInfo, "seed.generated", "", map[string]interface{}{"hash": "abc"})
	}()

	e := readEvent(t, conn)
	if e.Name != "seed.generated" {
		t.Errorf("expected 'seed.generated', got '%s'", e.Name)
	}
	if e.Fields["hash"] != "abc" {
		t.Errorf("expected hash 'abc', got '%v'", e.Fields["hash"])
	}
}

func TestWebSocketDisconnectCleansUp(t *testing.T) {
	events.Clear()
	events.CloseAllSubscribers()

	conn, done := dialEvents(t)
	defer done()

	go func() {
		time.Sleep(20 * time.Millisecond)
		events.Emit(events.LevelInfo, "fill.started", "", nil)
	}()
	if e := readEvent(t, conn); e.Name != "fill.started" {
		t.Errorf("expected 'fill.started', got '%s'", e.Name)
	}

	conn.Close()

	// Writes after the close make the handler notice it.
	for i := 0; i < 5; i++ {
		events.Emit(events.LevelInfo, "fill.started", "", nil)
		time.Sleep(50 * time.Millisecond)
	}

	waitFor(t, 5*time.Second, func() bool {
		return events.SubscriberCount() == 0
	}, "subscriber count to return to 0 after close")
}

func TestWebSocketMultipleClients(t *testing.T) {
	events.Clear()
	conn1, done1 := dialEvents(t)
	defer done1()
	conn2, done2 := dialEvents(t)
	defer done2()

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.Emit(events.LevelInfo, "fill.completed", "", nil)
	}()

	if e := readEvent(t, conn1); e.Name != "fill.completed" {
		t.Errorf("client1: expected 'fill.completed', got '%s'", e.Name)
	}
	if e := readEvent(t, conn2); e.Name != "fill.completed" {
		t.Errorf("client2: expected 'fill.completed', got '%s'", e.Name)
	}
}

func TestWebSocketFilter(t *testing.T) {
	events.Clear()
	events.Emit(events.LevelDebug, "fill.sphere", "", nil)
	events.Emit(events.LevelInfo, "seed.generated", "", map[string]interface{}{"hash": "old"})

	server := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?filter=seed."

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	if e := readEvent(t, conn); e.Name != "seed.generated" || e.Fields["hash"] != "old" {
		t.Errorf("expected the filtered backlog, got %+v", e)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.Emit(events.LevelDebug, "fill.sphere", "", nil)
		events.Emit(events.LevelInfo, "seed.stored", "", map[string]interface{}{"hash": "new"})
	}()

	if e := readEvent(t, conn); e.Name != "seed.stored" {
		t.Errorf("expected 'seed.stored', got '%s'", e.Name)
	}
}
