package api

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/version"
)

// Metrics holds the runtime counters behind /metrics.
type Metrics struct {
	startTime time.Time
	generated atomic.Int64
	failed    atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) SeedGenerated() { m.generated.Add(1) }
func (m *Metrics) SeedFailed()    { m.failed.Add(1) }

// Readiness tracks the optional dependencies of the server. State changes of
// the configured dependencies are reported to the alerter.
type Readiness struct {
	mu           sync.RWMutex
	store        bool
	mqtt         bool
	mqttOptional bool

	alerts     *Alerter
	watchStore bool
	watchMQTT  bool
}

func (r *Readiness) SetStore(ok bool) {
	r.mu.Lock()
	r.store = ok
	watched := r.watchStore
	r.mu.Unlock()
	if watched {
		r.alerts.CheckStore(ok)
	}
}

func (r *Readiness) SetMQTT(connected, optional bool) {
	r.mu.Lock()
	r.mqtt = connected
	r.mqttOptional = optional
	watched := r.watchMQTT
	r.mu.Unlock()
	if watched {
		r.alerts.CheckMQTT(connected)
	}
}

// recheck reports the current states again so delayed alerts can fire.
func (r *Readiness) recheck() {
	r.mu.RLock()
	store, mqtt := r.store, r.mqtt
	watchStore, watchMQTT := r.watchStore, r.watchMQTT
	r.mu.RUnlock()
	if watchStore {
		r.alerts.CheckStore(store)
	}
	if watchMQTT {
		r.alerts.CheckMQTT(mqtt)
	}
}

type CheckStatus struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Ready  bool                   `json:"ready"`
	Checks map[string]CheckStatus `json:"checks"`
}

// readyHandler reports 503 while the seed archive is unavailable. MQTT only
// blocks readiness when it is not optional.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	s.ready.mu.RLock()
	store, mqtt, mqttOptional := s.ready.store, s.ready.mqtt, s.ready.mqttOptional
	s.ready.mu.RUnlock()

	resp := ReadinessResponse{Ready: true, Checks: map[string]CheckStatus{}}
	if store {
		resp.Checks["store"] = CheckStatus{Status: "ok"}
	} else {
		resp.Checks["store"] = CheckStatus{Status: "unavailable"}
		resp.Ready = false
	}
	switch {
	case mqtt:
		resp.Checks["mqtt"] = CheckStatus{Status: "ok"}
	case mqttOptional:
		resp.Checks["mqtt"] = CheckStatus{Status: "degraded"}
	default:
		resp.Checks["mqtt"] = CheckStatus{Status: "unavailable"}
		resp.Ready = false
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// metricsHandler returns Prometheus-compatible metrics in text format.
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.metrics.startTime).Seconds()

	s.ready.mu.RLock()
	storeVal, mqttVal := 0, 0
	if s.ready.store {
		storeVal = 1
	}
	if s.ready.mqtt {
		mqttVal = 1
	}
	s.ready.mu.RUnlock()

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	writeMetric := func(name, mtype, help string, value interface{}, labels string) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		fmt.Fprintf(w, "%s{%s} %v\n", name, labels, value)
	}

	labels := fmt.Sprintf(`instance="%s",version="%s"`, hostname, version.Version)

	writeMetric("seedengine_uptime_seconds", "gauge",
		"Number of seconds since the server started", uptime, labels)
	writeMetric("seedengine_seeds_generated_total", "counter",
		"Seeds generated successfully", s.metrics.generated.Load(), labels)
	writeMetric("seedengine_seeds_failed_total", "counter",
		"Seed generation requests that failed after every attempt", s.metrics.failed.Load(), labels)
	writeMetric("seedengine_events_total", "counter",
		"Total number of events emitted since startup", events.TotalCount(), labels)
	writeMetric("seedengine_store_connected", "gauge",
		"Whether the seed archive is reachable (1) or not (0)", storeVal, labels)
	writeMetric("seedengine_mqtt_connected", "gauge",
		"Whether the MQTT broker is connected (1) or not (0)", mqttVal, labels)
	writeMetric("seedengine_events_buffered", "gauge",
		"Events held in the in-memory ring buffer", events.BufferedCount(), labels)
	writeMetric("seedengine_events_dropped_total", "counter",
		"Event deliveries skipped because a stream subscriber was too slow", events.DroppedCount(), labels)
	writeMetric("seedengine_ws_clients", "gauge",
		"Number of active WebSocket client connections", events.SubscriberCount(), labels)
}
