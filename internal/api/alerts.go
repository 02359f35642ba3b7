package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
)

// Alert severity levels
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert event types
const (
	AlertMQTTDisconnected = "mqtt_disconnected"
	AlertStoreUnavailable = "store_unavailable"
	AlertSeedFailed       = "seed_failed"
)

// AlertPayload is the JSON body posted to the webhook.
type AlertPayload struct {
	Service   string                 `json:"service"`
	Instance  string                 `json:"instance"`
	Event     string                 `json:"event"`
	Timestamp string                 `json:"timestamp"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// AlertConfig holds alert configuration. Without a WebhookURL alerts are only
// emitted as system.alert events.
type AlertConfig struct {
	WebhookURL string
	MQTTDelay  time.Duration // how long MQTT must be down before alerting
	StoreDelay time.Duration // how long the archive must be down before alerting
}

// DefaultAlertConfig returns the delays used when the environment sets none.
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		MQTTDelay:  30 * time.Second,
		StoreDelay: 5 * time.Second,
	}
}

// AlertConfigFromEnv reads SEEDENGINE_ALERT_WEBHOOK_URL,
// SEEDENGINE_MQTT_ALERT_DELAY and SEEDENGINE_STORE_ALERT_DELAY.
func AlertConfigFromEnv() (AlertConfig, error) {
	cfg := DefaultAlertConfig()
	cfg.WebhookURL = os.Getenv("SEEDENGINE_ALERT_WEBHOOK_URL")

	for _, d := range []struct {
		env string
		dst *time.Duration
	}{
		{"SEEDENGINE_MQTT_ALERT_DELAY", &cfg.MQTTDelay},
		{"SEEDENGINE_STORE_ALERT_DELAY", &cfg.StoreDelay},
	} {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed < 0 {
			return cfg, &config.ValidationError{Field: d.env, Detail: fmt.Sprintf("invalid duration %q", v)}
		}
		*d.dst = parsed
	}
	return cfg, nil
}

// watch tracks one dependency between checks.
type watch struct {
	event     string
	name      string
	severity  string
	delay     time.Duration
	connected bool
	downSince time.Time
	alerted   bool
}

// observe records the current state and returns the alert to send, if any.
func (w *watch) observe(now time.Time, connected bool) *AlertPayload {
	if connected {
		recovered := !w.connected && w.alerted
		w.connected = true
		w.downSince = time.Time{}
		w.alerted = false
		if !recovered {
			return nil
		}
		return &AlertPayload{
			Event:    w.event,
			Severity: SeverityInfo,
			Message:  w.name + " connection restored",
			Details:  map[string]interface{}{"recovered_at": now.UTC().Format(time.RFC3339)},
		}
	}

	if w.connected {
		w.downSince = now
	}
	w.connected = false

	if w.alerted || w.downSince.IsZero() {
		return nil
	}
	down := now.Sub(w.downSince)
	if down < w.delay {
		return nil
	}
	w.alerted = true
	return &AlertPayload{
		Event:    w.event,
		Severity: w.severity,
		Message:  w.name + " unavailable",
		Details: map[string]interface{}{
			"disconnected_since":   w.downSince.UTC().Format(time.RFC3339),
			"disconnected_seconds": int(down.Seconds()),
		},
	}
}

// Alerter turns dependency outages and failed seeds into webhook alerts.
// A nil *Alerter ignores every call.
type Alerter struct {
	cfg    AlertConfig
	client *http.Client
	now    func() time.Time

	mu    sync.Mutex
	mqtt  watch
	store watch
}

func NewAlerter(cfg AlertConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
		mqtt: watch{
			event:     AlertMQTTDisconnected,
			name:      "MQTT broker",
			severity:  SeverityWarning,
			delay:     cfg.MQTTDelay,
			connected: true,
		},
		store: watch{
			event:     AlertStoreUnavailable,
			name:      "seed archive",
			severity:  SeverityCritical,
			delay:     cfg.StoreDelay,
			connected: true,
		},
	}
}

// CheckMQTT records the broker state and alerts once it has been down for
// the configured delay, and again when it recovers.
func (a *Alerter) CheckMQTT(connected bool) {
	if a == nil {
		return
	}
	a.mu.Lock()
	p := a.mqtt.observe(a.now(), connected)
	a.mu.Unlock()
	a.dispatch(p)
}

// CheckStore is CheckMQTT for the seed archive.
func (a *Alerter) CheckStore(connected bool) {
	if a == nil {
		return
	}
	a.mu.Lock()
	p := a.store.observe(a.now(), connected)
	a.mu.Unlock()
	a.dispatch(p)
}

// Send emits an alert immediately.
func (a *Alerter) Send(event, severity, message string, details map[string]interface{}) {
	if a == nil {
		return
	}
	a.dispatch(&AlertPayload{Event: event, Severity: severity, Message: message, Details: details})
}

// dispatch emits the alert as an event and posts it to the webhook in the
// background.
func (a *Alerter) dispatch(p *AlertPayload) {
	if p == nil {
		return
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}
	p.Service = "seedengine"
	p.Instance = host
	p.Timestamp = a.now().UTC().Format(time.RFC3339)

	level := events.LevelWarn
	if p.Severity == SeverityInfo {
		level = events.LevelInfo
	}
	events.Emit(level, "system.alert", p.Message, map[string]interface{}{
		"alert":    p.Event,
		"severity": p.Severity,
	})

	if a.cfg.WebhookURL == "" {
		return
	}
	go a.post(*p)
}

func (a *Alerter) post(p AlertPayload) {
	body, err := json.Marshal(p)
	if err != nil {
		return
	}
	resp, err := a.client.Post(a.cfg.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		events.Emit(events.LevelWarn, "system.error", "alert webhook failed", map[string]interface{}{
			"alert": p.Event,
			"error": err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		events.Emit(events.LevelWarn, "system.error", "alert webhook rejected", map[string]interface{}{
			"alert":  p.Event,
			"status": resp.StatusCode,
		})
	}
}
