package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/world/standard"
)

// webhook collects the alerts posted to it.
func webhook(t *testing.T) (string, <-chan AlertPayload) {
	t.Helper()
	ch := make(chan AlertPayload, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p AlertPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err == nil {
			ch <- p
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, ch
}

func nextAlert(t *testing.T, ch <-chan AlertPayload) AlertPayload {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no alert received")
		return AlertPayload{}
	}
}

func noAlert(t *testing.T, ch <-chan AlertPayload) {
	t.Helper()
	select {
	case p := <-ch:
		t.Fatalf("unexpected alert: %+v", p)
	case <-time.After(100 * time.Millisecond):
	}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestStoreAlertAfterDelay(t *testing.T) {
	url, ch := webhook(t)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := NewAlerter(AlertConfig{WebhookURL: url, StoreDelay: 5 * time.Second, MQTTDelay: time.Minute})
	a.now = clock.Now

	a.CheckStore(false)
	noAlert(t, ch)

	clock.Advance(6 * time.Second)
	a.CheckStore(false)
	p := nextAlert(t, ch)
	assert.Equal(t, AlertStoreUnavailable, p.Event)
	assert.Equal(t, SeverityCritical, p.Severity)
	assert.Equal(t, "seedengine", p.Service)
	assert.EqualValues(t, 6, p.Details["disconnected_seconds"])

	// Only one alert per outage.
	clock.Advance(time.Minute)
	a.CheckStore(false)
	noAlert(t, ch)

	a.CheckStore(true)
	p = nextAlert(t, ch)
	assert.Equal(t, AlertStoreUnavailable, p.Event)
	assert.Equal(t, SeverityInfo, p.Severity)
}

func TestShortOutageDoesNotAlert(t *testing.T) {
	url, ch := webhook(t)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := NewAlerter(AlertConfig{WebhookURL: url, MQTTDelay: 30 * time.Second})
	a.now = clock.Now

	a.CheckMQTT(false)
	clock.Advance(10 * time.Second)
	a.CheckMQTT(false)
	a.CheckMQTT(true)
	noAlert(t, ch)
}

func TestNilAlerterIgnoresCalls(t *testing.T) {
	var a *Alerter
	a.CheckMQTT(false)
	a.CheckStore(false)
	a.Send(AlertSeedFailed, SeverityWarning, "x", nil)
}

func TestAlertConfigFromEnv(t *testing.T) {
	t.Setenv("SEEDENGINE_ALERT_WEBHOOK_URL", "http://hooks.local/alert")
	t.Setenv("SEEDENGINE_MQTT_ALERT_DELAY", "1m")
	t.Setenv("SEEDENGINE_STORE_ALERT_DELAY", "")

	cfg, err := AlertConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://hooks.local/alert", cfg.WebhookURL)
	assert.Equal(t, time.Minute, cfg.MQTTDelay)
	assert.Equal(t, DefaultAlertConfig().StoreDelay, cfg.StoreDelay)

	t.Setenv("SEEDENGINE_STORE_ALERT_DELAY", "soon")
	_, err = AlertConfigFromEnv()
	var ve *config.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "SEEDENGINE_STORE_ALERT_DELAY", ve.Field)
}

func TestStoreFailureRaisesAlert(t *testing.T) {
	url, ch := webhook(t)
	s := NewServer(Options{
		Base:   config.Default(),
		World:  standard.Definition,
		Store:  &memoryStore{fail: errors.New("disk full")},
		Alerts: NewAlerter(AlertConfig{WebhookURL: url}),
	})

	w := do(t, s, "POST", "/seeds", `{"seed":"1"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	p := nextAlert(t, ch)
	assert.Equal(t, AlertStoreUnavailable, p.Event)
	assert.Equal(t, SeverityCritical, p.Severity)
}

func TestUnconfiguredDependenciesDoNotAlert(t *testing.T) {
	url, ch := webhook(t)
	s := NewServer(Options{
		Base:   config.Default(),
		World:  standard.Definition,
		Alerts: NewAlerter(AlertConfig{WebhookURL: url}),
	})
	s.ready.recheck()
	noAlert(t, ch)
}

func TestSeedFailureRaisesAlert(t *testing.T) {
	url, ch := webhook(t)
	s := NewServer(Options{
		Base:   config.Default(),
		World:  standard.Definition,
		Alerts: NewAlerter(AlertConfig{WebhookURL: url}),
	})

	body, err := json.Marshal(GenerateRequest{Settings: "version: 1\nseed: 3\nmax_attempts: 1\nmax_iterations: 3\n"})
	require.NoError(t, err)
	w := do(t, s, "POST", "/seeds", string(body))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	p := nextAlert(t, ch)
	assert.Equal(t, AlertSeedFailed, p.Event)
	assert.Equal(t, "3", p.Details["seed"])

	// Bad input is the caller's problem, not an alert.
	require.Equal(t, http.StatusBadRequest, do(t, s, "POST", "/seeds", `{"seed":"x"}`).Code)
	noAlert(t, ch)
}

type brokerState struct{ up atomic.Bool }

func (b *brokerState) IsConnected() bool { return b.up.Load() }

func TestAlertMonitorWatchesBroker(t *testing.T) {
	url, ch := webhook(t)
	broker := &brokerState{}
	broker.up.Store(true)
	s := NewServer(Options{
		Base:   config.Default(),
		World:  standard.Definition,
		Store:  &memoryStore{},
		Broker: broker,
		Alerts: NewAlerter(AlertConfig{WebhookURL: url}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartAlertMonitor(ctx, 10*time.Millisecond)

	broker.up.Store(false)
	p := nextAlert(t, ch)
	assert.Equal(t, AlertMQTTDisconnected, p.Event)
	assert.Equal(t, SeverityWarning, p.Severity)

	broker.up.Store(true)
	p = nextAlert(t, ch)
	assert.Equal(t, AlertMQTTDisconnected, p.Event)
	assert.Equal(t, SeverityInfo, p.Severity)
}
