// Package api serves seed generation, the seed archive and the live event
// feed over HTTP.
package api

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/fill"
	"github.com/AaronLay10/SeedEngine/internal/storage"
	"github.com/AaronLay10/SeedEngine/internal/world"
)

// WorldFunc builds the world a run's settings describe.
type WorldFunc func(s *config.Settings) (*world.Definition, error)

// SeedPublisher announces stored seeds, typically over MQTT.
type SeedPublisher interface {
	PublishSeed(rec *storage.SeedRecord) error
}

// BrokerStatus reports the MQTT connection state.
type BrokerStatus interface {
	IsConnected() bool
}

// Options configures a Server. Base and World are required; the rest may be
// nil.
type Options struct {
	Base      *config.Settings
	World     WorldFunc
	Store     storage.Store
	Publisher SeedPublisher
	Broker    BrokerStatus

	Auth   *Auth
	TLS    *TLSConfig
	Alerts *Alerter
}

// Server is the HTTP front end of the generator.
type Server struct {
	opts    Options
	mux     *http.ServeMux
	metrics *Metrics
	ready   *Readiness
}

func NewServer(o Options) *Server {
	s := &Server{
		opts:    o,
		mux:     http.NewServeMux(),
		metrics: NewMetrics(),
		ready: &Readiness{
			alerts:     o.Alerts,
			watchStore: o.Store != nil,
			watchMQTT:  o.Publisher != nil || o.Broker != nil,
		},
	}
	s.ready.SetStore(o.Store != nil)
	s.ready.SetMQTT(s.brokerConnected(), true)

	s.mux.HandleFunc("/health", healthHandler)
	s.mux.HandleFunc("/ready", s.readyHandler)
	s.mux.HandleFunc("/events", eventsHandler)
	s.mux.HandleFunc("GET /events/archive", o.Auth.RequireAdmin(s.archivedEventsHandler))
	s.mux.HandleFunc("/ws/events", wsEventsHandler)
	s.mux.HandleFunc("/metrics", s.metricsHandler)
	s.mux.HandleFunc("POST /seeds", o.Auth.RequireAnyRole(s.generateHandler))
	s.mux.HandleFunc("GET /seeds", s.listSeedsHandler)
	s.mux.HandleFunc("GET /seeds/{id}", s.getSeedHandler)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Readiness exposes the dependency state reported by /ready.
func (s *Server) Readiness() *Readiness { return s.ready }

func (s *Server) brokerConnected() bool {
	if s.opts.Broker != nil {
		return s.opts.Broker.IsConnected()
	}
	return s.opts.Publisher != nil
}

// StartAlertMonitor refreshes the broker state every interval and feeds the
// dependency states to the alerter until ctx is done.
func (s *Server) StartAlertMonitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if s.opts.Broker != nil {
				s.ready.SetMQTT(s.opts.Broker.IsConnected(), true)
			}
			s.ready.recheck()
		}
	}()
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "seedengine",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, events.Snapshot())
}

// GenerateRequest is the body of POST /seeds. Every field is optional:
// Settings is a settings YAML document replacing the server defaults, Logic
// and Seed override it. Without any seed a random one is drawn.
type GenerateRequest struct {
	Settings string `json:"settings,omitempty"`
	Logic    string `json:"logic,omitempty"`
	Seed     string `json:"seed,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (s *Server) settingsFor(req GenerateRequest) (*config.Settings, error) {
	var settings *config.Settings
	if req.Settings != "" {
		parsed, err := config.ParseSettings([]byte(req.Settings))
		if err != nil {
			return nil, err
		}
		settings = parsed
	} else {
		settings = s.opts.Base.Clone()
	}

	if req.Logic != "" {
		mode, err := config.ParseLogicMode(req.Logic)
		if err != nil {
			return nil, &config.ValidationError{Field: "logic", Detail: err.Error()}
		}
		settings.Logic = mode
	}

	switch {
	case req.Seed != "":
		seed, err := strconv.ParseUint(req.Seed, 10, 64)
		if err != nil {
			return nil, &config.ValidationError{Field: "seed", Detail: "must be an unsigned 64-bit integer"}
		}
		settings.Seed = seed
	case settings.Seed == 0:
		id := uuid.New()
		settings.Seed = binary.BigEndian.Uint64(id[:8])
	}
	return settings, nil
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
			return
		}
	}

	settings, err := s.settingsFor(req)
	if err != nil {
		writeError(w, err)
		return
	}

	def, err := s.opts.World(settings)
	if err != nil {
		s.metrics.SeedFailed()
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	res, err := fill.Generate(r.Context(), def, settings)
	if err != nil {
		s.metrics.SeedFailed()
		var ge *fill.GenerationError
		if errors.As(err, &ge) {
			s.opts.Alerts.Send(AlertSeedFailed, SeverityWarning, "seed generation failed", map[string]interface{}{
				"seed":  strconv.FormatUint(settings.Seed, 10),
				"logic": settings.Logic.String(),
				"error": err.Error(),
			})
		}
		writeError(w, err)
		return
	}
	s.metrics.SeedGenerated()

	rec, err := storage.NewRecord(settings, res)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	if s.opts.Store != nil {
		if err := s.opts.Store.SaveSeed(r.Context(), rec); err != nil {
			s.ready.SetStore(false)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		s.ready.SetStore(true)
		events.Emit(events.LevelInfo, "seed.stored", "", map[string]interface{}{
			"id":   rec.ID.String(),
			"hash": rec.Hash,
		})
	}

	if s.opts.Publisher != nil {
		if err := s.opts.Publisher.PublishSeed(rec); err != nil {
			s.ready.SetMQTT(false, true)
			events.Emit(events.LevelWarn, "system.error", "seed publish failed", map[string]interface{}{
				"hash":  rec.Hash,
				"error": err.Error(),
			})
		} else {
			s.ready.SetMQTT(true, true)
		}
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) listSeedsHandler(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "no seed archive configured"})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit", Field: "limit"})
			return
		}
		limit = n
	}

	seeds, err := s.opts.Store.ListSeeds(r.Context(), storage.ClampLimit(limit))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if seeds == nil {
		seeds = []storage.Summary{}
	}
	writeJSON(w, http.StatusOK, seeds)
}

// archivedEventsHandler reads the event log persisted by the seed archive.
func (s *Server) archivedEventsHandler(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "no seed archive configured"})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit", Field: "limit"})
			return
		}
		limit = n
	}

	evs, err := s.opts.Store.QueryEvents(r.Context(), storage.ClampLimit(limit))
	if err != nil {
		s.ready.SetStore(false)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	s.ready.SetStore(true)
	if evs == nil {
		evs = []events.Event{}
	}
	writeJSON(w, http.StatusOK, evs)
}

// getSeedHandler accepts either a record UUID or a layout hash.
func (s *Server) getSeedHandler(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "no seed archive configured"})
		return
	}

	key := r.PathValue("id")
	var (
		rec *storage.SeedRecord
		err error
	)
	if id, perr := uuid.Parse(key); perr == nil {
		rec, err = s.opts.Store.GetSeed(r.Context(), id)
	} else {
		rec, err = s.opts.Store.GetSeedByHash(r.Context(), key)
	}
	if errors.Is(err, storage.ErrSeedNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "seed not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// writeError maps settings and generation failures onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *config.ValidationError
	var ge *fill.GenerationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.As(err, &ge):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ge.Error(), Retryable: !ge.Permanent})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe listens on port and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, with TLS when configured, until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	useTLS := s.opts.TLS.Enabled()
	if useTLS {
		cfg, err := s.opts.TLS.Load()
		if err != nil {
			ln.Close()
			return err
		}
		srv.TLSConfig = cfg
	}

	errCh := make(chan error, 1)
	go func() {
		if useTLS {
			errCh <- srv.ServeTLS(ln, "", "")
		} else {
			errCh <- srv.Serve(ln)
		}
	}()

	events.Emit(events.LevelInfo, "system.startup", "api listening", map[string]interface{}{
		"addr": ln.Addr().String(),
		"tls":  useTLS,
		"auth": s.opts.Auth.Enabled(),
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events.CloseAllSubscribers()
	err := srv.Shutdown(shutdownCtx)
	events.Emit(events.LevelInfo, "system.shutdown", "api stopped", nil)
	return err
}
