// Package storage defines the seed archive shared by the Postgres and SQLite
// backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/fill"
	"github.com/AaronLay10/SeedEngine/internal/layout"
)

// ErrSeedNotFound is returned when no record matches.
var ErrSeedNotFound = errors.New("seed not found")

// SeedRecord is one archived seed. Seed is the seed the user asked for;
// Attempt says which derived seed actually filled.
type SeedRecord struct {
	ID        uuid.UUID `json:"id"`
	Hash      string    `json:"hash"`
	Seed      uint64    `json:"seed,string"`
	Attempt   int       `json:"attempt"`
	Logic     string    `json:"logic"`
	CreatedAt time.Time `json:"created_at"`

	Settings []byte  `json:"-"`
	Payload  Payload `json:"payload"`
}

// Payload is the bulky part of a record, stored as a single document.
type Payload struct {
	Layout  []layout.Entry `json:"layout"`
	Spheres []fill.Sphere  `json:"spheres"`
}

// Summary is the listing form of a record.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Hash      string    `json:"hash"`
	Seed      uint64    `json:"seed,string"`
	Logic     string    `json:"logic"`
	CreatedAt time.Time `json:"created_at"`
}

// Store archives seeds and, as an events.Sink, the event log.
type Store interface {
	events.Sink
	SaveSeed(ctx context.Context, rec *SeedRecord) error
	GetSeed(ctx context.Context, id uuid.UUID) (*SeedRecord, error)
	GetSeedByHash(ctx context.Context, hash string) (*SeedRecord, error)
	ListSeeds(ctx context.Context, limit int) ([]Summary, error)
	// QueryEvents returns archived events, newest first.
	QueryEvents(ctx context.Context, limit int) ([]events.Event, error)
	Close() error
}

// NewRecord builds the archive record for a generated seed.
func NewRecord(s *config.Settings, res *fill.Result) (*SeedRecord, error) {
	settings, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return &SeedRecord{
		ID:        uuid.New(),
		Hash:      res.Hash,
		Seed:      s.Seed,
		Attempt:   res.Attempt,
		Logic:     s.Logic.String(),
		CreatedAt: time.Now().UTC(),
		Settings:  settings,
		Payload: Payload{
			Layout:  res.Layout.Entries(),
			Spheres: res.Playthrough.Spheres,
		},
	}, nil
}

// FillSeed returns the seed the successful attempt ran with, the one the
// layout hash is keyed on.
func (r *SeedRecord) FillSeed() uint64 {
	return fill.DeriveSeed(r.Seed, r.Attempt)
}

// ParseSettings decodes the settings stored with a record.
func (r *SeedRecord) ParseSettings() (*config.Settings, error) {
	return config.ParseSettings(r.Settings)
}

// Summary returns the listing form.
func (r *SeedRecord) Summary() Summary {
	return Summary{ID: r.ID, Hash: r.Hash, Seed: r.Seed, Logic: r.Logic, CreatedAt: r.CreatedAt}
}

// EncodePayload is the JSON document both backends store.
func EncodePayload(p Payload) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return b, nil
}

func DecodePayload(b []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Payload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return p, nil
}

// ClampLimit bounds list sizes the way every backend does.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
