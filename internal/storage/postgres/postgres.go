// Package postgres is the server-side seed archive and event sink.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/storage"
)

// Client is a storage.Store backed by Postgres.
type Client struct {
	db *sql.DB
}

var _ storage.Store = (*Client)(nil)

// New connects with cfg and creates the tables if needed.
func New(cfg *config.Postgres) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{db: db}
	if err := client.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return client, nil
}

func (c *Client) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			id         UUID PRIMARY KEY,
			hash       TEXT NOT NULL UNIQUE,
			seed       TEXT NOT NULL,
			attempt    INTEGER NOT NULL,
			logic      TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			settings   TEXT NOT NULL,
			payload    JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_seeds_created_at ON seeds(created_at DESC);

		CREATE TABLE IF NOT EXISTS events (
			event_id   BIGSERIAL PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			level      TEXT NOT NULL,
			event      TEXT NOT NULL,
			msg        TEXT,
			fields     JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts DESC);
	`
	_, err := c.db.Exec(query)
	return err
}

// SaveSeed inserts rec.
func (c *Client) SaveSeed(ctx context.Context, rec *storage.SeedRecord) error {
	payload, err := storage.EncodePayload(rec.Payload)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO seeds (id, hash, seed, attempt, logic, created_at, settings, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = c.db.ExecContext(ctx, query,
		rec.ID.String(), rec.Hash, strconv.FormatUint(rec.Seed, 10), rec.Attempt,
		rec.Logic, rec.CreatedAt, string(rec.Settings), payload)
	if err != nil {
		return fmt.Errorf("failed to insert seed: %w", err)
	}
	return nil
}

const seedColumns = `id, hash, seed, attempt, logic, created_at, settings, payload`

// GetSeed fetches a record by id.
func (c *Client) GetSeed(ctx context.Context, id uuid.UUID) (*storage.SeedRecord, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+seedColumns+` FROM seeds WHERE id = $1`, id.String())
	return scanSeed(row)
}

// GetSeedByHash fetches a record by its layout hash.
func (c *Client) GetSeedByHash(ctx context.Context, hash string) (*storage.SeedRecord, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+seedColumns+` FROM seeds WHERE hash = $1`, hash)
	return scanSeed(row)
}

func scanSeed(row *sql.Row) (*storage.SeedRecord, error) {
	var (
		rec      storage.SeedRecord
		id, seed string
		settings string
		payload  []byte
	)
	err := row.Scan(&id, &rec.Hash, &seed, &rec.Attempt, &rec.Logic, &rec.CreatedAt, &settings, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSeedNotFound
	}
	if err != nil {
		return nil, err
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad seed id %q: %w", id, err)
	}
	if rec.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("bad seed value %q: %w", seed, err)
	}
	rec.Settings = []byte(settings)
	if rec.Payload, err = storage.DecodePayload(payload); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListSeeds returns the newest records first.
func (c *Client) ListSeeds(ctx context.Context, limit int) ([]storage.Summary, error) {
	query := `
		SELECT id, hash, seed, logic, created_at
		FROM seeds
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := c.db.QueryContext(ctx, query, storage.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Summary
	for rows.Next() {
		var s storage.Summary
		var id, seed string
		if err := rows.Scan(&id, &s.Hash, &seed, &s.Logic, &s.CreatedAt); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad seed id %q: %w", id, err)
		}
		if s.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("bad seed value %q: %w", seed, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AppendEvent inserts an event. It implements events.Sink.
func (c *Client) AppendEvent(e events.Event) error {
	var fieldsJSON []byte
	var err error
	if e.Fields != nil {
		fieldsJSON, err = json.Marshal(e.Fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	var msgPtr *string
	if e.Message != "" {
		msgPtr = &e.Message
	}

	query := `
		INSERT INTO events (ts, level, event, msg, fields)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = c.db.Exec(query, e.Time(), e.Level, e.Name, msgPtr, fieldsJSON)
	return err
}

// QueryEvents returns the newest events first.
func (c *Client) QueryEvents(ctx context.Context, limit int) ([]events.Event, error) {
	query := `
		SELECT ts, level, event, msg, fields
		FROM events
		ORDER BY ts DESC, event_id DESC
		LIMIT $1
	`
	rows, err := c.db.QueryContext(ctx, query, storage.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e events.Event
		var ts time.Time
		var fieldsJSON []byte
		var msg sql.NullString

		if err := rows.Scan(&ts, &e.Level, &e.Name, &msg, &fieldsJSON); err != nil {
			return nil, err
		}
		e.Timestamp = ts.UTC().Format(time.RFC3339Nano)
		e.Message = msg.String
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
