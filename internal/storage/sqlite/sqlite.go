// Package sqlite is the local seed archive used by the CLI and by the API
// when no Postgres is configured. Payloads are stored zstd-compressed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/storage"
)

const pragmasSQL = `
PRAGMA journal_mode = WAL;
PRAGMA busy_timeout = 5000;
PRAGMA foreign_keys = ON;
`

const schemaSQL = `
CREATE TABLE IF NOT EXISTS seeds (
	id         TEXT PRIMARY KEY,
	hash       TEXT NOT NULL UNIQUE,
	seed       TEXT NOT NULL,
	attempt    INTEGER NOT NULL,
	logic      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	settings   TEXT NOT NULL,
	payload    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_seeds_created_at ON seeds(created_at DESC);

CREATE TABLE IF NOT EXISTS events (
	event_id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts       TEXT NOT NULL,
	level    TEXT NOT NULL,
	event    TEXT NOT NULL,
	msg      TEXT,
	fields   TEXT
);
`

// DB is a storage.Store backed by a SQLite file.
type DB struct {
	conn *sql.DB
	path string
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

var _ storage.Store = (*DB)(nil)

// Open opens or creates the archive at path. ":memory:" works for tests.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serialises writes.
	conn.SetMaxOpenConns(1)

	for _, pragma := range strings.Split(pragmasSQL, "\n") {
		pragma = strings.TrimSpace(pragma)
		if pragma == "" {
			continue
		}
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		conn.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &DB{conn: conn, path: path, enc: enc, dec: dec}, nil
}

// Path returns the file the archive lives in.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) SaveSeed(ctx context.Context, rec *storage.SeedRecord) error {
	payload, err := storage.EncodePayload(rec.Payload)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO seeds (id, hash, seed, attempt, logic, created_at, settings, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Hash, strconv.FormatUint(rec.Seed, 10), rec.Attempt, rec.Logic,
		rec.CreatedAt.UnixMilli(), string(rec.Settings), db.enc.EncodeAll(payload, nil),
	)
	if err != nil {
		return fmt.Errorf("inserting seed: %w", err)
	}
	return nil
}

const seedColumns = `id, hash, seed, attempt, logic, created_at, settings, payload`

func (db *DB) GetSeed(ctx context.Context, id uuid.UUID) (*storage.SeedRecord, error) {
	return db.scanSeed(db.conn.QueryRowContext(ctx, `SELECT `+seedColumns+` FROM seeds WHERE id = ?`, id.String()))
}

func (db *DB) GetSeedByHash(ctx context.Context, hash string) (*storage.SeedRecord, error) {
	return db.scanSeed(db.conn.QueryRowContext(ctx, `SELECT `+seedColumns+` FROM seeds WHERE hash = ?`, hash))
}

func (db *DB) scanSeed(row *sql.Row) (*storage.SeedRecord, error) {
	var (
		rec      storage.SeedRecord
		id, seed string
		created  int64
		settings string
		blob     []byte
	)
	err := row.Scan(&id, &rec.Hash, &seed, &rec.Attempt, &rec.Logic, &created, &settings, &blob)
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
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.Settings = []byte(settings)

	payload, err := db.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if rec.Payload, err = storage.DecodePayload(payload); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (db *DB) ListSeeds(ctx context.Context, limit int) ([]storage.Summary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, hash, seed, logic, created_at FROM seeds ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		storage.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Summary
	for rows.Next() {
		var s storage.Summary
		var id, seed string
		var created int64
		if err := rows.Scan(&id, &s.Hash, &seed, &s.Logic, &created); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad seed id %q: %w", id, err)
		}
		if s.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("bad seed value %q: %w", seed, err)
		}
		s.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// AppendEvent implements events.Sink.
func (db *DB) AppendEvent(e events.Event) error {
	var fields []byte
	if e.Fields != nil {
		var err error
		if fields, err = json.Marshal(e.Fields); err != nil {
			return fmt.Errorf("marshalling fields: %w", err)
		}
	}
	var msg *string
	if e.Message != "" {
		msg = &e.Message
	}
	_, err := db.conn.Exec(`INSERT INTO events (ts, level, event, msg, fields) VALUES (?, ?, ?, ?, ?)`,
		e.Timestamp, e.Level, e.Name, msg, fields)
	return err
}

// QueryEvents returns the newest events first.
func (db *DB) QueryEvents(ctx context.Context, limit int) ([]events.Event, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT ts, level, event, msg, fields FROM events ORDER BY event_id DESC LIMIT ?`,
		storage.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e events.Event
		var msg sql.NullString
		var fields []byte
		if err := rows.Scan(&e.Timestamp, &e.Level, &e.Name, &msg, &fields); err != nil {
			return nil, err
		}
		e.Message = msg.String
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &e.Fields); err != nil {
				return nil, fmt.Errorf("unmarshalling fields: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (db *DB) Close() error {
	db.dec.Close()
	if err := db.enc.Close(); err != nil {
		db.conn.Close()
		return err
	}
	return db.conn.Close()
}
