package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/storage"
)

// newTestClient connects to the database named by PG* variables, or skips.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	svc, err := config.ServiceFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if svc.Postgres == nil {
		t.Skip("PGHOST not set")
	}
	c, err := New(svc.Postgres)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSeedRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	rec := &storage.SeedRecord{
		ID:       uuid.New(),
		Hash:     uuid.NewString()[:20],
		Seed:     1<<63 + 5,
		Logic:    "normal",
		Settings: []byte("version: 1\n"),
	}
	if err := c.SaveSeed(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := c.GetSeed(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != rec.Seed || got.Hash != rec.Hash {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := c.GetSeedByHash(ctx, rec.Hash); err != nil {
		t.Errorf("lookup by hash: %v", err)
	}
	if _, err := c.GetSeed(ctx, uuid.New()); !errors.Is(err, storage.ErrSeedNotFound) {
		t.Errorf("expected ErrSeedNotFound, got %v", err)
	}
}

func TestAppendEvent(t *testing.T) {
	c := newTestClient(t)

	e := events.Event{Timestamp: "2026-01-02T03:04:05Z", Level: "info", Name: "seed.stored", Fields: map[string]interface{}{"hash": "x"}}
	if err := c.AppendEvent(e); err != nil {
		t.Fatal(err)
	}
	rows, err := c.QueryEvents(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) == 0 {
		t.Fatal("expected at least one event")
	}
	if rows[0].Time().IsZero() {
		t.Errorf("timestamp did not round trip: %q", rows[0].Timestamp)
	}
}
