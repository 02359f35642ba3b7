// Package backend picks the seed archive for a service configuration.
package backend

import (
	"fmt"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/storage"
	"github.com/AaronLay10/SeedEngine/internal/storage/postgres"
	"github.com/AaronLay10/SeedEngine/internal/storage/sqlite"
)

// Open connects to Postgres when svc carries Postgres settings and falls
// back to the SQLite file at svc.SQLitePath.
func Open(svc *config.Service) (storage.Store, error) {
	if svc.Postgres != nil {
		c, err := postgres.New(svc.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres archive: %w", err)
		}
		return c, nil
	}
	db, err := sqlite.Open(svc.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite archive: %w", err)
	}
	return db, nil
}

// Name describes which backend Open would use.
func Name(svc *config.Service) string {
	if svc.Postgres != nil {
		return "postgres"
	}
	return "sqlite"
}
