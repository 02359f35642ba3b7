package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/fill"
	"github.com/AaronLay10/SeedEngine/internal/mqtt"
	"github.com/AaronLay10/SeedEngine/internal/storage"
	"github.com/AaronLay10/SeedEngine/internal/storage/backend"
)

// seedFile is what generate --out writes and verify reads back.
type seedFile struct {
	Settings string `json:"settings"`
	*storage.SeedRecord
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if countFlag < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	def, err := loadWorld(s)
	if err != nil {
		return err
	}

	var (
		store storage.Store
		pub   *mqtt.Publisher
	)
	if storeFlag || publishFlag {
		svc, err := config.ServiceFromEnv()
		if err != nil {
			return err
		}
		if storeFlag {
			store, err = backend.Open(svc)
			if err != nil {
				return err
			}
			defer store.Close()
			events.SetSink(store)
			defer events.SetSink(nil)
		}
		if publishFlag {
			client := mqtt.NewClient(mqtt.OptionsFromService(svc, "seedgen-"+uuid.NewString()[:8]))
			if err := client.Connect(); err != nil {
				return err
			}
			defer client.Disconnect()
			pub = mqtt.NewPublisher(client, svc.MQTTPrefix)
		}
	}

	seeds := make([]uint64, countFlag)
	for i := range seeds {
		seeds[i] = s.Seed + uint64(i)
	}

	var results []fill.BatchResult
	if countFlag == 1 {
		res, err := fill.Generate(ctx, def, s)
		results = []fill.BatchResult{{Seed: s.Seed, Result: res, Err: err}}
	} else {
		results, err = fill.GenerateBatch(ctx, def, s, seeds, workersFlag)
		if err != nil {
			return err
		}
	}

	failed := 0
	for _, br := range results {
		if br.Err != nil {
			failed++
			fmt.Fprintf(out, "seed=%d error=%v\n", br.Seed, br.Err)
			continue
		}

		settings := s.Clone()
		settings.Seed = br.Seed
		rec, err := storage.NewRecord(settings, br.Result)
		if err != nil {
			return err
		}

		if store != nil {
			if err := store.SaveSeed(ctx, rec); err != nil {
				return err
			}
			events.Emit(events.LevelInfo, "seed.stored", "", map[string]interface{}{
				"id":   rec.ID.String(),
				"hash": rec.Hash,
			})
		}
		if pub != nil {
			if err := pub.PublishSeed(rec); err != nil {
				events.Emit(events.LevelWarn, "system.error", "seed publish failed", map[string]interface{}{
					"hash":  rec.Hash,
					"error": err.Error(),
				})
			}
		}
		if outPath != "" {
			if err := writeSeedFile(outputFile(rec), rec); err != nil {
				return err
			}
		}

		printResult(out, rec)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d seeds failed", failed, len(results))
	}
	return nil
}

// outputFile is --out itself for a single seed and <hash>.json inside it for
// a batch.
func outputFile(rec *storage.SeedRecord) string {
	if countFlag == 1 {
		return outPath
	}
	return filepath.Join(outPath, rec.Hash+".json")
}

func writeSeedFile(path string, rec *storage.SeedRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	b, err := json.MarshalIndent(seedFile{Settings: string(rec.Settings), SeedRecord: rec}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seed: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}
	return nil
}

func readSeedFile(path string) (*storage.SeedRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f seedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if f.SeedRecord == nil || f.Hash == "" {
		return nil, fmt.Errorf("%s: not a seed file", path)
	}
	f.SeedRecord.Settings = []byte(f.Settings)
	return f.SeedRecord, nil
}

func printResult(w io.Writer, rec *storage.SeedRecord) {
	fmt.Fprintf(w, "%s  seed=%d attempt=%d logic=%s spheres=%d\n",
		rec.Hash, rec.Seed, rec.Attempt, rec.Logic, len(rec.Payload.Spheres))
}
