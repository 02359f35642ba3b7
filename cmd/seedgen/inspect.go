package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/fill"
	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/layout"
	"github.com/AaronLay10/SeedEngine/internal/progress"
	"github.com/AaronLay10/SeedEngine/internal/storage"
	"github.com/AaronLay10/SeedEngine/internal/storage/backend"
	"github.com/AaronLay10/SeedEngine/internal/world"
)

// findSeed reads arg as a seed file, or failing that looks it up in the
// archive by id or hash.
func findSeed(ctx context.Context, arg string) (*storage.SeedRecord, error) {
	if _, err := os.Stat(arg); err == nil {
		return readSeedFile(arg)
	}

	svc, err := config.ServiceFromEnv()
	if err != nil {
		return nil, err
	}
	store, err := backend.Open(svc)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if id, err := uuid.Parse(arg); err == nil {
		return store.GetSeed(ctx, id)
	}
	return store.GetSeedByHash(ctx, arg)
}

func runVerify(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	rec, err := findSeed(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	s, err := rec.ParseSettings()
	if err != nil {
		return err
	}
	def, err := loadWorld(s)
	if err != nil {
		return err
	}

	pt, err := verifyRecord(def.Graph, s, rec)
	if err != nil {
		return err
	}
	events.Emit(events.LevelInfo, "seed.verified", "", map[string]interface{}{
		"hash":    rec.Hash,
		"spheres": len(pt.Spheres),
	})

	if spoilerFlag {
		for _, sp := range pt.Spheres {
			fmt.Fprintf(out, "Sphere %d\n", sp.Index)
			for _, e := range sp.Entries {
				fmt.Fprintf(out, "  %-32s %s\n", e.Check, e.Item)
			}
		}
	}
	fmt.Fprintf(out, "%s  ok  spheres=%d collected=%d\n", rec.Hash, len(pt.Spheres), pt.Collected)
	return nil
}

// verifyRecord rebuilds the layout of rec on g and replays it.
func verifyRecord(g *world.Graph, s *config.Settings, rec *storage.SeedRecord) (*fill.Playthrough, error) {
	l, err := layout.FromEntries(g, rec.Payload.Layout)
	if err != nil {
		return nil, err
	}
	if !l.Complete() {
		return nil, fmt.Errorf("%s: %w: %d checks empty", rec.Hash, fill.ErrIncompleteLayout, len(l.Empty()))
	}
	if hash := l.Hash(rec.FillSeed()); hash != rec.Hash {
		return nil, fmt.Errorf("%s: layout hashes to %s", rec.Hash, hash)
	}
	pt := fill.Simulate(g, l, s)
	if !pt.GoalReached {
		return nil, fmt.Errorf("%s: %w: %d checks unreachable", rec.Hash, fill.ErrGoalUnreachable, pt.Unreachable)
	}
	return pt, nil
}

type locationSummary struct {
	Name   world.Location   `json:"name"`
	Checks []string         `json:"checks"`
	Paths  []world.Location `json:"paths"`
}

type graphSummary struct {
	Start     world.Location    `json:"start"`
	Goal      world.Location    `json:"goal"`
	Logic     string            `json:"logic"`
	Checks    int               `json:"checks"`
	Quests    int               `json:"quests"`
	Paths     int               `json:"paths"`
	Pool      map[string]int    `json:"pool"`
	Beatable  bool              `json:"beatable"`
	Locations []locationSummary `json:"locations"`
}

func summarize(def *world.Definition, s *config.Settings) graphSummary {
	g := def.Graph
	sum := graphSummary{
		Start:  g.Start(),
		Goal:   g.Goal(),
		Logic:  s.Logic.String(),
		Checks: len(g.FillableChecks()),
		Quests: len(g.QuestChecks()),
		Paths:  g.NumPaths(),
		Pool:   make(map[string]int, len(def.Pool)),
	}

	full := progress.New(s)
	for k, n := range def.Pool {
		sum.Pool[k.String()] = n
		for i := 0; i < n; i++ {
			full.Add(item.Of(k, i))
		}
	}
	sum.Beatable = g.GoalReachable(fill.Sweep(g, layout.New(g), full, s.Logic), s.Logic)

	for _, loc := range g.Locations() {
		node, _ := g.Node(loc)
		ls := locationSummary{Name: loc, Checks: []string{}, Paths: []world.Location{}}
		for _, id := range node.Checks {
			ls.Checks = append(ls.Checks, g.Check(id).Name)
		}
		for _, p := range node.Paths {
			ls.Paths = append(ls.Paths, p.Destination)
		}
		sum.Locations = append(sum.Locations, ls)
	}
	return sum
}

func runGraph(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	def, err := loadWorld(s)
	if err != nil {
		return err
	}
	sum := summarize(def, s)

	if jsonFlag {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	poolSize := 0
	kinds := make([]string, 0, len(sum.Pool))
	for k, n := range sum.Pool {
		poolSize += n
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Fprintf(out, "start:     %s\n", sum.Start)
	fmt.Fprintf(out, "goal:      %s\n", sum.Goal)
	fmt.Fprintf(out, "logic:     %s\n", sum.Logic)
	fmt.Fprintf(out, "locations: %d\n", len(sum.Locations))
	fmt.Fprintf(out, "paths:     %d\n", sum.Paths)
	fmt.Fprintf(out, "checks:    %d (+%d quest)\n", sum.Checks, sum.Quests)
	fmt.Fprintf(out, "pool:      %d items\n", poolSize)
	for _, k := range kinds {
		fmt.Fprintf(out, "  %-20s %d\n", k, sum.Pool[k])
	}
	fmt.Fprintf(out, "beatable:  %v\n", sum.Beatable)
	return nil
}

func openArchive() (storage.Store, error) {
	svc, err := config.ServiceFromEnv()
	if err != nil {
		return nil, err
	}
	return backend.Open(svc)
}

func runSeedsList(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	seeds, err := store.ListSeeds(cmd.Context(), storage.ClampLimit(limitFlag))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range seeds {
		fmt.Fprintf(out, "%s  %s  seed=%d logic=%s  %s\n",
			s.ID, s.Hash, s.Seed, s.Logic, s.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runSeedsShow(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	var rec *storage.SeedRecord
	if id, perr := uuid.Parse(args[0]); perr == nil {
		rec, err = store.GetSeed(cmd.Context(), id)
	} else {
		rec, err = store.GetSeedByHash(cmd.Context(), args[0])
	}
	if errors.Is(err, storage.ErrSeedNotFound) {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(seedFile{Settings: string(rec.Settings), SeedRecord: rec})
}
