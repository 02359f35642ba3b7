// Package fill places a pool of items into a world graph so that the goal
// stays reachable, using assumed fill.
package fill

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/layout"
	"github.com/AaronLay10/SeedEngine/internal/progress"
	"github.com/AaronLay10/SeedEngine/internal/world"
)

// pcgStream is the fixed second PCG word; the seed supplies the first.
const pcgStream = 0x5eed5eed5eed5eed

// Result is a finished, verified attempt.
type Result struct {
	Seed        uint64         `json:"seed"`
	Attempt     int            `json:"attempt"`
	Hash        string         `json:"hash"`
	Layout      *layout.Layout `json:"layout"`
	Playthrough *Playthrough   `json:"playthrough"`
}

// Engine fills one graph with one pool. The graph and pool are read-only, so
// one Engine may run attempts for different seeds concurrently.
type Engine struct {
	graph    *world.Graph
	settings *config.Settings
	pool     *Pool
}

func NewEngine(g *world.Graph, s *config.Settings, pool *Pool) *Engine {
	return &Engine{graph: g, settings: s, pool: pool}
}

// Fill runs a single attempt with seed. Generation failures come back as
// *GenerationError; bad plando entries as *config.ValidationError.
func (e *Engine) Fill(ctx context.Context, seed uint64) (*Result, error) {
	g := e.graph
	s := e.settings
	mode := s.Logic
	rng := rand.New(rand.NewPCG(seed, pcgStream))
	fail := func(cause error, permanent bool, format string, args ...interface{}) error {
		return &GenerationError{Seed: seed, Cause: cause, Permanent: permanent, Detail: fmt.Sprintf(format, args...)}
	}

	pool := e.pool.Clone()
	l := layout.New(g)
	if err := e.preplace(l, pool); err != nil {
		return nil, err
	}

	if empty := len(l.Empty()); pool.Len() > empty {
		return nil, fail(ErrUnfillable, true, "%d items for %d empty checks", pool.Len(), empty)
	}
	pool.shuffle(rng)

	base := progress.New(s)
	limit := s.Iterations()
	items := pool.Progression
	for n := 1; len(items) > 0; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n > limit {
			return nil, fail(ErrIterationCap, false, "%d placements", limit)
		}

		r := items[len(items)-1]
		items = items[:len(items)-1]

		assumed := base.Clone()
		for _, rest := range items {
			assumed.Add(rest)
		}
		have := Sweep(g, l, assumed, mode)

		var candidates []world.CheckID
		for _, id := range g.ReachableChecks(have, mode) {
			if !g.Check(id).IsQuest() && !l.IsSet(id) {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) == 0 {
			return nil, fail(ErrUnfillable, false, "no reachable empty check for %s", r)
		}
		l.Set(candidates[rng.IntN(len(candidates))], r)
	}

	empty := l.Empty()
	rng.Shuffle(len(empty), func(i, j int) { empty[i], empty[j] = empty[j], empty[i] })
	for i, r := range pool.Junk {
		l.Set(empty[i], r)
	}
	pad := e.pool.Counts()[pool.Padding]
	for _, id := range empty[len(pool.Junk):] {
		l.Set(id, item.Of(pool.Padding, pad))
		pad++
	}

	if !l.Complete() {
		return nil, fail(ErrIncompleteLayout, false, "%d checks empty", len(l.Empty()))
	}
	pt := Simulate(g, l, s)
	if !pt.GoalReached {
		return nil, fail(ErrGoalUnreachable, false, "goal %q not reached after %d spheres", g.Goal(), len(pt.Spheres))
	}

	for _, sp := range pt.Spheres {
		events.Emit(events.LevelDebug, "fill.sphere", "", map[string]interface{}{
			"seed":   seed,
			"index":  sp.Index,
			"checks": sp.Checks,
		})
	}
	events.Emit(events.LevelDebug, "fill.completed", "", map[string]interface{}{
		"seed":    seed,
		"spheres": len(pt.Spheres),
		"checks":  l.Len(),
	})

	return &Result{
		Seed:        seed,
		Hash:        l.Hash(seed),
		Layout:      l,
		Playthrough: pt,
	}, nil
}

// preplace applies the plando table, taking each placed copy out of the pool.
func (e *Engine) preplace(l *layout.Layout, pool *Pool) error {
	for _, name := range e.settings.PlandoChecks() {
		id, ok := e.graph.Lookup(name)
		if !ok {
			return &config.ValidationError{Field: "plando", Detail: fmt.Sprintf("unknown check %q", name)}
		}
		if e.graph.Check(id).IsQuest() {
			return &config.ValidationError{Field: "plando", Detail: fmt.Sprintf("%q is a quest check", name)}
		}
		r, err := item.Parse(e.settings.Plando[name])
		if err != nil {
			return &config.ValidationError{Field: "plando", Detail: err.Error()}
		}
		if r.IsGoal() {
			return &config.ValidationError{Field: "plando", Detail: fmt.Sprintf("%q: quest flags cannot be placed", name)}
		}
		taken, ok := pool.Take(r)
		if !ok {
			return &config.ValidationError{Field: "plando", Detail: fmt.Sprintf("%q: no %s left in the pool", name, r.Kind.ID())}
		}
		l.Set(id, taken)
	}
	return nil
}
