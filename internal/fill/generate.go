package fill

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/world"
)

// DeriveSeed returns the seed for a retry. Attempt 0 uses base unchanged so
// a seed reported to a user reproduces exactly.
func DeriveSeed(base uint64, attempt int) uint64 {
	if attempt == 0 {
		return base
	}
	// splitmix64
	z := base + uint64(attempt)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Generate fills def under s, retrying retryable failures with derived seeds
// until s.Attempts() attempts have been made.
func Generate(ctx context.Context, def *world.Definition, s *config.Settings) (*Result, error) {
	engine := NewEngine(def.Graph, s, NewPool(s, def.Pool))

	var last error
	for attempt := 0; attempt < s.Attempts(); attempt++ {
		seed := DeriveSeed(s.Seed, attempt)
		events.Emit(events.LevelDebug, "fill.started", "", map[string]interface{}{
			"seed":    seed,
			"attempt": attempt,
			"logic":   s.Logic.String(),
		})

		res, err := engine.Fill(ctx, seed)
		if err == nil {
			res.Attempt = attempt
			events.Emit(events.LevelInfo, "seed.generated", "", map[string]interface{}{
				"seed":    seed,
				"attempt": attempt,
				"hash":    res.Hash,
				"spheres": len(res.Playthrough.Spheres),
			})
			return res, nil
		}

		var ge *GenerationError
		if errors.As(err, &ge) {
			ge.Attempt = attempt
		}
		last = err
		if !IsRetryable(err) {
			break
		}
		events.Emit(events.LevelWarn, "fill.retry", "retrying seed generation", map[string]interface{}{
			"seed":    seed,
			"attempt": attempt,
			"error":   err.Error(),
		})
	}

	events.Emit(events.LevelError, "seed.failed", "", map[string]interface{}{
		"seed":  s.Seed,
		"error": last.Error(),
	})
	return nil, last
}

// BatchResult is the outcome for one seed of a batch.
type BatchResult struct {
	Seed   uint64
	Result *Result
	Err    error
}

// GenerateBatch runs Generate for every seed with at most workers attempts
// in flight. The graph is shared; each seed gets its own settings copy,
// progress and layout. Per-seed failures are reported in the results;
// only cancellation aborts the batch.
func GenerateBatch(ctx context.Context, def *world.Definition, s *config.Settings, seeds []uint64, workers int) ([]BatchResult, error) {
	out := make([]BatchResult, len(seeds))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, seed := range seeds {
		g.Go(func() error {
			settings := s.Clone()
			settings.Seed = seed
			res, err := Generate(ctx, def, settings)
			out[i] = BatchResult{Seed: seed, Result: res, Err: err}
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
