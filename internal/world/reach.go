package world

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/progress"
)

// ReachableLocations returns every location reachable from the start
// location with p under mode.
func (g *Graph) ReachableLocations(p *progress.Progress, mode config.LogicMode) mapset.Set[Location] {
	return g.ReachableFrom(g.start, p, mode)
}

// ReachableFrom walks paths breadth first from start, following only paths
// whose logic holds. Cycles are expected; the visited set bounds the walk.
func (g *Graph) ReachableFrom(start Location, p *progress.Progress, mode config.LogicMode) mapset.Set[Location] {
	if _, ok := g.nodes[start]; !ok {
		panic(fmt.Sprintf("world: unknown location %q", start))
	}

	visited := mapset.New[Location]()
	queue := []Location{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited.Has(current) {
			continue
		}
		visited.Put(current)

		for _, path := range g.nodes[current].Paths {
			if visited.Has(path.Destination) {
				continue
			}
			if path.Logic.Evaluate(p, mode) {
				queue = append(queue, path.Destination)
			}
		}
	}

	return visited
}

// ReachableChecks returns, in ascending id order, every check at a reachable
// location whose own logic holds. Quest checks are included.
func (g *Graph) ReachableChecks(p *progress.Progress, mode config.LogicMode) []CheckID {
	return g.checksAt(g.ReachableLocations(p, mode), p, mode)
}

func (g *Graph) checksAt(locs mapset.Set[Location], p *progress.Progress, mode config.LogicMode) []CheckID {
	var out []CheckID
	locs.Each(func(loc Location) {
		for _, id := range g.nodes[loc].Checks {
			if g.checks[id].Logic.Evaluate(p, mode) {
				out = append(out, id)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CanReach reports whether loc is reachable from the start location.
func (g *Graph) CanReach(loc Location, p *progress.Progress, mode config.LogicMode) bool {
	return g.ReachableLocations(p, mode).Has(loc)
}

// GoalReachable reports whether the victory location is reachable.
func (g *Graph) GoalReachable(p *progress.Progress, mode config.LogicMode) bool {
	return g.CanReach(g.goal, p, mode)
}
