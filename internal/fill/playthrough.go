package fill

import (
	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/layout"
	"github.com/AaronLay10/SeedEngine/internal/progress"
	"github.com/AaronLay10/SeedEngine/internal/world"
)

// SphereEntry is one progression pickup within a sphere.
type SphereEntry struct {
	Location world.Location `json:"location"`
	Check    string         `json:"check"`
	Item     string         `json:"item"`
}

// Sphere is the set of checks that become reachable together.
type Sphere struct {
	Index   int           `json:"index"`
	Checks  int           `json:"checks"`
	Entries []SphereEntry `json:"entries"`
}

// Playthrough is a forward simulation of a layout from the starting progress.
type Playthrough struct {
	Spheres     []Sphere `json:"spheres"`
	GoalReached bool     `json:"goal_reached"`
	Collected   int      `json:"collected"`
	Unreachable int      `json:"unreachable"`
}

// Simulate plays l from scratch under s.Logic. Each round collects every
// check reachable with the progress of the previous rounds; the round is
// recorded as a sphere listing its progression pickups. Junk is collected
// but not listed.
func Simulate(g *world.Graph, l *layout.Layout, s *config.Settings) *Playthrough {
	p := progress.New(s)
	collected := make([]bool, g.NumChecks())
	pt := &Playthrough{}

	for {
		var round []world.CheckID
		for _, id := range g.ReachableChecks(p, s.Logic) {
			if collected[id] {
				continue
			}
			if !g.Check(id).IsQuest() && !l.IsSet(id) {
				continue
			}
			round = append(round, id)
		}
		if len(round) == 0 {
			break
		}

		sphere := Sphere{Index: len(pt.Spheres), Checks: len(round)}
		for _, id := range round {
			c := g.Check(id)
			r := contents(g, l, id)
			collected[id] = true
			if isProgression(s, r) {
				sphere.Entries = append(sphere.Entries, SphereEntry{
					Location: c.Location,
					Check:    c.Name,
					Item:     r.String(),
				})
			}
		}
		// Apply after the round so a sphere only uses earlier spheres.
		for _, id := range round {
			p.Add(contents(g, l, id))
		}
		pt.Collected += len(round)
		pt.Spheres = append(pt.Spheres, sphere)
	}

	pt.GoalReached = g.GoalReachable(p, s.Logic)
	for _, id := range g.FillableChecks() {
		if !collected[id] {
			pt.Unreachable++
		}
	}
	return pt
}

func isProgression(s *config.Settings, r item.Randomizable) bool {
	if r.IsGoal() {
		return r.Progression()
	}
	return Progression(s, r.Kind)
}

// contents returns what a collected check yields.
func contents(g *world.Graph, l *layout.Layout, id world.CheckID) item.Randomizable {
	if c := g.Check(id); c.IsQuest() {
		return *c.Quest
	}
	return l.MustGet(id)
}
