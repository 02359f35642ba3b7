package fill

import (
	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/layout"
	"github.com/AaronLay10/SeedEngine/internal/progress"
	"github.com/AaronLay10/SeedEngine/internal/world"
)

// Sweep returns base grown by everything collectable from the start under
// mode: quest items at reachable quest checks and items already placed at
// reachable checks, repeated until nothing new is found. base is not
// modified.
func Sweep(g *world.Graph, l *layout.Layout, base *progress.Progress, mode config.LogicMode) *progress.Progress {
	p := base.Clone()
	collected := make([]bool, g.NumChecks())
	for {
		changed := false
		for _, id := range g.ReachableChecks(p, mode) {
			if collected[id] {
				continue
			}
			if c := g.Check(id); c.IsQuest() {
				p.Add(*c.Quest)
			} else if r, ok := l.Get(id); ok {
				p.Add(r)
			} else {
				continue
			}
			collected[id] = true
			changed = true
		}
		if !changed {
			return p
		}
	}
}
