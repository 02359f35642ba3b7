// Package progress tracks the capabilities a player has accumulated. Logic
// predicates are written against the query methods here.
package progress

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/item"
)

// Progress is a monotone capability set. Within one fill attempt it only
// grows; a fresh attempt starts from New again.
type Progress struct {
	settings *config.Settings
	counts   [item.NumKinds]int
	goals    mapset.Set[item.Goal]
}

// New returns the starting state: empty apart from the configured start items.
func New(s *config.Settings) *Progress {
	p := &Progress{
		settings: s,
		goals:    mapset.New[item.Goal](),
	}
	for _, k := range s.StartKinds() {
		p.Add(item.Of(k, 0))
	}
	return p
}

// Settings returns the settings the progress was created with.
func (p *Progress) Settings() *config.Settings {
	return p.settings
}

// Add records one more unit of r. Boolean kinds and goals are idempotent;
// counted kinds accumulate.
func (p *Progress) Add(r item.Randomizable) {
	switch r.Variant {
	case item.VariantItem:
		if !r.Kind.Valid() {
			return
		}
		if r.Kind.Counted() {
			p.counts[r.Kind]++
		} else {
			p.counts[r.Kind] = 1
		}
	case item.VariantGoal:
		if r.Goal.Valid() {
			p.goals.Put(r.Goal)
		}
	}
}

// Clone returns an independent copy.
func (p *Progress) Clone() *Progress {
	cpy := &Progress{
		settings: p.settings,
		counts:   p.counts,
		goals:    mapset.New[item.Goal](),
	}
	p.goals.Each(func(g item.Goal) {
		cpy.goals.Put(g)
	})
	return cpy
}

// Has reports whether at least one copy of k is held.
func (p *Progress) Has(k item.Kind) bool {
	return p.Count(k) > 0
}

// Count returns how many copies of k are held.
func (p *Progress) Count(k item.Kind) int {
	if !k.Valid() {
		return 0
	}
	return p.counts[k]
}

// HasGoal reports whether the quest flag g is set.
func (p *Progress) HasGoal(g item.Goal) bool {
	return p.goals.Has(g)
}
