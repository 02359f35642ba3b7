package fill

import (
	"math/rand/v2"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/item"
)

// DefaultPadding fills checks left over once the pool is placed.
const DefaultPadding = item.RupeeGreen

// Pool is the set of items one attempt places. Every copy is distinct by
// instance index.
type Pool struct {
	Progression []item.Randomizable
	Junk        []item.Randomizable
	Padding     item.Kind
}

// Progression reports whether k can change reachability under s. Keys stop
// mattering under keysy and maiamai only matter under maiamai madness.
func Progression(s *config.Settings, k item.Kind) bool {
	switch {
	case k == item.Maiamai:
		return s.MaiamaiMadness
	case s.Keysy && isKey(k):
		return false
	}
	return k.Progression()
}

func isKey(k item.Kind) bool {
	for _, d := range item.Dungeons() {
		if k == d.SmallKey() || k == d.BossKey() {
			return true
		}
	}
	return false
}

// NewPool expands per-kind counts into instances in catalog order.
func NewPool(s *config.Settings, counts map[item.Kind]int) *Pool {
	p := &Pool{Padding: DefaultPadding}
	for _, k := range item.Kinds() {
		for i := 0; i < counts[k]; i++ {
			r := item.Of(k, i)
			if Progression(s, k) {
				p.Progression = append(p.Progression, r)
			} else {
				p.Junk = append(p.Junk, r)
			}
		}
	}
	return p
}

// Len returns the total number of items.
func (p *Pool) Len() int {
	return len(p.Progression) + len(p.Junk)
}

// Clone returns an independent copy.
func (p *Pool) Clone() *Pool {
	return &Pool{
		Progression: append([]item.Randomizable(nil), p.Progression...),
		Junk:        append([]item.Randomizable(nil), p.Junk...),
		Padding:     p.Padding,
	}
}

// Take removes one copy of want, ignoring its instance and preferring the
// highest one, and returns it.
func (p *Pool) Take(want item.Randomizable) (item.Randomizable, bool) {
	for _, list := range []*[]item.Randomizable{&p.Progression, &p.Junk} {
		for i := len(*list) - 1; i >= 0; i-- {
			if r := (*list)[i]; r.SameAs(want) {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return r, true
			}
		}
	}
	return item.Randomizable{}, false
}

// Counts returns how many copies of each kind remain.
func (p *Pool) Counts() map[item.Kind]int {
	out := make(map[item.Kind]int)
	for _, r := range p.Progression {
		out[r.Kind]++
	}
	for _, r := range p.Junk {
		out[r.Kind]++
	}
	return out
}

func (p *Pool) shuffle(rng *rand.Rand) {
	rng.Shuffle(len(p.Progression), func(i, j int) {
		p.Progression[i], p.Progression[j] = p.Progression[j], p.Progression[i]
	})
	rng.Shuffle(len(p.Junk), func(i, j int) {
		p.Junk[i], p.Junk[j] = p.Junk[j], p.Junk[i]
	})
}
