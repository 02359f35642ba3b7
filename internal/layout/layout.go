// Package layout holds the result of a fill: which item sits at which check.
package layout

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"lukechampine.com/blake3"

	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/world"
)

// Layout maps checks of one graph to the items placed there. Entries are
// written once and never overwritten. A Layout belongs to a single fill
// attempt and is not safe for concurrent use.
type Layout struct {
	graph *world.Graph
	slots []item.Randomizable
	set   []bool
	n     int
}

// New returns an empty layout for g.
func New(g *world.Graph) *Layout {
	return &Layout{
		graph: g,
		slots: make([]item.Randomizable, g.NumChecks()),
		set:   make([]bool, g.NumChecks()),
	}
}

// Set places r at check id. Setting a check twice, setting a quest check or
// setting an unknown check is a bug and panics.
func (l *Layout) Set(id world.CheckID, r item.Randomizable) {
	c := l.graph.Check(id)
	if c.IsQuest() {
		panic(fmt.Sprintf("layout: %q is a quest check", c.Name))
	}
	if !r.Valid() {
		panic(fmt.Sprintf("layout: invalid item for %q", c.Name))
	}
	if l.set[id] {
		panic(fmt.Sprintf("layout: %q already holds %s", c.Name, l.slots[id]))
	}
	l.slots[id] = r
	l.set[id] = true
	l.n++
}

// Get returns the item at id, if one has been placed.
func (l *Layout) Get(id world.CheckID) (item.Randomizable, bool) {
	l.graph.Check(id)
	return l.slots[id], l.set[id]
}

// GetByName returns the item at the named check. An unknown name panics.
func (l *Layout) GetByName(name string) (item.Randomizable, bool) {
	return l.Get(l.graph.MustLookup(name))
}

// MustGet returns the item at id for callers that know it was placed.
func (l *Layout) MustGet(id world.CheckID) item.Randomizable {
	r, ok := l.Get(id)
	if !ok {
		panic(fmt.Sprintf("layout: %q is empty", l.graph.Check(id).Name))
	}
	return r
}

// IsSet reports whether id holds an item.
func (l *Layout) IsSet(id world.CheckID) bool {
	_, ok := l.Get(id)
	return ok
}

// Len returns the number of placements.
func (l *Layout) Len() int {
	return l.n
}

// Empty returns the fillable checks that hold nothing yet, in id order.
func (l *Layout) Empty() []world.CheckID {
	var out []world.CheckID
	for _, id := range l.graph.FillableChecks() {
		if !l.set[id] {
			out = append(out, id)
		}
	}
	return out
}

// Complete reports whether every fillable check holds an item.
func (l *Layout) Complete() bool {
	return l.n == len(l.graph.FillableChecks())
}

// Clone returns an independent copy over the same graph.
func (l *Layout) Clone() *Layout {
	return &Layout{
		graph: l.graph,
		slots: append([]item.Randomizable(nil), l.slots...),
		set:   append([]bool(nil), l.set...),
		n:     l.n,
	}
}

// Entry is one placement in external form.
type Entry struct {
	Location world.Location `json:"location"`
	Check    string         `json:"check"`
	Item     string         `json:"item"`
	Instance int            `json:"instance,omitempty"`
	GameID   uint16         `json:"game_id"`
}

// Entries returns every placement in check id order.
func (l *Layout) Entries() []Entry {
	out := make([]Entry, 0, l.n)
	for i, ok := range l.set {
		if !ok {
			continue
		}
		c := l.graph.Check(world.CheckID(i))
		r := l.slots[i]
		out = append(out, Entry{
			Location: c.Location,
			Check:    c.Name,
			Item:     itemID(r),
			Instance: int(r.Instance),
			GameID:   r.GameID(),
		})
	}
	return out
}

func itemID(r item.Randomizable) string {
	if r.IsGoal() {
		return r.Goal.ID()
	}
	return r.Kind.ID()
}

// FromEntries rebuilds a layout for g from stored entries. Unlike Set, bad
// input here comes from outside the process and is reported as an error.
func FromEntries(g *world.Graph, entries []Entry) (*Layout, error) {
	l := New(g)
	placed := make(map[item.Randomizable]string, len(entries))
	for _, e := range entries {
		id, ok := g.Lookup(e.Check)
		if !ok {
			return nil, fmt.Errorf("unknown check %q", e.Check)
		}
		if g.Check(id).IsQuest() {
			return nil, fmt.Errorf("check %q is a quest check", e.Check)
		}
		if l.set[id] {
			return nil, fmt.Errorf("check %q listed twice", e.Check)
		}
		r, err := item.Parse(e.Item)
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", e.Check, err)
		}
		if r.IsGoal() {
			return nil, fmt.Errorf("check %q: quest flag %s cannot be placed", e.Check, r.Goal.ID())
		}
		if e.Instance < 0 || e.Instance > math.MaxUint16 {
			return nil, fmt.Errorf("check %q: instance %d out of range", e.Check, e.Instance)
		}
		r.Instance = uint16(e.Instance)
		if other, dup := placed[r]; dup {
			return nil, fmt.Errorf("check %q: %s already placed at %q", e.Check, r, other)
		}
		placed[r] = e.Check
		l.Set(id, r)
	}
	return l, nil
}

// MarshalJSON encodes the layout as its entry list.
func (l *Layout) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

// Hash fingerprints the seed and every placement. Equal layouts of the same
// graph and seed always hash equal; it is used as the display hash and the
// archive key.
func (l *Layout) Hash(seed uint64) string {
	h := blake3.New(32, nil)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	h.Write(buf[:])
	for i, ok := range l.set {
		if !ok {
			continue
		}
		h.Write([]byte(l.graph.Check(world.CheckID(i)).Name))
		h.Write([]byte{0})
		binary.LittleEndian.PutUint16(buf[:2], l.slots[i].GameID())
		binary.LittleEndian.PutUint16(buf[2:4], l.slots[i].Instance)
		h.Write(buf[:4])
	}
	return hex.EncodeToString(h.Sum(nil)[:10])
}
