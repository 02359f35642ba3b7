// Package world models the location graph: locations joined by logic-gated
// paths, each holding the checks the fill engine assigns items to.
package world

import (
	"fmt"

	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/logic"
)

// Location names a traversable place. It carries no data of its own.
type Location string

// CheckID is the interned identity of a check, resolved when the graph is
// built. IDs are dense indices in declaration order.
type CheckID int

// LocationInfo describes where a fillable check lives in the game data. The
// engine never interprets it; the content patcher does.
type LocationInfo struct {
	Region string `json:"region" yaml:"region"`
	Flag   uint16 `json:"flag,omitempty" yaml:"flag,omitempty"`
}

// Check is one reward slot. Quest checks hold a fixed item and are never
// filled; every other check carries LocationInfo and starts empty.
type Check struct {
	ID       CheckID
	Name     string
	Location Location
	Logic    logic.Logic
	Quest    *item.Randomizable
	Info     *LocationInfo
}

// IsQuest reports whether the check holds a fixed quest item.
func (c *Check) IsQuest() bool {
	return c.Quest != nil
}

// Path is a directed edge. The way back, if any, is a separate Path.
type Path struct {
	Destination Location
	Logic       logic.Logic
}

// Node is the static content of one location.
type Node struct {
	Location Location
	Checks   []CheckID
	Paths    []Path
}

// Graph is the immutable world. It is safe to share across goroutines.
type Graph struct {
	start  Location
	goal   Location
	order  []Location
	nodes  map[Location]*Node
	checks []Check
	byName map[string]CheckID
}

// Start returns the spawn location.
func (g *Graph) Start() Location { return g.start }

// Goal returns the victory location.
func (g *Graph) Goal() Location { return g.goal }

// Locations returns every location in declaration order.
func (g *Graph) Locations() []Location {
	return append([]Location(nil), g.order...)
}

// Node returns the node for loc.
func (g *Graph) Node(loc Location) (*Node, bool) {
	n, ok := g.nodes[loc]
	return n, ok
}

// NumChecks returns the number of checks, quest checks included.
func (g *Graph) NumChecks() int {
	return len(g.checks)
}

// Check returns the check with the given id. An unknown id is a bug and
// panics.
func (g *Graph) Check(id CheckID) *Check {
	if id < 0 || int(id) >= len(g.checks) {
		panic(fmt.Sprintf("world: unknown check id %d", id))
	}
	return &g.checks[id]
}

// Lookup resolves a check name.
func (g *Graph) Lookup(name string) (CheckID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// MustLookup resolves a check name and panics if it does not exist.
func (g *Graph) MustLookup(name string) CheckID {
	id, ok := g.byName[name]
	if !ok {
		panic(fmt.Sprintf("world: unknown check %q", name))
	}
	return id
}

// FillableChecks returns the ids of every non-quest check in ascending order.
func (g *Graph) FillableChecks() []CheckID {
	var out []CheckID
	for i := range g.checks {
		if !g.checks[i].IsQuest() {
			out = append(out, CheckID(i))
		}
	}
	return out
}

// QuestChecks returns the ids of every quest check in ascending order.
func (g *Graph) QuestChecks() []CheckID {
	var out []CheckID
	for i := range g.checks {
		if g.checks[i].IsQuest() {
			out = append(out, CheckID(i))
		}
	}
	return out
}

// NumPaths returns the total number of edges.
func (g *Graph) NumPaths() int {
	n := 0
	for _, node := range g.nodes {
		n += len(node.Paths)
	}
	return n
}
