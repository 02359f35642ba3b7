package world

import (
	"errors"
	"fmt"

	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/logic"
)

// Construction error kinds, matched with errors.Is.
var (
	ErrDanglingEdge      = errors.New("path to unknown location")
	ErrDuplicateCheck    = errors.New("duplicate check name")
	ErrDuplicateLocation = errors.New("duplicate location")
	ErrUnknownStart      = errors.New("unknown start location")
	ErrUnknownGoal       = errors.New("unknown goal location")
	ErrEmptyLogic        = errors.New("logic has no predicates")
)

// ConstructionError reports a malformed graph. It is never retryable.
type ConstructionError struct {
	Kind     error
	Location Location
	Check    string
	Detail   string
}

func (e *ConstructionError) Error() string {
	msg := "world: " + e.Kind.Error()
	if e.Location != "" {
		msg += fmt.Sprintf(" at %q", e.Location)
	}
	if e.Check != "" {
		msg += fmt.Sprintf(" check %q", e.Check)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConstructionError) Unwrap() error {
	return e.Kind
}

// CheckDef declares a check before ids are assigned.
type CheckDef struct {
	Name  string
	Logic logic.Logic
	Quest *item.Randomizable
	Info  *LocationInfo
}

// NewCheck declares a fillable check.
func NewCheck(name string, l logic.Logic, info LocationInfo) CheckDef {
	return CheckDef{Name: name, Logic: l, Info: &info}
}

// QuestCheck declares a check that always holds r.
func QuestCheck(name string, l logic.Logic, r item.Randomizable) CheckDef {
	return CheckDef{Name: name, Logic: l, Quest: &r}
}

// Edge declares a path to dest.
func Edge(dest Location, l logic.Logic) Path {
	return Path{Destination: dest, Logic: l}
}

type nodeDef struct {
	loc    Location
	checks []CheckDef
	paths  []Path
}

// Builder collects locations and validates them into a Graph. Problems are
// recorded as they are found and reported together by Build.
type Builder struct {
	nodes []*nodeDef
	index map[Location]*nodeDef
	errs  []error
}

func NewBuilder() *Builder {
	return &Builder{index: make(map[Location]*nodeDef)}
}

// Add declares a location with its checks and outgoing paths.
func (b *Builder) Add(loc Location, checks []CheckDef, paths []Path) *Builder {
	if _, exists := b.index[loc]; exists {
		b.errs = append(b.errs, &ConstructionError{Kind: ErrDuplicateLocation, Location: loc})
		return b
	}
	n := &nodeDef{
		loc:    loc,
		checks: append([]CheckDef(nil), checks...),
		paths:  append([]Path(nil), paths...),
	}
	b.nodes = append(b.nodes, n)
	b.index[loc] = n
	return b
}

// Connect appends a path to an already declared location. It is how
// settings-conditional edges are layered onto the base tables.
func (b *Builder) Connect(from Location, p Path) *Builder {
	n, ok := b.index[from]
	if !ok {
		b.errs = append(b.errs, &ConstructionError{Kind: ErrDanglingEdge, Location: from, Detail: "connect from undeclared location"})
		return b
	}
	n.paths = append(n.paths, p)
	return b
}

// Build validates the declarations and freezes them into a Graph.
func (b *Builder) Build(start, goal Location) (*Graph, error) {
	errs := append([]error(nil), b.errs...)

	if _, ok := b.index[start]; !ok {
		errs = append(errs, &ConstructionError{Kind: ErrUnknownStart, Location: start})
	}
	if _, ok := b.index[goal]; !ok {
		errs = append(errs, &ConstructionError{Kind: ErrUnknownGoal, Location: goal})
	}

	g := &Graph{
		start:  start,
		goal:   goal,
		nodes:  make(map[Location]*Node, len(b.nodes)),
		byName: make(map[string]CheckID),
	}

	for _, def := range b.nodes {
		node := &Node{Location: def.loc}
		for _, c := range def.checks {
			if _, dup := g.byName[c.Name]; dup {
				errs = append(errs, &ConstructionError{Kind: ErrDuplicateCheck, Location: def.loc, Check: c.Name})
				continue
			}
			if !c.Logic.Defined() {
				errs = append(errs, &ConstructionError{Kind: ErrEmptyLogic, Location: def.loc, Check: c.Name})
			}
			if c.Quest == nil && c.Info == nil {
				c.Info = &LocationInfo{Region: string(def.loc)}
			}
			id := CheckID(len(g.checks))
			g.checks = append(g.checks, Check{
				ID:       id,
				Name:     c.Name,
				Location: def.loc,
				Logic:    c.Logic,
				Quest:    c.Quest,
				Info:     c.Info,
			})
			g.byName[c.Name] = id
			node.Checks = append(node.Checks, id)
		}
		for _, p := range def.paths {
			if _, ok := b.index[p.Destination]; !ok {
				errs = append(errs, &ConstructionError{Kind: ErrDanglingEdge, Location: def.loc, Detail: fmt.Sprintf("to %q", p.Destination)})
				continue
			}
			if !p.Logic.Defined() {
				errs = append(errs, &ConstructionError{Kind: ErrEmptyLogic, Location: def.loc, Detail: fmt.Sprintf("path to %q", p.Destination)})
				continue
			}
			node.Paths = append(node.Paths, p)
		}
		g.order = append(g.order, def.loc)
		g.nodes[def.loc] = node
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g, nil
}
