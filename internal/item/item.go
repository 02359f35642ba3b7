// Package item defines the placeable vocabulary of the randomizer: item
// kinds, quest goals, and the Randomizable value the fill engine assigns to
// checks.
package item

import (
	"fmt"
)

// Variant tags which half of a Randomizable is meaningful.
type Variant uint8

const (
	VariantInvalid Variant = iota
	VariantItem
	VariantGoal
)

// Randomizable is anything that can occupy a check. Copies of the same kind
// are told apart by Instance so every physical copy is its own layout slot.
// Two values are equal only if variant, kind/goal and instance all match.
type Randomizable struct {
	Variant  Variant
	Kind     Kind
	Goal     Goal
	Instance uint16
}

// Of returns the instance-th copy of kind.
func Of(k Kind, instance int) Randomizable {
	return Randomizable{Variant: VariantItem, Kind: k, Instance: uint16(instance)}
}

// GoalOf returns the quest flag g as a Randomizable.
func GoalOf(g Goal) Randomizable {
	return Randomizable{Variant: VariantGoal, Goal: g}
}

// IsGoal reports whether r is a quest flag.
func (r Randomizable) IsGoal() bool {
	return r.Variant == VariantGoal
}

// Valid reports whether r names a known kind or goal.
func (r Randomizable) Valid() bool {
	switch r.Variant {
	case VariantItem:
		return r.Kind.Valid()
	case VariantGoal:
		return r.Goal.Valid()
	}
	return false
}

// Progression reports whether r can change reachability in the default
// classification. Quest flags always can.
func (r Randomizable) Progression() bool {
	switch r.Variant {
	case VariantItem:
		return r.Kind.Progression()
	case VariantGoal:
		return true
	}
	return false
}

// SameAs reports whether r and o are copies of the same thing, ignoring the
// instance index.
func (r Randomizable) SameAs(o Randomizable) bool {
	return r.Variant == o.Variant && r.Kind == o.Kind && r.Goal == o.Goal
}

// Name returns the display name without the instance suffix.
func (r Randomizable) Name() string {
	switch r.Variant {
	case VariantItem:
		return r.Kind.String()
	case VariantGoal:
		return r.Goal.String()
	}
	return "Invalid"
}

func (r Randomizable) String() string {
	if r.Variant == VariantItem && r.Kind.Counted() {
		return fmt.Sprintf("%s #%d", r.Name(), r.Instance+1)
	}
	return r.Name()
}

// GameID maps r to the numeric id the content patcher writes. It is total over
// valid values and panics on anything else.
func (r Randomizable) GameID() uint16 {
	switch r.Variant {
	case VariantItem:
		if r.Kind.Valid() {
			return kinds[r.Kind].gameID
		}
	case VariantGoal:
		if r.Goal.Valid() {
			return goalFlagBase + uint16(r.Goal)
		}
	}
	panic(fmt.Sprintf("item: no game id for %#v", r))
}

// Parse resolves a catalog name (kind or goal) into a Randomizable with
// instance 0.
func Parse(name string) (Randomizable, error) {
	if k, err := ParseKind(name); err == nil {
		return Of(k, 0), nil
	}
	if g, err := ParseGoal(name); err == nil {
		return GoalOf(g), nil
	}
	return Randomizable{}, fmt.Errorf("unknown item or goal: %q", name)
}
