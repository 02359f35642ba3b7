// Package logic holds the per-tier predicates that gate paths and checks.
package logic

import (
	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/progress"
)

// Predicate is a pure test over accumulated progress.
type Predicate func(p *progress.Progress) bool

// Logic bundles up to one predicate per logic mode.
type Logic struct {
	tiers [config.NumLogicModes]Predicate
}

func always(*progress.Progress) bool { return true }

// Free is the unconditional logic.
func Free() Logic {
	return Normal(always)
}

// Normal returns logic that only defines the normal tier; every more
// permissive mode inherits it.
func Normal(p Predicate) Logic {
	return New(p, nil, nil, nil, nil)
}

// New builds logic from one optional predicate per tier, strictest first.
func New(normal, hard, glitchBasic, glitchAdvanced, glitchHell Predicate) Logic {
	return Logic{tiers: [config.NumLogicModes]Predicate{normal, hard, glitchBasic, glitchAdvanced, glitchHell}}
}

// With returns a copy of l with the predicate for mode replaced.
func (l Logic) With(mode config.LogicMode, p Predicate) Logic {
	l.tiers[mode] = p
	return l
}

// Defined reports whether any tier has a predicate.
func (l Logic) Defined() bool {
	for _, p := range l.tiers {
		if p != nil {
			return true
		}
	}
	return false
}

// Evaluate reports whether p satisfies l under mode. A mode passes if its own
// predicate or any stricter mode's predicate holds, so a more permissive mode
// never allows less. With nothing defined at or below mode the result is
// false. Logic with no predicates at all is a construction bug and panics.
func (l Logic) Evaluate(p *progress.Progress, mode config.LogicMode) bool {
	if !l.Defined() {
		panic("logic: evaluating logic with no predicates")
	}
	if !mode.Valid() {
		panic("logic: invalid mode " + mode.String())
	}
	for m := config.LogicNormal; m <= mode; m++ {
		if f := l.tiers[m]; f != nil && f(p) {
			return true
		}
	}
	return false
}

// All returns a predicate that holds when every ps holds.
func All(ps ...Predicate) Predicate {
	return func(p *progress.Progress) bool {
		for _, f := range ps {
			if !f(p) {
				return false
			}
		}
		return true
	}
}

// Any returns a predicate that holds when at least one ps holds.
func Any(ps ...Predicate) Predicate {
	return func(p *progress.Progress) bool {
		for _, f := range ps {
			if f(p) {
				return true
			}
		}
		return false
	}
}
