package logic

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/progress"
)

func newProgress(kinds ...item.Kind) *progress.Progress {
	p := progress.New(config.Default())
	for i, k := range kinds {
		p.Add(item.Of(k, i))
	}
	return p
}

func TestFreeAlwaysHolds(t *testing.T) {
	p := newProgress()
	for _, mode := range config.LogicModes() {
		if !Free().Evaluate(p, mode) {
			t.Errorf("free logic false under %s", mode)
		}
	}
}

func TestNormalOnlyDegradesToEveryTier(t *testing.T) {
	l := Normal(func(p *progress.Progress) bool { return p.HasBombs() })
	for _, p := range []*progress.Progress{newProgress(), newProgress(item.Bombs)} {
		want := l.Evaluate(p, config.LogicNormal)
		for _, mode := range config.LogicModes() {
			if got := l.Evaluate(p, mode); got != want {
				t.Errorf("mode %s: got %v, want %v", mode, got, want)
			}
		}
	}
}

func TestHigherTierAddsOptions(t *testing.T) {
	l := New(
		func(p *progress.Progress) bool { return p.HasHookshot() },
		nil,
		func(p *progress.Progress) bool { return p.HasBoots() },
		nil,
		nil,
	)
	boots := newProgress(item.Boots)
	if l.Evaluate(boots, config.LogicNormal) || l.Evaluate(boots, config.LogicHard) {
		t.Error("boots should not satisfy normal or hard")
	}
	for _, mode := range []config.LogicMode{config.LogicGlitchBasic, config.LogicGlitchAdvanced, config.LogicGlitchHell} {
		if !l.Evaluate(boots, mode) {
			t.Errorf("boots should satisfy %s", mode)
		}
	}

	hookshot := newProgress(item.Hookshot)
	for _, mode := range config.LogicModes() {
		if !l.Evaluate(hookshot, mode) {
			t.Errorf("normal predicate must hold under %s", mode)
		}
	}
}

func TestNothingDefinedBelowTierIsFalse(t *testing.T) {
	l := New(nil, nil, func(*progress.Progress) bool { return true }, nil, nil)
	p := newProgress()
	if l.Evaluate(p, config.LogicNormal) || l.Evaluate(p, config.LogicHard) {
		t.Error("expected false below the first defined tier")
	}
	if !l.Evaluate(p, config.LogicGlitchBasic) {
		t.Error("expected true at the defined tier")
	}
}

func TestEvaluateEmptyLogicPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for logic with no predicates")
		}
	}()
	Logic{}.Evaluate(newProgress(), config.LogicNormal)
}

func TestCompile(t *testing.T) {
	tests := []struct {
		expr  string
		kinds []item.Kind
		want  bool
	}{
		{"true", nil, true},
		{"false", nil, false},
		{"bombs", nil, false},
		{"bombs", []item.Kind{item.Bombs}, true},
		{"bombs && lamp", []item.Kind{item.Bombs}, false},
		{"bombs || lamp", []item.Kind{item.Lamp}, true},
		{"hookshot || bombs && lamp", []item.Kind{item.Hookshot}, true},
		{"(hookshot || bombs) && lamp", []item.Kind{item.Hookshot}, false},
		{"fire_source", []item.Kind{item.FireRod}, true},
		{"can_attack", []item.Kind{item.Hammer}, true},
		{"keys(eastern, 1)", []item.Kind{item.SmallKeyEastern}, true},
		{"keys(eastern, 2)", []item.Kind{item.SmallKeyEastern}, false},
		{"boss_key(gale)", []item.Kind{item.BossKeyGale}, true},
		{"pendants(2)", []item.Kind{item.Pendant, item.Pendant}, true},
		{"has(net)", []item.Kind{item.Net}, true},
		{"count(sword, 2)", []item.Kind{item.Sword}, false},
		{"count(sword, 2)", []item.Kind{item.Sword, item.Sword}, true},
		{"  BOMBS  ", []item.Kind{item.Bombs}, true},
	}
	for _, tt := range tests {
		pred, err := Compile(tt.expr)
		if err != nil {
			t.Errorf("Compile(%q): %v", tt.expr, err)
			continue
		}
		if got := pred(newProgress(tt.kinds...)); got != tt.want {
			t.Errorf("%q with %v: got %v, want %v", tt.expr, tt.kinds, got, tt.want)
		}
	}
}

func TestCompileGoal(t *testing.T) {
	pred := MustCompile("goal(sanctuary_doors)")
	p := newProgress()
	if pred(p) {
		t.Error("goal not yet set")
	}
	p.Add(item.GoalOf(item.GoalSanctuaryDoors))
	if !pred(p) {
		t.Error("goal should be set")
	}
}

func TestCompileErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"!bombs",
		"bombs &&",
		"(bombs",
		"bombs lamp",
		"rocket_boots",
		"keys(eastern)",
		"keys(castle, 1)",
		"pendants(many)",
		"has(nothing)",
		"goal(victory)",
		"bombs & lamp",
		"teleport(1)",
		"has(small_key_eastern)",
		"count(small_key_gale, 2)",
		"has(boss_key_hera)",
	} {
		_, err := Compile(expr)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Compile(%q): expected SyntaxError, got %v", expr, err)
		}
	}
}

func TestSpecScalarAndTiers(t *testing.T) {
	var scalar struct {
		Logic Spec `yaml:"logic"`
	}
	if err := yaml.Unmarshal([]byte("logic: bombs\n"), &scalar); err != nil {
		t.Fatal(err)
	}
	if scalar.Logic.Normal != "bombs" || scalar.Logic.Hard != "" {
		t.Fatalf("unexpected spec %+v", scalar.Logic)
	}

	var tiered struct {
		Logic Spec `yaml:"logic"`
	}
	doc := "logic:\n  normal: hookshot\n  glitch_basic: boots\n"
	if err := yaml.Unmarshal([]byte(doc), &tiered); err != nil {
		t.Fatal(err)
	}
	l, err := tiered.Logic.Compile()
	if err != nil {
		t.Fatal(err)
	}
	boots := newProgress(item.Boots)
	if l.Evaluate(boots, config.LogicHard) || !l.Evaluate(boots, config.LogicGlitchBasic) {
		t.Error("tiered spec compiled incorrectly")
	}
}

func TestEmptySpecIsFree(t *testing.T) {
	l, err := Spec{}.Compile()
	if err != nil {
		t.Fatal(err)
	}
	if !l.Evaluate(newProgress(), config.LogicNormal) {
		t.Error("empty spec should compile to free logic")
	}
}
