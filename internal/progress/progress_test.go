package progress

import (
	"testing"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/item"
)

func TestNewAppliesStartItems(t *testing.T) {
	s := config.Default()
	s.StartItems = []string{"lamp", "boots"}

	p := New(s)
	if !p.HasLamp() || !p.HasBoots() {
		t.Error("expected start items to be held")
	}
	if p.HasBombs() {
		t.Error("did not expect bombs")
	}
}

func TestAddBooleanIsIdempotent(t *testing.T) {
	p := New(config.Default())
	p.Add(item.Of(item.Bombs, 0))
	p.Add(item.Of(item.Bombs, 1))
	if p.Count(item.Bombs) != 1 {
		t.Errorf("expected boolean kind to stay at 1, got %d", p.Count(item.Bombs))
	}
}

func TestAddCountedAccumulates(t *testing.T) {
	p := New(config.Default())
	p.Add(item.Of(item.SmallKeyEastern, 0))
	if p.HasSmallKeys(item.Eastern, 2) {
		t.Error("one key should not satisfy two")
	}
	p.Add(item.Of(item.SmallKeyEastern, 1))
	if !p.HasSmallKeys(item.Eastern, 2) {
		t.Error("two keys should satisfy two")
	}
	if p.HasSmallKeys(item.Gale, 1) {
		t.Error("eastern keys must not open gale doors")
	}
}

func TestProgressiveSword(t *testing.T) {
	p := New(config.Default())
	p.Add(item.Of(item.Sword, 0))
	if !p.HasSword() || p.HasMasterSword() {
		t.Error("first sword should not be the master sword")
	}
	p.Add(item.Of(item.Sword, 1))
	if !p.HasMasterSword() {
		t.Error("second sword should be the master sword")
	}
	if !p.CanBreakBarrier() {
		t.Error("master sword should break the barrier")
	}
}

func TestKeysyIgnoresKeys(t *testing.T) {
	s := config.Default()
	s.Keysy = true
	p := New(s)
	if !p.HasSmallKeys(item.Hera, 5) || !p.HasBossKey(item.Gale) {
		t.Error("keysy should satisfy every key requirement")
	}
}

func TestMaiamaiOnlyCountsInMadness(t *testing.T) {
	p := New(config.Default())
	if !p.HasMaiamai(50) {
		t.Error("vanilla maiamai are always collectable")
	}

	s := config.Default()
	s.MaiamaiMadness = true
	p = New(s)
	if p.HasMaiamai(1) {
		t.Error("madness requires shuffled maiamai")
	}
	p.Add(item.Of(item.Maiamai, 0))
	if !p.HasMaiamai(1) {
		t.Error("expected one maiamai")
	}
}

func TestSwordlessSubstitutes(t *testing.T) {
	s := config.Default()
	s.Swordless = true
	p := New(s)
	if p.CanCut() {
		t.Error("nothing held yet")
	}
	p.Add(item.Of(item.Net, 0))
	if !p.CanCut() || !p.CanBreakBarrier() {
		t.Error("net should cut and break the barrier in swordless")
	}

	normal := New(config.Default())
	normal.Add(item.Of(item.Net, 0))
	if normal.CanCut() {
		t.Error("net should not cut outside swordless")
	}
}

func TestGoals(t *testing.T) {
	p := New(config.Default())
	p.Add(item.GoalOf(item.GoalSanctuaryDoors))
	p.Add(item.GoalOf(item.GoalSanctuaryDoors))
	if !p.HasGoal(item.GoalSanctuaryDoors) {
		t.Error("expected goal")
	}
	if p.HasGoal(item.GoalTriforce) {
		t.Error("did not expect triforce")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := New(config.Default())
	p.Add(item.Of(item.Hookshot, 0))
	c := p.Clone()
	c.Add(item.Of(item.Bow, 0))
	c.Add(item.GoalOf(item.GoalBarrierDown))

	if p.HasBow() || p.HasGoal(item.GoalBarrierDown) {
		t.Error("mutating the clone changed the original")
	}
	if !c.HasHookshot() {
		t.Error("clone lost existing items")
	}
	if c.Count(item.Bow) != 1 || !c.HasGoal(item.GoalBarrierDown) {
		t.Error("clone did not record its own additions")
	}
}
