package progress

import (
	"github.com/AaronLay10/SeedEngine/internal/item"
)

// HasSword reports whether any sword is held.
func (p *Progress) HasSword() bool { return p.Has(item.Sword) }

// HasMasterSword reports whether the sword has been upgraded once.
func (p *Progress) HasMasterSword() bool { return p.Count(item.Sword) >= 2 }

// HasBow reports whether the bow is held.
func (p *Progress) HasBow() bool { return p.Has(item.Bow) }

// HasBombs reports whether bombs are held.
func (p *Progress) HasBombs() bool { return p.Has(item.Bombs) }

// HasBoomerang reports whether the boomerang is held.
func (p *Progress) HasBoomerang() bool { return p.Has(item.Boomerang) }

// HasHookshot reports whether the hookshot is held.
func (p *Progress) HasHookshot() bool { return p.Has(item.Hookshot) }

// HasHammer reports whether the hammer is held.
func (p *Progress) HasHammer() bool { return p.Has(item.Hammer) }

// HasFireRod reports whether the fire rod is held.
func (p *Progress) HasFireRod() bool { return p.Has(item.FireRod) }

// HasIceRod reports whether the ice rod is held.
func (p *Progress) HasIceRod() bool { return p.Has(item.IceRod) }

// HasLamp reports whether the lamp is held.
func (p *Progress) HasLamp() bool { return p.Has(item.Lamp) }

// HasNet reports whether the bug net is held.
func (p *Progress) HasNet() bool { return p.Has(item.Net) }

// HasFlippers reports whether the flippers are held.
func (p *Progress) HasFlippers() bool { return p.Has(item.Flippers) }

// HasBoots reports whether the pegasus boots are held.
func (p *Progress) HasBoots() bool { return p.Has(item.Boots) }

// HasGlove reports whether the power glove is held.
func (p *Progress) HasGlove() bool { return p.Has(item.Glove) }

// HasBracelet reports whether the bracelet is held.
func (p *Progress) HasBracelet() bool { return p.Has(item.Bracelet) }

// HasSmallKeys reports whether n small keys for d are held. Keysy removes
// every key requirement.
func (p *Progress) HasSmallKeys(d item.Dungeon, n int) bool {
	if p.settings.Keysy {
		return true
	}
	return p.Count(d.SmallKey()) >= n
}

// HasBossKey reports whether the boss key for d is held.
func (p *Progress) HasBossKey(d item.Dungeon) bool {
	if p.settings.Keysy {
		return true
	}
	return p.Has(d.BossKey())
}

// HasPendants reports whether at least n pendants are held.
func (p *Progress) HasPendants(n int) bool {
	return p.Count(item.Pendant) >= n
}

// HasMaiamai reports whether n maiamai have been found. Outside maiamai
// madness they stay in their vanilla spots and are always collectable.
func (p *Progress) HasMaiamai(n int) bool {
	if !p.settings.MaiamaiMadness {
		return true
	}
	return p.Count(item.Maiamai) >= n
}

// CanAttack reports whether enemies can be damaged at all.
func (p *Progress) CanAttack() bool {
	return p.HasSword() || p.HasBow() || p.HasBombs() || p.HasFireRod() || p.HasIceRod() || p.HasHammer()
}

// CanCut reports whether bushes and curtains can be cut. Swordless seeds
// accept the net and fire rod instead.
func (p *Progress) CanCut() bool {
	if p.HasSword() {
		return true
	}
	return p.settings.Swordless && (p.HasNet() || p.HasFireRod())
}

// CanHitSwitch reports whether a crystal switch can be hit from range or up close.
func (p *Progress) CanHitSwitch() bool {
	return p.CanAttack() || p.HasBoomerang() || p.HasHookshot()
}

// CanHitFarSwitch reports whether a crystal switch out of reach can be hit.
func (p *Progress) CanHitFarSwitch() bool {
	return p.HasBow() || p.HasBoomerang() || p.HasHookshot() || p.HasIceRod() || p.HasFireRod()
}

// CanMerge reports whether walls can be merged into; the bracelet grants it.
func (p *Progress) CanMerge() bool { return p.HasBracelet() }

// HasFireSource reports whether torches can be lit.
func (p *Progress) HasFireSource() bool { return p.HasLamp() || p.HasFireRod() }

// CanLift reports whether heavy rocks can be lifted.
func (p *Progress) CanLift() bool { return p.HasGlove() }

// CanSwim reports whether deep water can be crossed.
func (p *Progress) CanSwim() bool { return p.HasFlippers() }

// CanDash reports whether the player can dash.
func (p *Progress) CanDash() bool { return p.HasBoots() }

// CanBreakBarrier reports whether the castle barrier can be dispelled. Outside
// swordless mode that takes the master sword.
func (p *Progress) CanBreakBarrier() bool {
	if p.settings.Swordless {
		return p.HasNet()
	}
	return p.HasMasterSword()
}
