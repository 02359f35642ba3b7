// Package standard is the compiled-in world: a small overworld, three keyed
// dungeons and the castle, with the edges that settings switch on or off.
package standard

import (
	"fmt"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/logic"
	"github.com/AaronLay10/SeedEngine/internal/progress"
	"github.com/AaronLay10/SeedEngine/internal/world"
)

const (
	LinksHouse     world.Location = "Link's House"
	HyruleField    world.Location = "Hyrule Field"
	LostWoods      world.Location = "Lost Woods"
	Kakariko       world.Location = "Kakariko Village"
	EasternRuins   world.Location = "Eastern Ruins"
	EasternPalace  world.Location = "Eastern Palace"
	EasternBoss    world.Location = "Eastern Palace Boss"
	LakeHylia      world.Location = "Lake Hylia"
	HouseOfGales   world.Location = "House of Gales"
	GalesBoss      world.Location = "House of Gales Boss"
	DeathMountain  world.Location = "Death Mountain"
	TowerOfHera    world.Location = "Tower of Hera"
	HeraBoss       world.Location = "Tower of Hera Boss"
	Sanctuary      world.Location = "Sanctuary"
	HyruleCastle   world.Location = "Hyrule Castle"
	CastleTower    world.Location = "Castle Tower"
	TriforceRoom   world.Location = "Triforce Room"
	MaiamaiIslands world.Location = "Maiamai Islands"
)

// NumMaiamai is how many maiamai are shuffled under maiamai madness.
const NumMaiamai = 10

func req(expr string) logic.Logic {
	return logic.Normal(logic.MustCompile(expr))
}

// tiers compiles one expression per tier; empty strings leave a tier unset.
func tiers(normal, hard, glitchBasic, glitchAdvanced, glitchHell string) logic.Logic {
	l, err := logic.Spec{
		Normal:         normal,
		Hard:           hard,
		GlitchBasic:    glitchBasic,
		GlitchAdvanced: glitchAdvanced,
		GlitchHell:     glitchHell,
	}.Compile()
	if err != nil {
		panic(err)
	}
	return l
}

type checkTable struct {
	flag uint16
}

func (t *checkTable) chest(name, region string, l logic.Logic) world.CheckDef {
	t.flag++
	return world.NewCheck(name, l, world.LocationInfo{Region: region, Flag: t.flag})
}

func quest(name string, l logic.Logic, g item.Goal) world.CheckDef {
	return world.QuestCheck(name, l, item.GoalOf(g))
}

// Build constructs the world graph for s. Settings are read here and never
// again; the returned graph is immutable.
func Build(s *config.Settings) (*world.Graph, error) {
	t := &checkTable{}
	free := logic.Free()
	b := world.NewBuilder()

	b.Add(LinksHouse, []world.CheckDef{
		t.chest("Link's House Chest", "hyrule", free),
		t.chest("Bedside Drawer", "hyrule", free),
	}, []world.Path{
		world.Edge(HyruleField, free),
	})

	b.Add(HyruleField, []world.CheckDef{
		t.chest("Field Stump", "hyrule", free),
		t.chest("Field Bush Cave", "hyrule", req("can_cut")),
		t.chest("Field Rock", "hyrule", tiers("can_lift", "", "", "", "true")),
	}, []world.Path{
		world.Edge(LinksHouse, free),
		world.Edge(Kakariko, free),
		world.Edge(EasternRuins, free),
		world.Edge(LakeHylia, free),
		world.Edge(Sanctuary, free),
		world.Edge(HyruleCastle, free),
		world.Edge(LostWoods, req("can_cut")),
		world.Edge(DeathMountain, tiers("can_lift", "", "boots && bombs", "", "")),
	})

	b.Add(LostWoods, []world.CheckDef{
		t.chest("Lost Woods Chest", "hyrule", free),
		t.chest("Lost Woods Pedestal", "hyrule", req("pendants(3)")),
	}, []world.Path{
		world.Edge(HyruleField, free),
	})

	b.Add(Kakariko, []world.CheckDef{
		t.chest("Kakariko Well", "kakariko", tiers("bombs", "", "", "boots", "")),
		t.chest("Bar Chest", "kakariko", free),
		t.chest("Kakariko Rooftop", "kakariko", free),
		t.chest("Milk Bar", "kakariko", free),
		t.chest("Witch's Hut", "kakariko", tiers("fire_source", "true", "", "", "")),
	}, []world.Path{
		world.Edge(HyruleField, free),
	})

	b.Add(EasternRuins, []world.CheckDef{
		t.chest("Eastern Ruins Cave", "hyrule", req("bombs")),
	}, []world.Path{
		world.Edge(HyruleField, free),
		world.Edge(EasternPalace, free),
	})

	b.Add(EasternPalace, []world.CheckDef{
		t.chest("[EP] Entrance Chest", "eastern", free),
		t.chest("[EP] Switch Chest", "eastern", req("can_hit_switch")),
		t.chest("[EP] Compass Chest", "eastern", req("keys(eastern, 1)")),
		t.chest("[EP] Big Chest", "eastern", req("keys(eastern, 1) && boss_key(eastern)")),
	}, []world.Path{
		world.Edge(EasternRuins, free),
		world.Edge(EasternBoss, tiers(
			"keys(eastern, 2) && boss_key(eastern) && bow",
			"keys(eastern, 2) && boss_key(eastern) && can_attack",
			"", "", "")),
	})

	b.Add(EasternBoss, []world.CheckDef{
		t.chest("[EP] Heart Container", "eastern", req("can_attack")),
		quest("[EP] Prize", req("can_attack"), item.GoalEasternCleared),
	}, []world.Path{
		world.Edge(EasternPalace, free),
	})

	b.Add(LakeHylia, []world.CheckDef{
		t.chest("Lakeside Chest", "lake", req("can_swim")),
		t.chest("Lake Shop", "lake", free),
		t.chest("Lake Island", "lake", tiers("can_swim && can_merge", "", "", "boots", "")),
		t.chest("Mother Maiamai 5", "lake", req("maiamai(5)")),
		t.chest("Mother Maiamai 10", "lake", req("maiamai(10)")),
	}, []world.Path{
		world.Edge(HyruleField, free),
		world.Edge(HouseOfGales, tiers("can_swim", "", "boots", "", "true")),
	})

	b.Add(HouseOfGales, []world.CheckDef{
		t.chest("[HG] Entrance Chest", "gale", free),
		t.chest("[HG] Fan Room", "gale", req("keys(gale, 1)")),
		t.chest("[HG] Skull Chest", "gale", tiers("keys(gale, 1) && can_hit_far", "keys(gale, 1)", "", "", "")),
		t.chest("[HG] Big Chest", "gale", req("keys(gale, 2) && boss_key(gale)")),
	}, []world.Path{
		world.Edge(LakeHylia, free),
		world.Edge(GalesBoss, tiers(
			"keys(gale, 2) && boss_key(gale) && hookshot",
			"", "keys(gale, 2) && boss_key(gale) && can_attack", "", "")),
	})

	b.Add(GalesBoss, []world.CheckDef{
		t.chest("[HG] Heart Container", "gale", req("can_attack")),
		quest("[HG] Prize", req("can_attack"), item.GoalGaleCleared),
	}, []world.Path{
		world.Edge(HouseOfGales, free),
	})

	b.Add(DeathMountain, []world.CheckDef{
		t.chest("Spectacle Rock", "mountain", req("can_merge")),
		t.chest("Mountain Cave", "mountain", tiers("lamp", "true", "", "", "")),
	}, []world.Path{
		world.Edge(HyruleField, free),
		world.Edge(TowerOfHera, tiers("hammer", "hookshot", "", "", "")),
	})

	b.Add(TowerOfHera, []world.CheckDef{
		t.chest("[TH] Entrance Chest", "hera", free),
		t.chest("[TH] Moon Chest", "hera", req("keys(hera, 1)")),
		t.chest("[TH] Fire Chest", "hera", tiers("keys(hera, 1) && fire_source", "", "", "keys(hera, 1) && boots", "")),
		t.chest("[TH] Big Chest", "hera", req("keys(hera, 1) && boss_key(hera)")),
	}, []world.Path{
		world.Edge(DeathMountain, free),
		world.Edge(HeraBoss, req("keys(hera, 1) && boss_key(hera) && can_attack")),
	})

	b.Add(HeraBoss, []world.CheckDef{
		t.chest("[TH] Heart Container", "hera", req("can_attack")),
		quest("[TH] Prize", req("can_attack"), item.GoalHeraCleared),
	}, []world.Path{
		world.Edge(TowerOfHera, free),
	})

	b.Add(Sanctuary, []world.CheckDef{
		quest("Sanctuary Doors", req("can_attack"), item.GoalSanctuaryDoors),
		t.chest("Sanctuary Chest", "hyrule", req("goal(sanctuary_doors)")),
		t.chest("Sanctuary Grave", "hyrule", tiers("can_dash", "", "true", "", "")),
	}, []world.Path{
		world.Edge(HyruleField, free),
	})

	required := s.RequiredPendants
	barrier := logic.Normal(func(p *progress.Progress) bool {
		return p.CanBreakBarrier() && p.HasPendants(required)
	})
	b.Add(HyruleCastle, []world.CheckDef{
		t.chest("Castle Courtyard", "castle", free),
		t.chest("Castle Garden", "castle", free),
	}, []world.Path{
		world.Edge(HyruleField, free),
		world.Edge(CastleTower, barrier),
	})

	b.Add(CastleTower, []world.CheckDef{
		quest("Castle Barrier", free, item.GoalBarrierDown),
	}, []world.Path{
		world.Edge(HyruleCastle, free),
		world.Edge(TriforceRoom, req("goal(barrier_down) && goal(eastern_cleared) && goal(gale_cleared) && goal(hera_cleared)")),
	})

	b.Add(TriforceRoom, []world.CheckDef{
		quest("Triforce", free, item.GoalTriforce),
	}, nil)

	if s.Swordless {
		// The woods' bushes are already cut.
		b.Connect(HyruleField, world.Edge(LostWoods, free))
	}
	if s.SkipBoulderField {
		b.Connect(HyruleField, world.Edge(DeathMountain, free))
	}
	if s.MaiamaiMadness {
		addMaiamai(b, t)
	}

	return b.Build(LinksHouse, TriforceRoom)
}

// addMaiamai adds the islands holding the shuffled maiamai spots.
func addMaiamai(b *world.Builder, t *checkTable) {
	checks := make([]world.CheckDef, 0, NumMaiamai)
	for i := 1; i <= NumMaiamai; i++ {
		l := logic.Free()
		switch {
		case i > 7:
			l = req("can_swim")
		case i > 4:
			l = tiers("can_lift", "", "bombs", "", "")
		}
		checks = append(checks, t.chest(fmt.Sprintf("Maiamai Spot %d", i), "maiamai", l))
	}
	b.Add(MaiamaiIslands, checks, []world.Path{
		world.Edge(LakeHylia, logic.Free()),
	})
	b.Connect(LakeHylia, world.Edge(MaiamaiIslands, logic.Free()))
}
