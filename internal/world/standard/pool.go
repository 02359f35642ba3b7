package standard

import (
	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/world"
)

var basePool = map[item.Kind]int{
	item.Sword:     2,
	item.Bow:       1,
	item.Bombs:     1,
	item.Boomerang: 1,
	item.Hookshot:  1,
	item.Hammer:    1,
	item.FireRod:   1,
	item.IceRod:    1,
	item.Lamp:      1,
	item.Net:       1,
	item.Flippers:  1,
	item.Boots:     1,
	item.Glove:     1,
	item.Bracelet:  1,

	item.SmallKeyEastern: 2,
	item.SmallKeyGale:    2,
	item.SmallKeyHera:    1,
	item.BossKeyEastern:  1,
	item.BossKeyGale:     1,
	item.BossKeyHera:     1,

	item.Pendant: 3,

	item.HeartPiece:  4,
	item.RupeeRed:    2,
	item.RupeePurple: 1,
}

// Pool returns the item counts shuffled under s. Swordless drops the swords
// and keysy drops the keys; the fill pads the freed checks with junk.
func Pool(s *config.Settings) map[item.Kind]int {
	pool := make(map[item.Kind]int, len(basePool)+1)
	for k, n := range basePool {
		pool[k] = n
	}
	if s.Swordless {
		delete(pool, item.Sword)
	}
	if s.Keysy {
		for _, d := range item.Dungeons() {
			delete(pool, d.SmallKey())
			delete(pool, d.BossKey())
		}
	}
	if s.MaiamaiMadness {
		pool[item.Maiamai] = NumMaiamai
	}
	return pool
}

// Definition builds the graph and pool for s together.
func Definition(s *config.Settings) (*world.Definition, error) {
	g, err := Build(s)
	if err != nil {
		events.Emit(events.LevelError, "graph.failed", "", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	events.Emit(events.LevelDebug, "graph.built", "", map[string]interface{}{
		"locations": len(g.Locations()),
		"checks":    g.NumChecks(),
		"paths":     g.NumPaths(),
	})
	return &world.Definition{Graph: g, Pool: Pool(s)}, nil
}
