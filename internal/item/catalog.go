package item

import (
	"fmt"
	"strings"
)

// Kind is one conceptual item. Counted kinds may appear many times in a pool.
type Kind uint8

const (
	KindInvalid Kind = iota

	Sword // progressive: the second copy is the master sword
	Bow
	Bombs
	Boomerang
	Hookshot
	Hammer
	FireRod
	IceRod
	Lamp
	Net
	Flippers
	Boots
	Glove
	Bracelet

	SmallKeyEastern
	SmallKeyGale
	SmallKeyHera
	BossKeyEastern
	BossKeyGale
	BossKeyHera

	Pendant
	Maiamai

	HeartPiece
	HeartContainer
	RupeeGreen
	RupeeBlue
	RupeeRed
	RupeePurple
	RupeeSilver
	RupeeGold
	Arrows
	MonsterHorn

	numKinds
)

// NumKinds bounds every Kind value, including KindInvalid.
const NumKinds = int(numKinds)

type kindInfo struct {
	id          string
	name        string
	progression bool
	counted     bool
	gameID      uint16
}

var kinds = [numKinds]kindInfo{
	KindInvalid: {"invalid", "Invalid", false, false, 0},

	Sword:     {"sword", "Sword", true, true, 0x0001},
	Bow:       {"bow", "Bow", true, false, 0x0002},
	Bombs:     {"bombs", "Bombs", true, false, 0x0003},
	Boomerang: {"boomerang", "Boomerang", true, false, 0x0004},
	Hookshot:  {"hookshot", "Hookshot", true, false, 0x0005},
	Hammer:    {"hammer", "Hammer", true, false, 0x0006},
	FireRod:   {"fire_rod", "Fire Rod", true, false, 0x0007},
	IceRod:    {"ice_rod", "Ice Rod", true, false, 0x0008},
	Lamp:      {"lamp", "Lamp", true, false, 0x0009},
	Net:       {"net", "Bug Net", true, false, 0x000A},
	Flippers:  {"flippers", "Flippers", true, false, 0x000B},
	Boots:     {"boots", "Pegasus Boots", true, false, 0x000C},
	Glove:     {"glove", "Power Glove", true, false, 0x000D},
	Bracelet:  {"bracelet", "Merge Bracelet", true, false, 0x000E},

	SmallKeyEastern: {"small_key_eastern", "Small Key (Eastern)", true, true, 0x0100},
	SmallKeyGale:    {"small_key_gale", "Small Key (Gale)", true, true, 0x0101},
	SmallKeyHera:    {"small_key_hera", "Small Key (Hera)", true, true, 0x0102},
	BossKeyEastern:  {"boss_key_eastern", "Boss Key (Eastern)", true, false, 0x0110},
	BossKeyGale:     {"boss_key_gale", "Boss Key (Gale)", true, false, 0x0111},
	BossKeyHera:     {"boss_key_hera", "Boss Key (Hera)", true, false, 0x0112},

	Pendant: {"pendant", "Pendant", true, true, 0x0200},
	Maiamai: {"maiamai", "Maiamai", false, true, 0x0201},

	HeartPiece:     {"heart_piece", "Piece of Heart", false, true, 0x0300},
	HeartContainer: {"heart_container", "Heart Container", false, true, 0x0301},
	RupeeGreen:     {"rupee_green", "Green Rupee", false, true, 0x0310},
	RupeeBlue:      {"rupee_blue", "Blue Rupee", false, true, 0x0311},
	RupeeRed:       {"rupee_red", "Red Rupee", false, true, 0x0312},
	RupeePurple:    {"rupee_purple", "Purple Rupee", false, true, 0x0313},
	RupeeSilver:    {"rupee_silver", "Silver Rupee", false, true, 0x0314},
	RupeeGold:      {"rupee_gold", "Gold Rupee", false, true, 0x0315},
	Arrows:         {"arrows", "Arrows", false, true, 0x0320},
	MonsterHorn:    {"monster_horn", "Monster Horn", false, true, 0x0321},
}

var kindsByID = func() map[string]Kind {
	m := make(map[string]Kind, numKinds)
	for k := Kind(1); k < numKinds; k++ {
		m[kinds[k].id] = k
	}
	return m
}()

// ParseKind resolves a snake_case catalog id such as "fire_rod".
func ParseKind(id string) (Kind, error) {
	if k, ok := kindsByID[strings.ToLower(strings.TrimSpace(id))]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("unknown item: %q", id)
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, numKinds-1)
	for k := Kind(1); k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) Valid() bool {
	return k > KindInvalid && k < numKinds
}

// ID returns the snake_case catalog id.
func (k Kind) ID() string {
	if !k.Valid() {
		return kinds[KindInvalid].id
	}
	return kinds[k].id
}

func (k Kind) String() string {
	if !k.Valid() {
		return kinds[KindInvalid].name
	}
	return kinds[k].name
}

// Progression reports whether the kind unlocks anything under default
// settings. Settings such as keysy or maiamai madness reclassify kinds when
// a pool is built.
func (k Kind) Progression() bool {
	return k.Valid() && kinds[k].progression
}

// Counted reports whether holding several copies means more than holding one.
func (k Kind) Counted() bool {
	return k.Valid() && kinds[k].counted
}

// Dungeon identifies a keyed dungeon.
type Dungeon uint8

const (
	Eastern Dungeon = iota
	Gale
	Hera
	numDungeons
)

var dungeonIDs = [numDungeons]string{"eastern", "gale", "hera"}

// Dungeons returns every keyed dungeon.
func Dungeons() []Dungeon {
	return []Dungeon{Eastern, Gale, Hera}
}

// ParseDungeon resolves "eastern", "gale" or "hera".
func ParseDungeon(id string) (Dungeon, error) {
	for d, name := range dungeonIDs {
		if name == strings.ToLower(strings.TrimSpace(id)) {
			return Dungeon(d), nil
		}
	}
	return 0, fmt.Errorf("unknown dungeon: %q", id)
}

func (d Dungeon) String() string {
	if d >= numDungeons {
		return "unknown"
	}
	return dungeonIDs[d]
}

// SmallKey returns the small key kind for d.
func (d Dungeon) SmallKey() Kind {
	return SmallKeyEastern + Kind(d)
}

// BossKey returns the boss key kind for d.
func (d Dungeon) BossKey() Kind {
	return BossKeyEastern + Kind(d)
}

// Goal is a quest or event flag. Goals sit at fixed checks and are never
// shuffled.
type Goal uint8

const (
	GoalInvalid Goal = iota
	GoalSanctuaryDoors
	GoalEasternCleared
	GoalGaleCleared
	GoalHeraCleared
	GoalBarrierDown
	GoalTriforce
	numGoals
)

const goalFlagBase = 0x8000

var goalIDs = [numGoals]string{
	GoalInvalid:        "invalid",
	GoalSanctuaryDoors: "sanctuary_doors",
	GoalEasternCleared: "eastern_cleared",
	GoalGaleCleared:    "gale_cleared",
	GoalHeraCleared:    "hera_cleared",
	GoalBarrierDown:    "barrier_down",
	GoalTriforce:       "triforce",
}

var goalNames = [numGoals]string{
	GoalInvalid:        "Invalid",
	GoalSanctuaryDoors: "Sanctuary Doors Opened",
	GoalEasternCleared: "Eastern Palace Cleared",
	GoalGaleCleared:    "House of Gales Cleared",
	GoalHeraCleared:    "Tower of Hera Cleared",
	GoalBarrierDown:    "Castle Barrier Down",
	GoalTriforce:       "Triforce",
}

// ParseGoal resolves a snake_case goal id such as "sanctuary_doors".
func ParseGoal(id string) (Goal, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for g := Goal(1); g < numGoals; g++ {
		if goalIDs[g] == id {
			return g, nil
		}
	}
	return GoalInvalid, fmt.Errorf("unknown goal: %q", id)
}

func (g Goal) Valid() bool {
	return g > GoalInvalid && g < numGoals
}

// ID returns the snake_case goal id.
func (g Goal) ID() string {
	if !g.Valid() {
		return goalIDs[GoalInvalid]
	}
	return goalIDs[g]
}

func (g Goal) String() string {
	if !g.Valid() {
		return goalNames[GoalInvalid]
	}
	return goalNames[g]
}
