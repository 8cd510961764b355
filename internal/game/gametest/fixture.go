// Package gametest builds small, fully deterministic matches for tests.
package gametest

import (
	"time"

	"github.com/nfrund/dungeonwave/internal/game/deck"
	"github.com/nfrund/dungeonwave/internal/game/match"
)

// Epoch is the fixed creation time of fixture matches.
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewMatch returns a two-player family match in the PLAYER phase.
//
//	entrance(gate) -- corridor -- armory -- prison
//	                     |
//	                   vault (tier 4, requires 2)
func NewMatch() *match.Match {
	rules := match.DefaultRules()
	return &match.Match{
		ID:         "m1",
		Phase:      match.PhasePlayer,
		Difficulty: match.DifficultyFamily,
		Rules:      rules,
		Halls: []*match.Hall{
			hall("entrance", "gate", "corridor"),
			withTokens(hall("corridor", "", "entrance", "armory", "vault"), match.TokenCoin),
			hall("armory", "", "corridor", "prison"),
			withTreasure(hall("vault", "", "corridor"), &match.Treasure{ID: "treasure_4", Tier: 4, Required: 2}),
			hall("prison", "", "armory"),
		},
		Players: []*match.Player{
			player("p1", "Alice", "goblin", []string{"g1", "g2", "g3"}, []string{"g4", "g5"}),
			player("p2", "Bob", "skeleton", []string{"s1", "s2", "s3"}, []string{"s4", "s5"}),
		},
		GuildDeck: []string{"warrior", "thief", "warrior", "thief"},
		Shop:      deck.NewShop([]string{"sword", "tome", "amulet", "potion", "axe", "bow"}, rules.DisplaySize),
		HeroTemplates: map[string]match.HeroTemplate{
			"warrior": {ID: "warrior", Name: "Warrior", HP: 2, Spawn: "gate"},
			"thief":   {ID: "thief", Name: "Thief", HP: 1, Spawn: "gate"},
		},
		MonsterClasses: map[string]match.MonsterClass{
			"goblin":   {ID: "goblin", Name: "Goblin", HP: 1, MaxCount: 3},
			"skeleton": {ID: "skeleton", Name: "Skeleton", HP: 2, MaxCount: 2},
		},
		ShopCards: map[string]match.ShopCard{
			"sword":  {ID: "sword", Name: "Sword", Cost: match.TokenCoin},
			"tome":   {ID: "tome", Name: "Tome", Cost: match.TokenBook},
			"amulet": {ID: "amulet", Name: "Amulet", Cost: match.TokenFrog},
			"potion": {ID: "potion", Name: "Potion", Cost: match.TokenBone},
			"axe":    {ID: "axe", Name: "Axe", Cost: match.TokenCoin},
			"bow":    {ID: "bow", Name: "Bow", Cost: match.TokenCoin},
		},
		CreatedAt: Epoch,
		UpdatedAt: Epoch,
	}
}

// AddHero places a hero directly into a hall.
func AddHero(m *match.Match, id, hallID string, hp int) *match.Hero {
	h := &match.Hero{ID: id, CardID: "warrior", Name: id, HP: hp, MaxHP: hp}
	m.PlaceHero(h, m.Hall(hallID))
	return h
}

// AddMonster places a monster owned by ownerID directly into a hall.
func AddMonster(m *match.Match, id, ownerID, hallID string, hp int) *match.Monster {
	classID := ""
	if p := m.Player(ownerID); p != nil {
		classID = p.MonsterClass
	}
	mo := &match.Monster{ID: id, ClassID: classID, OwnerID: ownerID, HP: hp}
	m.PlaceMonster(mo, m.Hall(hallID))
	return mo
}

// Journal returns a journal with a frozen clock.
func Journal() *match.Journal {
	return match.NewJournal(nil).WithClock(func() time.Time { return Epoch })
}

// Kinds lists the kinds of the journal's log entries in order.
func Kinds(j *match.Journal) []string {
	out := make([]string, 0, len(j.Entries()))
	for _, e := range j.Entries() {
		out = append(out, e.Kind)
	}
	return out
}

// EventKinds lists the kinds of the journal's events in order.
func EventKinds(j *match.Journal) []match.EventKind {
	out := make([]match.EventKind, 0, len(j.Events()))
	for _, e := range j.Events() {
		out = append(out, e.Kind)
	}
	return out
}

// ScriptedSource replays fixed Intn results and never reorders on Shuffle.
type ScriptedSource struct {
	Ints []int
}

func (s *ScriptedSource) Intn(n int) int {
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	return v % n
}

func (s *ScriptedSource) Shuffle(int, func(i, j int)) {}

func hall(id, spawn string, connections ...string) *match.Hall {
	return &match.Hall{ID: id, Label: id, Spawn: spawn, Connections: connections, Tokens: []string{}, Heroes: []string{}, Monsters: []string{}}
}

func withTokens(h *match.Hall, tokens ...string) *match.Hall {
	h.Tokens = append(h.Tokens, tokens...)
	return h
}

func withTreasure(h *match.Hall, t *match.Treasure) *match.Hall {
	h.Treasure = t
	return h
}

func player(id, name, class string, hand, pile []string) *match.Player {
	return &match.Player{
		ID:           id,
		Name:         name,
		MonsterClass: class,
		Hand:         hand,
		Deck:         pile,
		Discard:      []string{},
		Resources:    map[string]int{"gold": 0, "souls": 0},
	}
}
