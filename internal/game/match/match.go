// Package match defines the mutable aggregate for one game and the helpers
// that keep its rosters consistent.
package match

import (
	"fmt"
	"slices"
	"time"

	"github.com/nfrund/dungeonwave/internal/game/deck"
)

// Phase is a state of the match state machine.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhasePlayer   Phase = "player"
	PhaseHeroes   Phase = "heroes"
	PhaseGameOver Phase = "game_over"
)

// Difficulty selects the hero pressure per wave.
type Difficulty string

const (
	DifficultyFamily  Difficulty = "family"
	DifficultyProblem Difficulty = "problem"
	DifficultyHard    Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyFamily, DifficultyProblem, DifficultyHard:
		return true
	}
	return false
}

// Result is the final outcome. The zero value means the match is running.
type Result string

const (
	ResultNone    Result = ""
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
)

// Well-known hall tokens.
const (
	TokenTrap     = "trap"
	TokenPrisoner = "prisoner"
	TokenCoin     = "coin"
	TokenBook     = "book"
	TokenFrog     = "frog"
	TokenBone     = "bone"
)

// ResourceTokens are the consumable tokens players spend in the shop.
var ResourceTokens = []string{TokenCoin, TokenBook, TokenFrog, TokenBone}

// Treasure is a loot marker bound to a hall until heroes steal it.
type Treasure struct {
	ID       string `json:"id"`
	Tier     int    `json:"tier"`
	Required int    `json:"required"`
	Opened   bool   `json:"opened"`
}

// Hall is a node of the dungeon graph.
type Hall struct {
	ID          string    `json:"id"`
	Label       string    `json:"label,omitempty"`
	Spawn       string    `json:"spawn,omitempty"`
	Connections []string  `json:"connections"`
	Tokens      []string  `json:"tokens"`
	Heroes      []string  `json:"heroes"`
	Monsters    []string  `json:"monsters"`
	Treasure    *Treasure `json:"treasure,omitempty"`
}

// ConnectedTo reports whether id is a neighbor of h.
func (h *Hall) ConnectedTo(id string) bool {
	return slices.Contains(h.Connections, id)
}

// HasToken reports whether the hall holds at least one token of kind.
func (h *Hall) HasToken(kind string) bool {
	return slices.Contains(h.Tokens, kind)
}

// RemoveToken consumes one token of kind.
func (h *Hall) RemoveToken(kind string) bool {
	return deck.Remove(&h.Tokens, kind)
}

// UnopenedTreasure returns the hall's treasure if it can still be stolen.
func (h *Hall) UnopenedTreasure() *Treasure {
	if h.Treasure == nil || h.Treasure.Opened {
		return nil
	}
	return h.Treasure
}

// Hero is an invader spawned from the guild deck.
type Hero struct {
	ID        string `json:"id"`
	CardID    string `json:"card_id"`
	Name      string `json:"name"`
	HP        int    `json:"hp"`
	MaxHP     int    `json:"max_hp"`
	HallID    string `json:"hall_id"`
	Exhausted bool   `json:"exhausted"`
}

// Monster is a defender summoned by a player.
type Monster struct {
	ID      string `json:"id"`
	ClassID string `json:"class_id"`
	OwnerID string `json:"owner_id"`
	HP      int    `json:"hp"`
	HallID  string `json:"hall_id"`
}

// Player controls one monster class.
type Player struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	MonsterClass    string         `json:"monster_class"`
	Hand            []string       `json:"hand"`
	Deck            []string       `json:"deck"`
	Discard         []string       `json:"discard"`
	Resources       map[string]int `json:"resources"`
	Defeated        bool           `json:"defeated"`
	PendingDiscards int            `json:"pending_discards,omitempty"`
}

// HasCard reports whether card is in the player's hand.
func (p *Player) HasCard(card string) bool {
	return slices.Contains(p.Hand, card)
}

// DiscardCard moves card from hand to the discard pile.
func (p *Player) DiscardCard(card string) bool {
	if !deck.Remove(&p.Hand, card) {
		return false
	}
	p.Discard = append(p.Discard, card)
	return true
}

// CardCount is the size of the player's conserved card multiset.
func (p *Player) CardCount() int {
	return len(p.Hand) + len(p.Deck) + len(p.Discard)
}

// HeroTemplate describes the hero a guild card spawns.
type HeroTemplate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	HP    int    `json:"hp"`
	Spawn string `json:"spawn,omitempty"`
}

// MonsterClass describes the monster a player summons.
type MonsterClass struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HP       int    `json:"hp"`
	MaxCount int    `json:"max_count,omitempty"`
	Spawn    string `json:"spawn,omitempty"`
}

// ShopCard is a purchasable card and the resource token it costs.
type ShopCard struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class,omitempty"`
	Cost  string `json:"cost"`
}

// Match is the full state of one game.
type Match struct {
	ID         string     `json:"id"`
	Phase      Phase      `json:"phase"`
	Wave       int        `json:"wave"`
	Difficulty Difficulty `json:"difficulty"`
	GameOver   bool       `json:"game_over"`
	Result     Result     `json:"result,omitempty"`
	Scenario   string     `json:"scenario,omitempty"`
	Rules      Rules      `json:"rules"`

	Halls    []*Hall    `json:"halls"`
	Heroes   []*Hero    `json:"heroes"`
	Monsters []*Monster `json:"monsters"`
	Players  []*Player  `json:"players"`

	GuildDeck       []string   `json:"guild_deck"`
	GuildDiscard    []string   `json:"guild_discard"`
	GuildReshuffles int        `json:"guild_reshuffles"`
	Shop            deck.Shop  `json:"shop"`
	Stolen          []Treasure `json:"stolen,omitempty"`

	HeroTemplates  map[string]HeroTemplate `json:"hero_templates"`
	MonsterClasses map[string]MonsterClass `json:"monster_classes"`
	ShopCards      map[string]ShopCard     `json:"shop_cards"`

	Seq       int       `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Hall returns the hall with id, or nil.
func (m *Match) Hall(id string) *Hall {
	for _, h := range m.Halls {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// Hero returns the hero with id, or nil.
func (m *Match) Hero(id string) *Hero {
	for _, h := range m.Heroes {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// Monster returns the monster with id, or nil.
func (m *Match) Monster(id string) *Monster {
	for _, mo := range m.Monsters {
		if mo.ID == id {
			return mo
		}
	}
	return nil
}

// Player returns the player with id, or nil.
func (m *Match) Player(id string) *Player {
	for _, p := range m.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// NextID returns a fresh entity id with the given prefix.
func (m *Match) NextID(prefix string) string {
	m.Seq++
	return fmt.Sprintf("%s_%d", prefix, m.Seq)
}

// HeroesIn returns the heroes standing in hall id, in roster order.
func (m *Match) HeroesIn(id string) []*Hero {
	var out []*Hero
	for _, h := range m.Heroes {
		if h.HallID == id {
			out = append(out, h)
		}
	}
	return out
}

// ActiveHeroesIn returns the non-exhausted heroes standing in hall id.
func (m *Match) ActiveHeroesIn(id string) []*Hero {
	var out []*Hero
	for _, h := range m.HeroesIn(id) {
		if !h.Exhausted {
			out = append(out, h)
		}
	}
	return out
}

// MonstersIn returns the monsters standing in hall id.
func (m *Match) MonstersIn(id string) []*Monster {
	var out []*Monster
	for _, mo := range m.Monsters {
		if mo.HallID == id {
			out = append(out, mo)
		}
	}
	return out
}

// MonstersOwnedBy counts the monsters a player has on the board.
func (m *Match) MonstersOwnedBy(playerID string) int {
	n := 0
	for _, mo := range m.Monsters {
		if mo.OwnerID == playerID {
			n++
		}
	}
	return n
}

// PlaceHero adds h to the roster and to hall's occupants.
func (m *Match) PlaceHero(h *Hero, hall *Hall) {
	h.HallID = hall.ID
	m.Heroes = append(m.Heroes, h)
	hall.Heroes = append(hall.Heroes, h.ID)
}

// MoveHero relocates h to hall, keeping both rosters in sync.
func (m *Match) MoveHero(h *Hero, to *Hall) {
	if from := m.Hall(h.HallID); from != nil {
		deck.Remove(&from.Heroes, h.ID)
	}
	h.HallID = to.ID
	to.Heroes = append(to.Heroes, h.ID)
}

// RemoveHero takes the hero with id out of play and returns it.
func (m *Match) RemoveHero(id string) *Hero {
	idx := slices.IndexFunc(m.Heroes, func(h *Hero) bool { return h.ID == id })
	if idx < 0 {
		return nil
	}
	h := m.Heroes[idx]
	m.Heroes = slices.Delete(m.Heroes, idx, idx+1)
	if hall := m.Hall(h.HallID); hall != nil {
		deck.Remove(&hall.Heroes, h.ID)
	}
	return h
}

// PlaceMonster adds mo to the roster and to hall's occupants.
func (m *Match) PlaceMonster(mo *Monster, hall *Hall) {
	mo.HallID = hall.ID
	m.Monsters = append(m.Monsters, mo)
	hall.Monsters = append(hall.Monsters, mo.ID)
}

// MoveMonster relocates mo to hall, keeping both rosters in sync.
func (m *Match) MoveMonster(mo *Monster, to *Hall) {
	if from := m.Hall(mo.HallID); from != nil {
		deck.Remove(&from.Monsters, mo.ID)
	}
	mo.HallID = to.ID
	to.Monsters = append(to.Monsters, mo.ID)
}

// RemoveMonster takes the monster with id out of play and returns it.
func (m *Match) RemoveMonster(id string) *Monster {
	idx := slices.IndexFunc(m.Monsters, func(mo *Monster) bool { return mo.ID == id })
	if idx < 0 {
		return nil
	}
	mo := m.Monsters[idx]
	m.Monsters = slices.Delete(m.Monsters, idx, idx+1)
	if hall := m.Hall(mo.HallID); hall != nil {
		deck.Remove(&hall.Monsters, mo.ID)
	}
	return mo
}

// Finish ends the match with r. The first result recorded wins.
func (m *Match) Finish(r Result) {
	if m.GameOver {
		return
	}
	m.GameOver = true
	m.Result = r
}

// Terminal reports whether the match has ended.
func (m *Match) Terminal() bool {
	return m.GameOver || m.Phase == PhaseGameOver
}

// GuildExhausted reports whether no further hero can ever be drawn.
func (m *Match) GuildExhausted() bool {
	if len(m.GuildDeck) > 0 {
		return false
	}
	return len(m.GuildDiscard) == 0 || m.GuildReshuffles >= m.Rules.MaxGuildReshuffles
}
