// Package catalog loads the immutable reference data a match is created
// from: the hall graph, hero templates, monster classes, shop cards and the
// rules tables.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nfrund/dungeonwave/internal/game/match"
)

// TreasureDef binds a treasure to a hall.
type TreasureDef struct {
	ID       string `yaml:"id" json:"id"`
	Tier     int    `yaml:"tier" json:"tier" validate:"min=1,max=4"`
	Required int    `yaml:"required" json:"required" validate:"min=0"`
}

// HallDef is one node of the scenario graph.
type HallDef struct {
	ID          string       `yaml:"id" json:"id" validate:"required"`
	Label       string       `yaml:"label" json:"label"`
	Spawn       string       `yaml:"spawn" json:"spawn"`
	Connections []string     `yaml:"connections" json:"connections"`
	Tokens      []string     `yaml:"tokens" json:"tokens"`
	Treasure    *TreasureDef `yaml:"treasure" json:"treasure" validate:"omitempty"`
}

// HeroDef is a hero template. Copies is the number of guild cards it
// contributes, one when unset.
type HeroDef struct {
	ID     string `yaml:"id" json:"id" validate:"required"`
	Name   string `yaml:"name" json:"name"`
	HP     int    `yaml:"hp" json:"hp" validate:"min=1"`
	Spawn  string `yaml:"spawn" json:"spawn"`
	Copies int    `yaml:"copies" json:"copies" validate:"min=0"`
}

// ClassDef is a monster class together with the cards of its deck.
type ClassDef struct {
	ID       string   `yaml:"id" json:"id" validate:"required"`
	Name     string   `yaml:"name" json:"name"`
	HP       int      `yaml:"hp" json:"hp" validate:"min=1"`
	MaxCount int      `yaml:"max_count" json:"max_count" validate:"min=0"`
	Spawn    string   `yaml:"spawn" json:"spawn"`
	Cards    []string `yaml:"cards" json:"cards" validate:"required,min=1,dive,required"`
}

// ShopCardDef is a purchasable card.
type ShopCardDef struct {
	ID     string `yaml:"id" json:"id" validate:"required"`
	Name   string `yaml:"name" json:"name"`
	Class  string `yaml:"class" json:"class"`
	Cost   string `yaml:"cost" json:"cost" validate:"required,oneof=coin book frog bone"`
	Copies int    `yaml:"copies" json:"copies" validate:"min=0"`
}

// DifficultyDef holds the per-difficulty knobs. CardsScript, when set, is a
// tengo program that computes CardsPerWave.
type DifficultyDef struct {
	CardsPerWave []int  `yaml:"cards_per_wave" json:"cards_per_wave" validate:"dive,min=0"`
	HealHP       int    `yaml:"heal_hp" json:"heal_hp" validate:"min=0"`
	CardsScript  string `yaml:"cards_script" json:"cards_script"`
}

// RulesDef overrides the base rules. Zero values keep the defaults.
type RulesDef struct {
	PrisonHall         string                             `yaml:"prison_hall" json:"prison_hall"`
	DisplaySize        int                                `yaml:"display_size" json:"display_size" validate:"min=0"`
	HandSize           int                                `yaml:"hand_size" json:"hand_size" validate:"min=0"`
	MaxWaves           int                                `yaml:"max_waves" json:"max_waves" validate:"min=0"`
	MaxGuildReshuffles *int                               `yaml:"max_guild_reshuffles" json:"max_guild_reshuffles" validate:"omitempty,min=0"`
	CurseMode          string                             `yaml:"curse_mode" json:"curse_mode" validate:"omitempty,oneof=auto prompt"`
	TreasureTable      map[int][]string                   `yaml:"treasure_table" json:"treasure_table"`
	Difficulties       map[match.Difficulty]DifficultyDef `yaml:"difficulties" json:"difficulties" validate:"dive"`
}

// Scenario is the dungeon layout. Guild, when set, replaces the deck
// built from hero copies.
type Scenario struct {
	Name  string    `yaml:"name" json:"name"`
	Halls []HallDef `yaml:"halls" json:"halls" validate:"required,min=1,dive"`
	Guild []string  `yaml:"guild" json:"guild"`
}

// Catalog is the loaded, validated reference data. Callers must treat it as
// read-only; the accessors return fresh copies.
type Catalog struct {
	Scenario Scenario      `json:"scenario"`
	Heroes   []HeroDef     `json:"heroes" validate:"required,min=1,dive"`
	Classes  []ClassDef    `json:"classes" validate:"required,min=1,dive"`
	Shop     []ShopCardDef `json:"shop" validate:"dive"`
	Rules    RulesDef      `json:"rules"`
}

// Class returns the class with id.
func (c *Catalog) Class(id string) (ClassDef, bool) {
	return lo.Find(c.Classes, func(d ClassDef) bool { return d.ID == id })
}

// ClassIDs lists the monster classes in catalog order.
func (c *Catalog) ClassIDs() []string {
	return lo.Map(c.Classes, func(d ClassDef, _ int) string { return d.ID })
}

// MatchRules builds the rules snapshot for a new match.
func (c *Catalog) MatchRules() match.Rules {
	r := match.DefaultRules()
	def := c.Rules
	if def.PrisonHall != "" {
		r.PrisonHall = def.PrisonHall
	}
	if def.DisplaySize > 0 {
		r.DisplaySize = def.DisplaySize
	}
	if def.HandSize > 0 {
		r.HandSize = def.HandSize
	}
	if def.MaxWaves > 0 {
		r.MaxWaves = def.MaxWaves
	}
	if def.MaxGuildReshuffles != nil {
		r.MaxGuildReshuffles = *def.MaxGuildReshuffles
	}
	if def.CurseMode != "" {
		r.CurseMode = match.CurseMode(def.CurseMode)
	}
	for tier, effects := range def.TreasureTable {
		r.TreasureTable[tier] = lo.Map(effects, func(e string, _ int) match.Effect { return match.Effect(e) })
	}
	for d, dd := range def.Difficulties {
		if len(dd.CardsPerWave) > 0 {
			r.CardsPerWave[d] = slices.Clone(dd.CardsPerWave)
		}
		r.HealHP[d] = dd.HealHP
	}
	return r
}

// Halls returns a fresh, empty board.
func (c *Catalog) Halls() []*match.Hall {
	out := make([]*match.Hall, 0, len(c.Scenario.Halls))
	for _, d := range c.Scenario.Halls {
		h := &match.Hall{
			ID:          d.ID,
			Label:       d.Label,
			Spawn:       d.Spawn,
			Connections: append([]string{}, d.Connections...),
			Tokens:      append([]string{}, d.Tokens...),
			Heroes:      []string{},
			Monsters:    []string{},
		}
		if d.Treasure != nil {
			h.Treasure = &match.Treasure{ID: d.Treasure.ID, Tier: d.Treasure.Tier, Required: d.Treasure.Required}
		}
		out = append(out, h)
	}
	return out
}

// GuildCards is the unshuffled guild deck.
func (c *Catalog) GuildCards() []string {
	if len(c.Scenario.Guild) > 0 {
		return slices.Clone(c.Scenario.Guild)
	}
	var out []string
	for _, h := range c.Heroes {
		for range max(h.Copies, 1) {
			out = append(out, h.ID)
		}
	}
	return out
}

// ShopDeck is the unshuffled shop deck.
func (c *Catalog) ShopDeck() []string {
	var out []string
	for _, s := range c.Shop {
		for range max(s.Copies, 1) {
			out = append(out, s.ID)
		}
	}
	return out
}

// HeroTemplates indexes the hero templates by id.
func (c *Catalog) HeroTemplates() map[string]match.HeroTemplate {
	return lo.SliceToMap(c.Heroes, func(d HeroDef) (string, match.HeroTemplate) {
		return d.ID, match.HeroTemplate{ID: d.ID, Name: d.Name, HP: d.HP, Spawn: d.Spawn}
	})
}

// MonsterClasses indexes the monster classes by id.
func (c *Catalog) MonsterClasses() map[string]match.MonsterClass {
	return lo.SliceToMap(c.Classes, func(d ClassDef) (string, match.MonsterClass) {
		return d.ID, match.MonsterClass{ID: d.ID, Name: d.Name, HP: d.HP, MaxCount: d.MaxCount, Spawn: d.Spawn}
	})
}

// ShopCards indexes the shop cards by id.
func (c *Catalog) ShopCards() map[string]match.ShopCard {
	return lo.SliceToMap(c.Shop, func(d ShopCardDef) (string, match.ShopCard) {
		return d.ID, match.ShopCard{ID: d.ID, Name: d.Name, Class: d.Class, Cost: d.Cost}
	})
}

// Warning is a data integrity problem the loader repaired.
type Warning struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

// Warning kinds.
const (
	WarnAsymmetricLink  = "asymmetric_link"
	WarnUnknownHall     = "unknown_hall"
	WarnUnknownClass    = "unknown_class"
	WarnUnknownTemplate = "unknown_template"
	WarnUnknownEffect   = "unknown_effect"
)

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %s", w.Kind, w.Subject, w.Detail)
}

// DisplayName turns an id such as "dark_knight" into "Dark Knight".
func DisplayName(id string) string {
	return cases.Title(language.English).String(strings.NewReplacer("_", " ", "-", " ").Replace(id))
}
