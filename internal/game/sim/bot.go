package sim

import (
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rules"
)

// bot is a greedy player: every monster strikes once per turn, then cards
// are played into the halls the heroes threaten.
type bot struct {
	playerID string
	attacked map[string]bool
	played   int
}

func newBot(playerID string) *bot {
	return &bot{playerID: playerID, attacked: map[string]bool{}}
}

// next picks the bot's next action, or false when it is done for the turn.
func (b *bot) next(m *match.Match) (rules.Action, bool) {
	p := m.Player(b.playerID)
	if p == nil || p.Defeated {
		return nil, false
	}

	for _, mo := range m.Monsters {
		if mo.OwnerID != p.ID || b.attacked[mo.ID] {
			continue
		}
		if heroes := m.HeroesIn(mo.HallID); len(heroes) > 0 {
			b.attacked[mo.ID] = true
			return rules.Attack{PlayerID: p.ID, MonsterID: mo.ID, HeroID: heroes[0].ID}, true
		}
	}

	if len(p.Hand) == 0 || (m.Rules.HandSize > 0 && b.played >= m.Rules.HandSize) {
		return nil, false
	}
	if class, ok := m.MonsterClasses[p.MonsterClass]; ok && class.MaxCount > 0 && m.MonstersOwnedBy(p.ID) >= class.MaxCount {
		return nil, false
	}
	hall := target(m)
	if hall == "" {
		return nil, false
	}
	b.played++
	return rules.PlayCard{PlayerID: p.ID, CardID: p.Hand[0], HallID: hall}, true
}

// target prefers a hall holding a hero, then a hall guarding treasure.
func target(m *match.Match) string {
	for _, h := range m.Heroes {
		if h.HallID != "" {
			return h.HallID
		}
	}
	for _, h := range m.Halls {
		if h.UnopenedTreasure() != nil {
			return h.ID
		}
	}
	if len(m.Halls) > 0 {
		return m.Halls[0].ID
	}
	return ""
}
