// Package heroai runs the automated hero phase: spawning, each hero's turn
// and the end-of-wave result checks.
package heroai

import (
	"fmt"

	"github.com/nfrund/dungeonwave/internal/game/deck"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rng"
	"github.com/nfrund/dungeonwave/internal/game/treasure"
)

// Log entry kinds written during a wave.
const (
	KindSpawn           = "hero_spawn"
	KindGuildReshuffle  = "guild_reshuffle"
	KindTrap            = "hero_trap"
	KindDeath           = "hero_death"
	KindInspire         = "hero_inspire"
	KindAttack          = "hero_attack"
	KindMonsterDefeated = "monster_defeated"
	KindTreasureStolen  = "treasure_stolen"
	KindWait            = "hero_wait"
	KindMove            = "hero_move"
	KindIdle            = "hero_idle"
	KindVictory         = "victory"
	KindWaveResolved    = "wave_resolved"
)

// Outcome summarizes one resolved wave.
type Outcome struct {
	Spawned []string
	Acted   int
	Result  match.Result
}

// RunWave resolves the hero phase for the current m.Wave.
func RunWave(src rng.Source, m *match.Match, j *match.Journal) Outcome {
	var out Outcome

	spawned, ok := spawn(src, m, j)
	out.Spawned = spawned
	if !ok {
		m.Finish(match.ResultVictory)
		j.Record(KindVictory, map[string]any{"reason": "guild_exhausted", "wave": m.Wave})
		out.Result = m.Result
		return out
	}

	order := make([]string, len(m.Heroes))
	for i, h := range m.Heroes {
		order[i] = h.ID
	}
	for _, id := range order {
		if m.GameOver {
			break
		}
		hero := m.Hero(id)
		if hero == nil || hero.Exhausted {
			continue
		}
		safeTurn(src, m, hero, j)
		out.Acted++
	}

	evaluate(m, j)
	out.Result = m.Result
	j.Record(KindWaveResolved, map[string]any{
		"wave":    m.Wave,
		"spawned": len(spawned),
		"acted":   out.Acted,
		"heroes":  len(m.Heroes),
	})
	return out
}

// spawn draws this wave's guild cards and places a hero for each. It
// returns false when the guild cannot supply a single card.
func spawn(src rng.Source, m *match.Match, j *match.Journal) ([]string, bool) {
	n := m.Rules.CardsToPlay(m.Difficulty, m.Wave)
	limit := max(m.Rules.MaxGuildReshuffles-m.GuildReshuffles, 0)

	cards, reshuffles := deck.DrawWithReshuffle(src, &m.GuildDeck, &m.GuildDiscard, n, limit)
	if reshuffles > 0 {
		m.GuildReshuffles += reshuffles
		j.Record(KindGuildReshuffle, map[string]any{"count": m.GuildReshuffles, "deck": len(m.GuildDeck)})
	}
	if len(cards) == 0 {
		return nil, false
	}

	var spawned []string
	for _, card := range cards {
		tmpl, ok := m.HeroTemplates[card]
		if !ok {
			j.Warn("unknown hero template", map[string]any{"card": card})
			tmpl = match.HeroTemplate{ID: card, Name: card, HP: 1}
		}
		hall := spawnHall(src, m, tmpl.Spawn)
		if hall == nil {
			j.Warn("no hall to spawn hero", map[string]any{"card": card})
			m.GuildDiscard = append(m.GuildDiscard, card)
			continue
		}
		hp := max(tmpl.HP, 1)
		hero := &match.Hero{
			ID:     m.NextID("hero"),
			CardID: card,
			Name:   tmpl.Name,
			HP:     hp,
			MaxHP:  hp,
		}
		m.PlaceHero(hero, hall)
		spawned = append(spawned, hero.ID)
		j.Record(KindSpawn, map[string]any{"hero": hero.ID, "card": card, "hall": hall.ID})
	}
	return spawned, true
}

func spawnHall(src rng.Source, m *match.Match, tag string) *match.Hall {
	var tagged []*match.Hall
	if tag != "" {
		for _, h := range m.Halls {
			if h.Spawn == tag {
				tagged = append(tagged, h)
			}
		}
	}
	if len(tagged) == 0 {
		tagged = m.Halls
	}
	hall, _ := rng.Pick(src, tagged)
	return hall
}

// safeTurn keeps one misbehaving hero from aborting the rest of the wave.
func safeTurn(src rng.Source, m *match.Match, hero *match.Hero, j *match.Journal) {
	defer func() {
		if r := recover(); r != nil {
			j.Warn("hero turn aborted", map[string]any{"hero": hero.ID, "panic": fmt.Sprint(r)})
		}
	}()
	Turn(src, m, hero, j)
}

// Turn plays one hero's turn. After each move the hero re-evaluates its new
// hall; the number of steps is bounded by the number of halls.
func Turn(src rng.Source, m *match.Match, hero *match.Hero, j *match.Journal) {
	budget := max(len(m.Halls), 1)
	for i := 0; i < budget; i++ {
		hall := m.Hall(hero.HallID)
		if hall == nil {
			j.Warn("hero in unknown hall", map[string]any{"hero": hero.ID, "hall": hero.HallID})
			return
		}
		if done := step(src, m, hero, hall, j); done {
			return
		}
	}
	hero.Exhausted = true
	j.Warn("hero step budget exhausted", map[string]any{"hero": hero.ID, "hall": hero.HallID})
}

// step runs the trap, inspire, attack, theft and move checks in hall and
// reports whether the hero's turn is over.
func step(src rng.Source, m *match.Match, hero *match.Hero, hall *match.Hall, j *match.Journal) bool {
	for hall.RemoveToken(match.TokenTrap) {
		hero.HP--
		j.Record(KindTrap, map[string]any{"hero": hero.ID, "hall": hall.ID, "hp": hero.HP})
		if hero.HP <= 0 {
			Kill(m, hero, "trap", j)
			return true
		}
	}

	var inspired []string
	for _, other := range m.HeroesIn(hall.ID) {
		if other.ID != hero.ID && other.Exhausted {
			other.Exhausted = false
			inspired = append(inspired, other.ID)
		}
	}
	if len(inspired) > 0 {
		j.Record(KindInspire, map[string]any{"hero": hero.ID, "hall": hall.ID, "inspired": inspired})
	}

	if target, ok := rng.Pick(src, m.MonstersIn(hall.ID)); ok {
		target.HP--
		j.Record(KindAttack, map[string]any{"hero": hero.ID, "monster": target.ID, "hall": hall.ID, "hp": target.HP})
		j.Emit(match.EventAttack, map[string]any{
			"attacker":  hero.ID,
			"target":    target.ID,
			"damage":    1,
			"target_hp": target.HP,
		})
		if target.HP <= 0 {
			m.RemoveMonster(target.ID)
			j.Record(KindMonsterDefeated, map[string]any{"monster": target.ID, "owner": target.OwnerID, "hall": hall.ID})
		}
		hero.Exhausted = true
		return true
	}

	if t := hall.UnopenedTreasure(); t != nil {
		active := len(m.ActiveHeroesIn(hall.ID))
		if active < required(t) {
			hero.Exhausted = true
			j.Record(KindWait, map[string]any{"hero": hero.ID, "hall": hall.ID, "active": active, "required": required(t)})
			return true
		}
		t.Opened = true
		stolen := *t
		hall.Treasure = nil
		m.Stolen = append(m.Stolen, stolen)
		j.Record(KindTreasureStolen, map[string]any{"hero": hero.ID, "hall": hall.ID, "treasure": stolen.ID, "tier": stolen.Tier})
		treasure.Resolve(src, m, hall.ID, stolen.Tier, j)
		return true
	}

	next := NextHall(src, m, hall)
	if next == nil {
		j.Record(KindIdle, map[string]any{"hero": hero.ID, "hall": hall.ID, "reason": "dead_end"})
		return true
	}
	m.MoveHero(hero, next)
	j.Record(KindMove, map[string]any{"hero": hero.ID, "from": hall.ID, "to": next.ID})
	j.Emit(match.EventMove, map[string]any{"actor_id": hero.ID, "from_hall": hall.ID, "to_hall": next.ID})
	return false
}

// Kill removes a dead hero and returns its card to the guild discard.
func Kill(m *match.Match, hero *match.Hero, cause string, j *match.Journal) {
	m.RemoveHero(hero.ID)
	m.GuildDiscard = append(m.GuildDiscard, hero.CardID)
	j.Record(KindDeath, map[string]any{"hero": hero.ID, "hall": hero.HallID, "cause": cause})
}

func required(t *match.Treasure) int {
	if t.Required > 0 {
		return t.Required
	}
	return t.Tier
}

// evaluate applies the end-of-wave victory check. Defeat is already final
// once the main treasure effect fired.
func evaluate(m *match.Match, j *match.Journal) {
	if m.GameOver {
		return
	}
	if !m.GuildExhausted() {
		return
	}
	if len(m.Heroes) == 0 || (m.Rules.MaxWaves > 0 && m.Wave >= m.Rules.MaxWaves) {
		m.Finish(match.ResultVictory)
		j.Record(KindVictory, map[string]any{"reason": "heroes_exhausted", "wave": m.Wave})
	}
}
