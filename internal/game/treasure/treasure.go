// Package treasure resolves the consequence of heroes stealing a treasure.
package treasure

import (
	"slices"

	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rng"
)

// KindEffect is the log entry kind written for every resolution.
const KindEffect = "treasure_effect"

// Choose picks one effect for tier uniformly at random. It returns false for
// tiers without candidates.
func Choose(src rng.Source, rules match.Rules, tier int) (match.Effect, bool) {
	return rng.Pick(src, rules.Candidates(tier))
}

// Resolve selects and applies an effect for a treasure of tier stolen in
// hallID. It never fails; inconsistencies degrade to no-ops with a warning.
func Resolve(src rng.Source, m *match.Match, hallID string, tier int, j *match.Journal) match.Effect {
	effect, ok := Choose(src, m.Rules, tier)
	if !ok {
		j.Warn("no treasure effect for tier", map[string]any{"tier": tier, "hall": hallID})
		j.Record(KindEffect, map[string]any{"effect": "none", "hall": hallID, "tier": tier})
		return ""
	}
	Apply(src, m, hallID, effect, j)
	j.Record(KindEffect, map[string]any{"effect": string(effect), "hall": hallID, "tier": tier})
	j.Emit(match.EventTreasureEffect, map[string]any{"effect": string(effect), "hall": hallID, "tier": tier})
	return effect
}

// Apply performs effect against the match.
func Apply(src rng.Source, m *match.Match, hallID string, effect match.Effect, j *match.Journal) {
	switch effect {
	case match.EffectRobbery:
		robbery(src, m, hallID, j)
	case match.EffectCurse:
		curse(m, j)
	case match.EffectHeal:
		heal(m, hallID, j)
	case match.EffectPrisoner:
		prisoner(m, j)
	case match.EffectDefeat:
		m.Finish(match.ResultDefeat)
		j.Record("defeat", map[string]any{"reason": "main_treasure_stolen", "hall": hallID})
	default:
		j.Warn("unknown treasure effect", map[string]any{"effect": string(effect)})
	}
}

func robbery(src rng.Source, m *match.Match, hallID string, j *match.Journal) {
	hall := m.Hall(hallID)
	if hall == nil {
		j.Warn("robbery in unknown hall", map[string]any{"hall": hallID})
		return
	}
	var loot []string
	for _, t := range hall.Tokens {
		if slices.Contains(match.ResourceTokens, t) {
			loot = append(loot, t)
		}
	}
	token, ok := rng.Pick(src, loot)
	if !ok {
		j.Record("robbery", map[string]any{"hall": hallID, "removed": nil})
		return
	}
	hall.RemoveToken(token)
	j.Record("robbery", map[string]any{"hall": hallID, "removed": token})
}

func curse(m *match.Match, j *match.Journal) {
	for _, p := range m.Players {
		if len(p.Hand) == 0 {
			j.Record("curse_skip", map[string]any{"player": p.ID})
			continue
		}
		card := p.Hand[0]
		j.EmitTo(p.ID, match.EventChooseDiscard, map[string]any{
			"player":  p.ID,
			"hand":    slices.Clone(p.Hand),
			"default": card,
		})
		if m.Rules.CurseMode == match.CursePrompt {
			p.PendingDiscards++
			j.Record("curse_prompt", map[string]any{"player": p.ID, "pending": p.PendingDiscards})
			continue
		}
		p.DiscardCard(card)
		j.Record("curse_discard", map[string]any{"player": p.ID, "card": card})
		j.Emit(match.EventCardDiscarded, map[string]any{"player": p.ID, "card": card})
	}
}

func heal(m *match.Match, hallID string, j *match.Journal) {
	amount := m.Rules.HealHP[m.Difficulty]
	healed := 0
	for _, h := range m.HeroesIn(hallID) {
		h.Exhausted = false
		h.HP = min(h.HP+amount, max(h.MaxHP, h.HP))
		healed++
	}
	j.Record("heal", map[string]any{"hall": hallID, "heroes": healed, "hp": amount})
}

func prisoner(m *match.Match, j *match.Journal) {
	if len(m.Heroes) == 0 {
		j.Record("prisoner", map[string]any{"hero": nil})
		return
	}
	hero := m.RemoveHero(m.Heroes[0].ID)
	prison := m.Hall(m.Rules.PrisonHall)
	if prison == nil {
		j.Warn("prison hall missing", map[string]any{"hall": m.Rules.PrisonHall, "hero": hero.ID})
	} else {
		prison.Tokens = append(prison.Tokens, match.TokenPrisoner)
	}
	j.Record("prisoner", map[string]any{"hero": hero.ID, "hall": m.Rules.PrisonHall})
}
