// Package phase drives a match through its PLAYER, HEROES and GAME_OVER
// phases.
package phase

import (
	"github.com/nfrund/dungeonwave/internal/game/deck"
	"github.com/nfrund/dungeonwave/internal/game/heroai"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rng"
)

// KindPhaseChanged is the log entry kind written on every transition.
const KindPhaseChanged = "phase_changed"

// Manager applies phase transitions using a single random source. Create
// one per request; it is not safe for concurrent use.
type Manager struct {
	src rng.Source
}

// New returns a Manager drawing randomness from src.
func New(src rng.Source) *Manager {
	return &Manager{src: src}
}

// Start deals the opening hands and opens the first PLAYER phase.
func (pm *Manager) Start(m *match.Match, j *match.Journal) error {
	if m.Terminal() {
		return match.Fail(match.CodeGameOver, "match %s ended with %s", m.ID, m.Result)
	}
	if m.Phase != match.PhaseSetup {
		return match.Fail(match.CodeWrongPhase, "match %s already started", m.ID)
	}
	pm.deal(m, j)
	j.Emit(match.EventGameStarted, map[string]any{"match": m.ID, "players": len(m.Players)})
	transition(m, match.PhasePlayer, j)
	return nil
}

// EndTurn closes the PLAYER phase, runs the hero wave and either returns to
// PLAYER or ends the match.
func (pm *Manager) EndTurn(m *match.Match, j *match.Journal) (heroai.Outcome, error) {
	if m.Terminal() {
		return heroai.Outcome{}, match.Fail(match.CodeGameOver, "match %s ended with %s", m.ID, m.Result)
	}
	if m.Phase != match.PhasePlayer {
		return heroai.Outcome{}, match.Fail(match.CodeWrongPhase, "turns end in the %s phase, not %s", match.PhasePlayer, m.Phase)
	}

	settleDiscards(m, j)
	j.Emit(match.EventTurnEnded, map[string]any{"wave": m.Wave})

	m.Wave++
	transition(m, match.PhaseHeroes, j)

	out := heroai.RunWave(pm.src, m, j)
	if m.GameOver {
		transition(m, match.PhaseGameOver, j)
		return out, nil
	}

	pm.deal(m, j)
	transition(m, match.PhasePlayer, j)
	return out, nil
}

// AfterAction ends the match if the accepted action produced a result. It
// reports whether the match is now over.
func (pm *Manager) AfterAction(m *match.Match, j *match.Journal) bool {
	if !m.GameOver {
		return false
	}
	if m.Phase != match.PhaseGameOver {
		transition(m, match.PhaseGameOver, j)
	}
	return true
}

// deal tops every active player's hand up to the hand size.
func (pm *Manager) deal(m *match.Match, j *match.Journal) {
	size := m.Rules.HandSize
	if size <= 0 {
		return
	}
	for _, p := range m.Players {
		need := size - len(p.Hand)
		if p.Defeated || need <= 0 {
			continue
		}
		drawn, reshuffles := deck.DrawWithReshuffle(pm.src, &p.Deck, &p.Discard, need, -1)
		if len(drawn) == 0 {
			continue
		}
		p.Hand = append(p.Hand, drawn...)
		j.Record("draw", map[string]any{"player": p.ID, "cards": len(drawn), "reshuffles": reshuffles})
	}
}

// settleDiscards applies the default choice for curse discards the players
// left open.
func settleDiscards(m *match.Match, j *match.Journal) {
	for _, p := range m.Players {
		for p.PendingDiscards > 0 {
			p.PendingDiscards--
			if len(p.Hand) == 0 {
				continue
			}
			card := p.Hand[0]
			p.DiscardCard(card)
			j.Record("curse_discard", map[string]any{"player": p.ID, "card": card, "reason": "turn_ended"})
			j.Emit(match.EventCardDiscarded, map[string]any{"player": p.ID, "card": card})
		}
	}
}

func transition(m *match.Match, to match.Phase, j *match.Journal) {
	from := m.Phase
	m.Phase = to
	payload := map[string]any{"from": string(from), "to": string(to), "wave": m.Wave}
	j.Record(KindPhaseChanged, payload)
	j.Emit(match.EventPhaseChanged, payload)
	if to == match.PhaseGameOver {
		j.Record("game_over", map[string]any{"result": string(m.Result), "wave": m.Wave})
		j.Emit(match.EventGameOver, map[string]any{"result": string(m.Result), "wave": m.Wave})
	}
}
