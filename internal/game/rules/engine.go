package rules

import (
	"fmt"

	"github.com/nfrund/dungeonwave/internal/game/match"
)

// Apply validates a against m and, only if every precondition holds,
// mutates m. It records one log entry and one action_performed event per
// accepted action. Phase advancement is left to the caller.
func Apply(m *match.Match, a Action, j *match.Journal) (Result, error) {
	if m.Terminal() {
		return Result{}, match.Fail(match.CodeGameOver, "match %s ended with %s", m.ID, m.Result)
	}
	if m.Phase != match.PhasePlayer {
		return Result{}, match.Fail(match.CodeWrongPhase, "actions are accepted in the %s phase, not %s", match.PhasePlayer, m.Phase)
	}
	player := m.Player(a.Actor())
	if player == nil {
		return Result{}, match.Fail(match.CodePlayerNotFound, "player %q", a.Actor())
	}

	var (
		payload map[string]any
		err     error
	)
	switch act := a.(type) {
	case PlayCard:
		payload, err = playCard(m, player, act)
	case MoveMonster:
		payload, err = moveMonster(m, player, act)
	case Attack:
		payload, err = attack(m, player, act, j)
	case BuyCard:
		payload, err = buyCard(m, player, act)
	case DiscardCard:
		payload, err = discardCard(player, act, j)
	default:
		err = match.Fail(match.CodeInvalidAction, "unsupported action %T", a)
	}
	if err != nil {
		return Result{}, err
	}

	payload["player"] = player.ID
	j.Record(string(a.Kind()), payload)
	j.Emit(match.EventActionPerformed, map[string]any{"action": string(a.Kind()), "result": payload})
	return Result{Kind: a.Kind(), Payload: payload}, nil
}

func playCard(m *match.Match, p *match.Player, a PlayCard) (map[string]any, error) {
	if !p.HasCard(a.CardID) {
		return nil, match.Fail(match.CodeCardNotInHand, "player %s has no card %q", p.ID, a.CardID)
	}
	hall := m.Hall(a.HallID)
	if hall == nil {
		return nil, match.Fail(match.CodeInvalidHall, "hall %q", a.HallID)
	}
	class, ok := m.MonsterClasses[p.MonsterClass]
	if !ok {
		class = match.MonsterClass{ID: p.MonsterClass, Name: p.MonsterClass, HP: 1}
	}
	if class.MaxCount > 0 && m.MonstersOwnedBy(p.ID) >= class.MaxCount {
		return nil, match.Fail(match.CodeMonsterLimit, "player %s already fields %d %s", p.ID, class.MaxCount, class.ID)
	}

	p.DiscardCard(a.CardID)
	mo := &match.Monster{
		ID:      m.NextID("monster"),
		ClassID: class.ID,
		OwnerID: p.ID,
		HP:      max(class.HP, 1),
	}
	m.PlaceMonster(mo, hall)
	return map[string]any{"card": a.CardID, "monster": mo.ID, "hall": hall.ID}, nil
}

func ownedMonster(m *match.Match, p *match.Player, id string) (*match.Monster, error) {
	mo := m.Monster(id)
	if mo == nil {
		return nil, match.Fail(match.CodeMonsterNotFound, "monster %q", id)
	}
	if mo.OwnerID != p.ID {
		return nil, match.Fail(match.CodeNotOwner, "monster %s belongs to %s", mo.ID, mo.OwnerID)
	}
	return mo, nil
}

func moveMonster(m *match.Match, p *match.Player, a MoveMonster) (map[string]any, error) {
	mo, err := ownedMonster(m, p, a.MonsterID)
	if err != nil {
		return nil, err
	}
	from := m.Hall(a.FromHall)
	if from == nil || mo.HallID != from.ID {
		return nil, match.Fail(match.CodeInvalidHall, "monster %s is not in hall %q", mo.ID, a.FromHall)
	}
	to := m.Hall(a.ToHall)
	if to == nil {
		return nil, match.Fail(match.CodeInvalidHall, "hall %q", a.ToHall)
	}
	if !from.ConnectedTo(to.ID) {
		return nil, match.Fail(match.CodeNotAdjacent, "%s is not adjacent to %s", from.ID, to.ID)
	}

	m.MoveMonster(mo, to)
	return map[string]any{"monster": mo.ID, "from": from.ID, "to": to.ID}, nil
}

func attack(m *match.Match, p *match.Player, a Attack, j *match.Journal) (map[string]any, error) {
	mo, err := ownedMonster(m, p, a.MonsterID)
	if err != nil {
		return nil, err
	}
	hero := m.Hero(a.HeroID)
	if hero == nil {
		return nil, match.Fail(match.CodeHeroNotFound, "hero %q", a.HeroID)
	}
	if hero.HallID != mo.HallID {
		return nil, match.Fail(match.CodeNotSameHall, "monster %s is in %s, hero %s is in %s", mo.ID, mo.HallID, hero.ID, hero.HallID)
	}

	hero.HP--
	killed := hero.HP <= 0
	if killed {
		m.RemoveHero(hero.ID)
		m.GuildDiscard = append(m.GuildDiscard, hero.CardID)
		if p.Resources == nil {
			p.Resources = map[string]int{}
		}
		p.Resources["souls"]++
	}
	j.Emit(match.EventAttack, map[string]any{
		"attacker":  mo.ID,
		"target":    hero.ID,
		"damage":    1,
		"target_hp": max(hero.HP, 0),
	})
	return map[string]any{"monster": mo.ID, "hero": hero.ID, "hero_hp": max(hero.HP, 0), "killed": killed}, nil
}

func buyCard(m *match.Match, p *match.Player, a BuyCard) (map[string]any, error) {
	hall := m.Hall(a.HallID)
	if hall == nil {
		return nil, match.Fail(match.CodeInvalidHall, "hall %q", a.HallID)
	}
	if !m.Shop.Offers(a.CardID) {
		return nil, match.Fail(match.CodeCardNotInShop, "card %q is not on display", a.CardID)
	}
	cost := m.ShopCards[a.CardID].Cost
	if cost == "" || !hall.HasToken(cost) {
		return nil, match.Fail(match.CodeResourceUnavailable, "hall %s has no %q token for %s", hall.ID, cost, a.CardID)
	}

	hall.RemoveToken(cost)
	m.Shop.Take(a.CardID)
	p.Hand = append(p.Hand, a.CardID)
	return map[string]any{"card": a.CardID, "hall": hall.ID, "spent": cost}, nil
}

func discardCard(p *match.Player, a DiscardCard, j *match.Journal) (map[string]any, error) {
	if !p.DiscardCard(a.CardID) {
		return nil, match.Fail(match.CodeCardNotInHand, "player %s has no card %q", p.ID, a.CardID)
	}
	settled := p.PendingDiscards > 0
	if settled {
		p.PendingDiscards--
	}
	j.Emit(match.EventCardDiscarded, map[string]any{"player": p.ID, "card": a.CardID})
	return map[string]any{"card": a.CardID, "curse": settled}, nil
}

// Describe renders a for logs.
func Describe(a Action) string {
	return fmt.Sprintf("%s by %s", a.Kind(), a.Actor())
}
