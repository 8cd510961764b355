package rules

import (
	"encoding/json"
	"testing"

	"github.com/nfrund/dungeonwave/internal/game/gametest"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T, m *match.Match) string {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return string(b)
}

func TestApply_RejectsWithoutMutation(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(m *match.Match)
		action Action
		want   error
	}{
		{"unknown player", nil, PlayCard{PlayerID: "p9", CardID: "g1", HallID: "corridor"}, match.ErrPlayerNotFound},
		{"card not in hand", nil, PlayCard{PlayerID: "p1", CardID: "s1", HallID: "corridor"}, match.ErrCardNotInHand},
		{"unknown hall", nil, PlayCard{PlayerID: "p1", CardID: "g1", HallID: "attic"}, match.ErrInvalidHall},
		{"monster limit", func(m *match.Match) {
			for _, id := range []string{"a", "b", "c"} {
				gametest.AddMonster(m, id, "p1", "armory", 1)
			}
		}, PlayCard{PlayerID: "p1", CardID: "g1", HallID: "corridor"}, match.ErrMonsterLimit},
		{"move unknown monster", nil, MoveMonster{PlayerID: "p1", MonsterID: "x", FromHall: "corridor", ToHall: "armory"}, match.ErrMonsterNotFound},
		{"move foreign monster", func(m *match.Match) {
			gametest.AddMonster(m, "mon1", "p2", "corridor", 1)
		}, MoveMonster{PlayerID: "p1", MonsterID: "mon1", FromHall: "corridor", ToHall: "armory"}, match.ErrNotOwner},
		{"move from wrong hall", func(m *match.Match) {
			gametest.AddMonster(m, "mon1", "p1", "corridor", 1)
		}, MoveMonster{PlayerID: "p1", MonsterID: "mon1", FromHall: "armory", ToHall: "prison"}, match.ErrInvalidHall},
		{"move not adjacent", func(m *match.Match) {
			gametest.AddMonster(m, "mon1", "p1", "corridor", 1)
		}, MoveMonster{PlayerID: "p1", MonsterID: "mon1", FromHall: "corridor", ToHall: "prison"}, match.ErrNotAdjacent},
		{"attack unknown hero", func(m *match.Match) {
			gametest.AddMonster(m, "mon1", "p1", "corridor", 1)
		}, Attack{PlayerID: "p1", MonsterID: "mon1", HeroID: "h9"}, match.ErrHeroNotFound},
		{"attack across halls", func(m *match.Match) {
			gametest.AddMonster(m, "mon1", "p1", "corridor", 1)
			gametest.AddHero(m, "h1", "vault", 2)
		}, Attack{PlayerID: "p1", MonsterID: "mon1", HeroID: "h1"}, match.ErrNotSameHall},
		{"buy missing resource", nil, BuyCard{PlayerID: "p1", HallID: "armory", CardID: "sword"}, match.ErrResourceUnavailable},
		{"buy wrong resource", nil, BuyCard{PlayerID: "p1", HallID: "corridor", CardID: "tome"}, match.ErrResourceUnavailable},
		{"buy card off display", nil, BuyCard{PlayerID: "p1", HallID: "corridor", CardID: "bow"}, match.ErrCardNotInShop},
		{"discard missing card", nil, DiscardCard{PlayerID: "p2", CardID: "g1"}, match.ErrCardNotInHand},
		{"wrong phase", func(m *match.Match) {
			m.Phase = match.PhaseHeroes
		}, DiscardCard{PlayerID: "p1", CardID: "g1"}, match.ErrWrongPhase},
		{"game over", func(m *match.Match) {
			m.Finish(match.ResultDefeat)
			m.Phase = match.PhaseGameOver
		}, DiscardCard{PlayerID: "p1", CardID: "g1"}, match.ErrTerminalState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := gametest.NewMatch()
			if tt.setup != nil {
				tt.setup(m)
			}
			before := snapshot(t, m)
			j := gametest.Journal()

			_, err := Apply(m, tt.action, j)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, snapshot(t, m))
			assert.Empty(t, j.Entries())
			assert.Empty(t, j.Events())
		})
	}
}

func TestPlayCard_SummonsMonster(t *testing.T) {
	m := gametest.NewMatch()
	j := gametest.Journal()

	res, err := Apply(m, PlayCard{PlayerID: "p2", CardID: "s2", HallID: "armory"}, j)

	require.NoError(t, err)
	assert.Equal(t, KindPlayCard, res.Kind)
	require.Len(t, m.Monsters, 1)
	mo := m.Monsters[0]
	assert.Equal(t, "skeleton", mo.ClassID)
	assert.Equal(t, "p2", mo.OwnerID)
	assert.Equal(t, 2, mo.HP)
	assert.Equal(t, []string{mo.ID}, m.Hall("armory").Monsters)

	p2 := m.Player("p2")
	assert.Equal(t, []string{"s1", "s3"}, p2.Hand)
	assert.Equal(t, []string{"s2"}, p2.Discard)
	assert.Equal(t, 5, p2.CardCount())

	assert.Equal(t, []string{string(KindPlayCard)}, gametest.Kinds(j))
	assert.Equal(t, []match.EventKind{match.EventActionPerformed}, gametest.EventKinds(j))
}

func TestMoveMonster(t *testing.T) {
	m := gametest.NewMatch()
	gametest.AddMonster(m, "mon1", "p1", "corridor", 1)

	_, err := Apply(m, MoveMonster{PlayerID: "p1", MonsterID: "mon1", FromHall: "corridor", ToHall: "vault"}, gametest.Journal())

	require.NoError(t, err)
	assert.Equal(t, "vault", m.Monster("mon1").HallID)
	assert.Empty(t, m.Hall("corridor").Monsters)
	assert.Empty(t, m.CheckInvariants())
}

func TestAttack_KillsHeroAndGrantsSoul(t *testing.T) {
	m := gametest.NewMatch()
	gametest.AddMonster(m, "mon1", "p1", "corridor", 1)
	hero := gametest.AddHero(m, "h1", "corridor", 2)

	res, err := Apply(m, Attack{PlayerID: "p1", MonsterID: "mon1", HeroID: "h1"}, gametest.Journal())
	require.NoError(t, err)
	assert.Equal(t, false, res.Payload["killed"])
	assert.Equal(t, 1, hero.HP)

	j := gametest.Journal()
	res, err = Apply(m, Attack{PlayerID: "p1", MonsterID: "mon1", HeroID: "h1"}, j)
	require.NoError(t, err)
	assert.Equal(t, true, res.Payload["killed"])
	assert.Nil(t, m.Hero("h1"))
	assert.Equal(t, []string{"warrior"}, m.GuildDiscard)
	assert.Equal(t, 1, m.Player("p1").Resources["souls"])
	assert.Len(t, j.Entries(), 1)
	assert.Equal(t, []match.EventKind{match.EventAttack, match.EventActionPerformed}, gametest.EventKinds(j))
}

func TestBuyCard_SpendsTokenAndRefillsDisplay(t *testing.T) {
	m := gametest.NewMatch()

	_, err := Apply(m, BuyCard{PlayerID: "p1", HallID: "corridor", CardID: "sword"}, gametest.Journal())

	require.NoError(t, err)
	assert.NotContains(t, m.Hall("corridor").Tokens, match.TokenCoin)
	assert.Contains(t, m.Player("p1").Hand, "sword")
	assert.Equal(t, []string{"tome", "amulet", "potion", "axe", "bow"}, m.Shop.Display)
	assert.Empty(t, m.Shop.Deck)
}

func TestBuyCard_MissingTokenLeavesDisplay(t *testing.T) {
	m := gametest.NewMatch()
	display := append([]string(nil), m.Shop.Display...)

	_, err := Apply(m, BuyCard{PlayerID: "p1", HallID: "armory", CardID: "sword"}, gametest.Journal())

	assert.ErrorIs(t, err, match.ErrResourceUnavailable)
	assert.Equal(t, display, m.Shop.Display)
}

func TestDiscardCard_SettlesPendingCurse(t *testing.T) {
	m := gametest.NewMatch()
	m.Player("p1").PendingDiscards = 1
	j := gametest.Journal()

	res, err := Apply(m, DiscardCard{PlayerID: "p1", CardID: "g3"}, j)

	require.NoError(t, err)
	assert.Equal(t, true, res.Payload["curse"])
	assert.Zero(t, m.Player("p1").PendingDiscards)
	assert.Equal(t, []string{"g3"}, m.Player("p1").Discard)
	assert.Equal(t, []match.EventKind{match.EventCardDiscarded, match.EventActionPerformed}, gametest.EventKinds(j))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "buy_card by p2", Describe(BuyCard{PlayerID: "p2"}))
}
