package match_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/nfrund/dungeonwave/internal/game/gametest"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailure_Is(t *testing.T) {
	err := fmt.Errorf("play card: %w", match.Fail(match.CodeCardNotInHand, "card %s", "g9"))

	assert.ErrorIs(t, err, match.ErrCardNotInHand)
	assert.ErrorIs(t, err, match.ErrValidation)
	assert.NotErrorIs(t, err, match.ErrNotFound)
	assert.NotErrorIs(t, err, match.ErrPlayerNotFound)
	assert.Contains(t, err.Error(), "card_not_in_hand: card g9")

	assert.ErrorIs(t, match.Fail(match.CodePlayerNotFound, "p9"), match.ErrNotFound)
	assert.ErrorIs(t, match.ErrGameOver, match.ErrTerminalState)

	var f *match.Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, match.CodeCardNotInHand, f.Code)
}

func TestRosterOperations_KeepInvariants(t *testing.T) {
	m := gametest.NewMatch()
	h := gametest.AddHero(m, "h1", "entrance", 2)
	mo := gametest.AddMonster(m, "m1", "p1", "corridor", 1)
	require.Empty(t, m.CheckInvariants())

	m.MoveHero(h, m.Hall("corridor"))
	m.MoveMonster(mo, m.Hall("armory"))
	assert.Empty(t, m.CheckInvariants())
	assert.Equal(t, []string{"h1"}, m.Hall("corridor").Heroes)
	assert.Empty(t, m.Hall("entrance").Heroes)
	assert.Equal(t, []string{"m1"}, m.Hall("armory").Monsters)

	assert.Same(t, h, m.RemoveHero("h1"))
	assert.Nil(t, m.RemoveHero("h1"))
	assert.Same(t, mo, m.RemoveMonster("m1"))
	assert.Empty(t, m.Hall("corridor").Heroes)
	assert.Empty(t, m.Hall("armory").Monsters)
	assert.Empty(t, m.CheckInvariants())
}

func TestCheckInvariants_DetectsProblems(t *testing.T) {
	m := gametest.NewMatch()
	gametest.AddHero(m, "h1", "entrance", 2)
	m.Hall("corridor").Heroes = append(m.Hall("corridor").Heroes, "h1")
	m.Hall("prison").Connections = append(m.Hall("prison").Connections, "vault")

	errs := m.CheckInvariants()
	assert.GreaterOrEqual(t, len(errs), 2)
	assert.Equal(t, [][2]string{{"prison", "vault"}}, m.AsymmetricLinks())
}

func TestRules_CardsToPlay(t *testing.T) {
	r := match.DefaultRules()

	tests := []struct {
		difficulty match.Difficulty
		wave       int
		want       int
	}{
		{match.DifficultyFamily, 1, 1},
		{match.DifficultyFamily, 2, 2},
		{match.DifficultyProblem, 1, 2},
		{match.DifficultyProblem, 2, 2},
		{match.DifficultyHard, 1, 2},
		{match.DifficultyHard, 2, 3},
		{match.DifficultyHard, 7, 3},
		{match.Difficulty("unknown"), 1, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.difficulty, tt.wave), func(t *testing.T) {
			assert.Equal(t, tt.want, r.CardsToPlay(tt.difficulty, tt.wave))
		})
	}
}

func TestFinish_FirstResultWins(t *testing.T) {
	m := gametest.NewMatch()
	m.Finish(match.ResultDefeat)
	m.Finish(match.ResultVictory)
	assert.True(t, m.GameOver)
	assert.Equal(t, match.ResultDefeat, m.Result)
	assert.True(t, m.Terminal())
}

func TestGuildExhausted(t *testing.T) {
	m := gametest.NewMatch()
	assert.False(t, m.GuildExhausted())

	m.GuildDiscard, m.GuildDeck = m.GuildDeck, nil
	assert.False(t, m.GuildExhausted(), "reshuffle still available")

	m.GuildReshuffles = m.Rules.MaxGuildReshuffles
	assert.True(t, m.GuildExhausted())
}

func TestMatch_JSONRoundTrip(t *testing.T) {
	m := gametest.NewMatch()
	gametest.AddHero(m, "h1", "entrance", 2)

	first, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded match.Match
	require.NoError(t, json.Unmarshal(first, &decoded))
	second, err := json.Marshal(&decoded)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, m.Rules.CardsToPlay(match.DifficultyHard, 2), decoded.Rules.CardsToPlay(match.DifficultyHard, 2))
}

func TestJournal_Warn(t *testing.T) {
	j := gametest.Journal()
	j.Warn("hall missing", map[string]any{"hall": "x"})
	j.EmitTo("p1", match.EventChooseDiscard, nil)

	require.Len(t, j.Entries(), 1)
	assert.Equal(t, match.KindWarning, j.Entries()[0].Kind)
	assert.Equal(t, "hall missing", j.Entries()[0].Payload["message"])
	assert.Equal(t, gametest.Epoch, j.Entries()[0].Timestamp)
	assert.Equal(t, "p1", j.Events()[0].PlayerID)
}
