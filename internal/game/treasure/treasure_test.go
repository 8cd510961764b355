package treasure

import (
	"testing"

	"github.com/nfrund/dungeonwave/internal/game/gametest"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_MainTreasureAlwaysDefeats(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		m := gametest.NewMatch()
		j := gametest.Journal()

		effect := Resolve(rng.New(seed), m, "vault", match.MainTreasureTier, j)

		assert.Equal(t, match.EffectDefeat, effect)
		assert.True(t, m.GameOver)
		assert.Equal(t, match.ResultDefeat, m.Result)
	}
}

func TestResolve_PicksFromTierCandidates(t *testing.T) {
	rules := match.DefaultRules()
	for tier := 1; tier <= 3; tier++ {
		for seed := int64(0); seed < 10; seed++ {
			m := gametest.NewMatch()
			j := gametest.Journal()

			effect := Resolve(rng.New(seed), m, "corridor", tier, j)

			assert.Contains(t, rules.Candidates(tier), effect)
			assert.Contains(t, gametest.Kinds(j), KindEffect)
			assert.Contains(t, gametest.EventKinds(j), match.EventTreasureEffect)
		}
	}
}

func TestResolve_UnknownTierIsNoop(t *testing.T) {
	m := gametest.NewMatch()
	j := gametest.Journal()

	effect := Resolve(rng.New(1), m, "corridor", 9, j)

	assert.Empty(t, effect)
	assert.False(t, m.GameOver)
	assert.Equal(t, []string{match.KindWarning, KindEffect}, gametest.Kinds(j))
}

func TestRobbery(t *testing.T) {
	m := gametest.NewMatch()
	hall := m.Hall("corridor")
	hall.Tokens = []string{match.TokenTrap, match.TokenCoin, match.TokenFrog}

	Apply(&gametest.ScriptedSource{Ints: []int{1}}, m, "corridor", match.EffectRobbery, gametest.Journal())

	assert.Equal(t, []string{match.TokenTrap, match.TokenCoin}, hall.Tokens)
}

func TestRobbery_NoResourcesIsNoop(t *testing.T) {
	m := gametest.NewMatch()
	hall := m.Hall("armory")
	hall.Tokens = []string{match.TokenTrap}

	Apply(rng.New(1), m, "armory", match.EffectRobbery, gametest.Journal())

	assert.Equal(t, []string{match.TokenTrap}, hall.Tokens)
}

func TestCurse_AutoDiscardsFirstCard(t *testing.T) {
	m := gametest.NewMatch()
	m.Players[1].Hand = nil
	before := m.Players[0].CardCount()
	j := gametest.Journal()

	Apply(rng.New(1), m, "vault", match.EffectCurse, j)

	p1 := m.Players[0]
	assert.Equal(t, []string{"g2", "g3"}, p1.Hand)
	assert.Equal(t, []string{"g1"}, p1.Discard)
	assert.Equal(t, before, p1.CardCount())
	assert.Equal(t, []string{"curse_discard", "curse_skip"}, gametest.Kinds(j))

	require.Len(t, j.Events(), 2)
	assert.Equal(t, match.EventChooseDiscard, j.Events()[0].Kind)
	assert.Equal(t, "p1", j.Events()[0].PlayerID)
	assert.Equal(t, match.EventCardDiscarded, j.Events()[1].Kind)
}

func TestCurse_PromptDefersDiscard(t *testing.T) {
	m := gametest.NewMatch()
	m.Rules.CurseMode = match.CursePrompt

	Apply(rng.New(1), m, "vault", match.EffectCurse, gametest.Journal())

	for _, p := range m.Players {
		assert.Len(t, p.Hand, 3)
		assert.Equal(t, 1, p.PendingDiscards)
	}
}

func TestHeal(t *testing.T) {
	m := gametest.NewMatch()
	m.Difficulty = match.DifficultyHard
	h := gametest.AddHero(m, "h1", "corridor", 3)
	h.HP, h.Exhausted = 2, true
	other := gametest.AddHero(m, "h2", "entrance", 3)
	other.Exhausted = true

	Apply(rng.New(1), m, "corridor", match.EffectHeal, gametest.Journal())

	assert.False(t, h.Exhausted)
	assert.Equal(t, 3, h.HP, "heal is capped at max hp")
	assert.True(t, other.Exhausted)
}

func TestPrisoner(t *testing.T) {
	m := gametest.NewMatch()
	gametest.AddHero(m, "h1", "corridor", 2)
	gametest.AddHero(m, "h2", "vault", 2)

	Apply(rng.New(1), m, "vault", match.EffectPrisoner, gametest.Journal())

	assert.Nil(t, m.Hero("h1"))
	assert.NotNil(t, m.Hero("h2"))
	assert.Contains(t, m.Hall("prison").Tokens, match.TokenPrisoner)
	assert.Empty(t, m.CheckInvariants())
}

func TestPrisoner_WithoutHeroesIsNoop(t *testing.T) {
	m := gametest.NewMatch()

	Apply(rng.New(1), m, "vault", match.EffectPrisoner, gametest.Journal())

	assert.NotContains(t, m.Hall("prison").Tokens, match.TokenPrisoner)
}

func TestPrisoner_MissingPrisonStillRemovesHero(t *testing.T) {
	m := gametest.NewMatch()
	m.Rules.PrisonHall = "dungeon"
	gametest.AddHero(m, "h1", "corridor", 2)
	j := gametest.Journal()

	Apply(rng.New(1), m, "vault", match.EffectPrisoner, j)

	assert.Empty(t, m.Heroes)
	assert.Equal(t, []string{match.KindWarning, "prisoner"}, gametest.Kinds(j))
}
