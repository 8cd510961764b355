package heroai

import (
	"testing"

	"github.com/nfrund/dungeonwave/internal/game/gametest"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rng"
	"github.com/nfrund/dungeonwave/internal/game/treasure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countKind(j *match.Journal, kind string) int {
	n := 0
	for _, k := range gametest.Kinds(j) {
		if k == kind {
			n++
		}
	}
	return n
}

func TestTurn_TrapKillsWoundedHero(t *testing.T) {
	m := gametest.NewMatch()
	m.Hall("corridor").Tokens = []string{match.TokenCoin, match.TokenTrap}
	hero := gametest.AddHero(m, "h1", "entrance", 1)
	j := gametest.Journal()

	Turn(rng.New(1), m, hero, j)

	assert.Nil(t, m.Hero("h1"))
	assert.Equal(t, []string{match.TokenCoin}, m.Hall("corridor").Tokens)
	assert.NotContains(t, m.Hall("corridor").Heroes, "h1")
	assert.Equal(t, []string{"warrior"}, m.GuildDiscard)
	assert.Equal(t, []string{KindMove, KindTrap, KindDeath}, gametest.Kinds(j))
	assert.Empty(t, m.CheckInvariants())
}

func TestTurn_TrapWoundsButHeroContinues(t *testing.T) {
	m := gametest.NewMatch()
	m.Hall("entrance").Tokens = []string{match.TokenTrap, match.TokenTrap}
	hero := gametest.AddHero(m, "h1", "entrance", 3)
	j := gametest.Journal()

	Turn(rng.New(1), m, hero, j)

	assert.Equal(t, 1, hero.HP)
	assert.Empty(t, m.Hall("entrance").Tokens, "every trap in the hall triggers")
	assert.Equal(t, 2, countKind(j, KindTrap))
	assert.Equal(t, "vault", hero.HallID)
}

func TestTurn_SecondTrapKills(t *testing.T) {
	m := gametest.NewMatch()
	m.Hall("entrance").Tokens = []string{match.TokenTrap, match.TokenCoin, match.TokenTrap}
	hero := gametest.AddHero(m, "h1", "entrance", 2)
	j := gametest.Journal()

	Turn(rng.New(1), m, hero, j)

	assert.Nil(t, m.Hero("h1"))
	assert.Equal(t, []string{match.TokenCoin}, m.Hall("entrance").Tokens)
	assert.Equal(t, []string{KindTrap, KindTrap, KindDeath}, gametest.Kinds(j))
}

func TestTurn_AttackEndsTurn(t *testing.T) {
	m := gametest.NewMatch()
	gametest.AddMonster(m, "mon1", "p1", "entrance", 1)
	hero := gametest.AddHero(m, "h1", "entrance", 2)
	j := gametest.Journal()

	Turn(rng.New(1), m, hero, j)

	assert.True(t, hero.Exhausted)
	assert.Equal(t, "entrance", hero.HallID)
	assert.Nil(t, m.Monster("mon1"))
	assert.Equal(t, []string{KindAttack, KindMonsterDefeated}, gametest.Kinds(j))
	assert.Equal(t, []match.EventKind{match.EventAttack}, gametest.EventKinds(j))
}

func TestTurn_InspireWakesExhaustedAllies(t *testing.T) {
	m := gametest.NewMatch()
	m.Hall("vault").Treasure = nil
	ally := gametest.AddHero(m, "h2", "entrance", 2)
	ally.Exhausted = true
	gametest.AddMonster(m, "mon1", "p2", "entrance", 2)
	hero := gametest.AddHero(m, "h1", "entrance", 2)
	j := gametest.Journal()

	Turn(rng.New(1), m, hero, j)

	assert.False(t, ally.Exhausted)
	assert.Equal(t, 1, m.Monster("mon1").HP)
	assert.Equal(t, []string{KindInspire, KindAttack}, gametest.Kinds(j))
}

func TestTurn_WaitsForReinforcements(t *testing.T) {
	m := gametest.NewMatch()
	hero := gametest.AddHero(m, "h1", "vault", 2)
	j := gametest.Journal()

	Turn(rng.New(1), m, hero, j)

	assert.True(t, hero.Exhausted)
	require.NotNil(t, m.Hall("vault").Treasure)
	assert.Equal(t, []string{KindWait}, gametest.Kinds(j))
}

func TestTurn_TwoHeroesStealTreasure(t *testing.T) {
	m := gametest.NewMatch()
	m.Hall("vault").Treasure = &match.Treasure{ID: "treasure_2", Tier: 2, Required: 2}
	gametest.AddHero(m, "h2", "vault", 2)
	hero := gametest.AddHero(m, "h1", "vault", 2)
	j := gametest.Journal()

	Turn(rng.New(5), m, hero, j)

	assert.Nil(t, m.Hall("vault").Treasure)
	require.Len(t, m.Stolen, 1)
	assert.True(t, m.Stolen[0].Opened)
	assert.Equal(t, 1, countKind(j, treasure.KindEffect))

	var effect string
	for _, e := range j.Entries() {
		if e.Kind == treasure.KindEffect {
			effect = e.Payload["effect"].(string)
		}
	}
	assert.Contains(t, []string{string(match.EffectCurse), string(match.EffectHeal)}, effect)
	assert.False(t, m.GameOver)
}

func TestTurn_CyclicGraphTerminates(t *testing.T) {
	m := gametest.NewMatch()
	m.Hall("vault").Treasure = nil
	hero := gametest.AddHero(m, "h1", "corridor", 3)
	j := gametest.Journal()

	Turn(rng.New(11), m, hero, j)

	assert.Equal(t, len(m.Halls), countKind(j, KindMove))
	assert.Equal(t, match.KindWarning, gametest.Kinds(j)[len(j.Entries())-1])
	assert.Equal(t, 1, countKind(j, match.KindWarning))
	assert.True(t, hero.Exhausted, "out of steps")
}

func TestTurn_MissingHallIsNoop(t *testing.T) {
	m := gametest.NewMatch()
	hero := gametest.AddHero(m, "h1", "corridor", 3)
	hero.HallID = "nowhere"
	j := gametest.Journal()

	Turn(rng.New(1), m, hero, j)

	assert.Equal(t, []string{match.KindWarning}, gametest.Kinds(j))
}

func TestRunWave_FamilyFirstWaveSpawnsOneHero(t *testing.T) {
	m := gametest.NewMatch()
	m.Wave = 1
	j := gametest.Journal()

	out := RunWave(rng.New(3), m, j)

	require.Len(t, out.Spawned, 1)
	require.Len(t, m.Heroes, 1)
	hero := m.Heroes[0]
	assert.Equal(t, "warrior", hero.CardID)
	assert.Equal(t, "vault", hero.HallID)
	assert.True(t, hero.Exhausted, "alone at the main treasure")
	assert.Equal(t, match.ResultNone, out.Result)
	assert.False(t, m.GameOver)
	assert.Equal(t, []string{"thief", "warrior", "thief"}, m.GuildDeck)
	assert.Empty(t, m.CheckInvariants())
}

func TestRunWave_SecondHeroStealsMainTreasure(t *testing.T) {
	m := gametest.NewMatch()
	m.Wave = 1
	waiting := gametest.AddHero(m, "h0", "vault", 2)
	waiting.Exhausted = true
	j := gametest.Journal()

	out := RunWave(rng.New(3), m, j)

	assert.Equal(t, match.ResultDefeat, out.Result)
	assert.True(t, m.GameOver)
	assert.Nil(t, m.Hall("vault").Treasure)
	assert.Equal(t, 1, countKind(j, KindInspire))
	assert.Equal(t, 0, countKind(j, KindVictory))
}

func TestRunWave_EmptyGuildIsVictory(t *testing.T) {
	m := gametest.NewMatch()
	m.Wave = 3
	m.GuildDeck = nil
	j := gametest.Journal()

	out := RunWave(rng.New(1), m, j)

	assert.Equal(t, match.ResultVictory, out.Result)
	assert.Empty(t, out.Spawned)
	assert.Equal(t, []string{KindVictory}, gametest.Kinds(j))
}

func TestRunWave_ReshufflesGuildOnce(t *testing.T) {
	m := gametest.NewMatch()
	m.Wave = 1
	m.GuildDeck = nil
	m.GuildDiscard = []string{"thief"}
	m.Hall("corridor").Tokens = nil

	out := RunWave(rng.New(1), m, gametest.Journal())

	assert.Len(t, out.Spawned, 1)
	assert.Equal(t, 1, m.GuildReshuffles)

	m.Heroes[0].Exhausted = false
	m.GuildDiscard = []string{"thief"}
	m.Wave = 2
	out = RunWave(rng.New(1), m, gametest.Journal())

	assert.Empty(t, out.Spawned, "reshuffle budget spent")
	assert.Equal(t, match.ResultVictory, out.Result)
}

func TestRunWave_FinalWaveVictory(t *testing.T) {
	m := gametest.NewMatch()
	m.Wave = 2
	m.GuildDeck = []string{"warrior"}
	j := gametest.Journal()

	out := RunWave(rng.New(1), m, j)

	assert.Len(t, out.Spawned, 1)
	assert.Equal(t, match.ResultVictory, out.Result)
	assert.Equal(t, 1, countKind(j, KindVictory))
}

func TestRunWave_UnknownTemplateFallsBack(t *testing.T) {
	m := gametest.NewMatch()
	m.Wave = 1
	m.GuildDeck = []string{"ghost", "warrior"}
	j := gametest.Journal()

	out := RunWave(rng.New(1), m, j)

	require.Len(t, out.Spawned, 1)
	assert.Equal(t, "ghost", m.Hero(out.Spawned[0]).Name)
	assert.Equal(t, match.KindWarning, gametest.Kinds(j)[0])
}
