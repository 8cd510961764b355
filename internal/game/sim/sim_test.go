package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/dungeonwave/internal/catalog"
	"github.com/nfrund/dungeonwave/internal/game/gametest"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rules"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, _, err := catalog.LoadDefault(context.Background())
	require.NoError(t, err)
	return cat
}

func TestRun_PlaysEveryMatch(t *testing.T) {
	r, err := Run(context.Background(), defaultCatalog(t), Config{
		Matches:  6,
		Workers:  3,
		Players:  2,
		Seed:     100,
		MaxTurns: 40,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, r.Matches)
	assert.Zero(t, r.Failed)
	assert.Len(t, r.Outcomes, 6)
	assert.Equal(t, 6, r.Victories+r.Defeats+r.Unfinished)
	for _, o := range r.Outcomes {
		assert.GreaterOrEqual(t, o.Seed, int64(100))
		assert.LessOrEqual(t, o.Turns, 40)
	}
}

func TestPlayOne_IsDeterministicPerSeed(t *testing.T) {
	cat := defaultCatalog(t)
	cfg := Config{Players: 3, Difficulty: match.DifficultyHard, MaxTurns: 40}

	a, err := PlayOne(context.Background(), cat, "sim-a", 9, cfg)
	require.NoError(t, err)
	b, err := PlayOne(context.Background(), cat, "sim-a", 9, cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPlayOne_TooManyPlayers(t *testing.T) {
	cat := defaultCatalog(t)
	_, err := PlayOne(context.Background(), cat, "sim-x", 1, Config{Players: len(cat.ClassIDs()) + 1})
	assert.ErrorIs(t, err, match.ErrInvalidSetup)
}

func TestBot_AttacksBeforeSummoning(t *testing.T) {
	m := gametest.NewMatch()
	gametest.AddHero(m, "h1", "corridor", 2)
	gametest.AddMonster(m, "monster_1", "p1", "corridor", 1)

	b := newBot("p1")
	a, ok := b.next(m)
	require.True(t, ok)
	assert.Equal(t, rules.Attack{PlayerID: "p1", MonsterID: "monster_1", HeroID: "h1"}, a)

	a, ok = b.next(m)
	require.True(t, ok)
	assert.Equal(t, rules.PlayCard{PlayerID: "p1", CardID: "g1", HallID: "corridor"}, a)
}

func TestBot_StopsAtMonsterLimit(t *testing.T) {
	m := gametest.NewMatch()
	gametest.AddMonster(m, "monster_1", "p2", "armory", 2)
	gametest.AddMonster(m, "monster_2", "p2", "prison", 2)

	_, ok := newBot("p2").next(m)
	assert.False(t, ok)
}
