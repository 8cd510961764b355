package heroai

import (
	"testing"

	"github.com/nfrund/dungeonwave/internal/game/gametest"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diamond() *match.Match {
	node := func(id string, conns ...string) *match.Hall {
		return &match.Hall{ID: id, Connections: conns}
	}
	m := &match.Match{Halls: []*match.Hall{
		node("a", "c", "b"),
		node("b", "a", "d"),
		node("c", "a", "d"),
		node("d", "b", "c"),
	}}
	m.Hall("d").Treasure = &match.Treasure{ID: "t", Tier: 1}
	return m
}

func TestDistances(t *testing.T) {
	m := diamond()
	assert.Equal(t, map[string]int{"d": 0, "b": 1, "c": 1, "a": 2}, Distances(m))

	m.Hall("d").Treasure.Opened = true
	assert.Empty(t, Distances(m))
}

func TestNextHall_TieBreaksByHallID(t *testing.T) {
	m := diamond()
	for i := 0; i < 5; i++ {
		next := NextHall(&gametest.ScriptedSource{Ints: []int{1}}, m, m.Hall("a"))
		require.NotNil(t, next)
		assert.Equal(t, "b", next.ID)
	}
}

func TestNextHall_RandomWithoutTreasure(t *testing.T) {
	m := diamond()
	m.Hall("d").Treasure = nil

	next := NextHall(&gametest.ScriptedSource{Ints: []int{1}}, m, m.Hall("a"))

	require.NotNil(t, next)
	assert.Equal(t, "c", next.ID, "second of the sorted neighbors")
}

func TestNextHall_DeadEnd(t *testing.T) {
	m := &match.Match{Halls: []*match.Hall{{ID: "solo", Connections: []string{"ghost"}}}}
	assert.Nil(t, NextHall(&gametest.ScriptedSource{}, m, m.Hall("solo")))
}
