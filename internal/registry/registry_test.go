package registry

import (
	"testing"

	"github.com/nfrund/dungeonwave/internal/config"
	"github.com/stretchr/testify/assert"
)

type counter struct{ n int }

func TestRegistry(t *testing.T) {
	cfg := &config.Config{ServerAddr: ":9000"}
	reg := New(cfg)
	key := Key[*counter]("test.Counter")

	_, ok := Get(reg, key)
	assert.False(t, ok)
	assert.Panics(t, func() { MustGet(reg, key) })

	c := &counter{n: 2}
	Set(reg, key, c)

	got, ok := Get(reg, key)
	assert.True(t, ok)
	assert.Same(t, c, got)
	assert.Same(t, c, MustGet(reg, key))
	assert.Equal(t, ":9000", reg.Config().GetServerAddr())

	Set(reg, Key[string]("a.Name"), "x")
	assert.Equal(t, []string{"a.Name", "test.Counter"}, reg.Keys())

	_, ok = Get(reg, Key[string]("test.Counter"))
	assert.False(t, ok, "a key of the wrong type never matches")
}
