package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/nfrund/dungeonwave/internal/game/match"
)

const (
	scriptTimeout   = 500 * time.Millisecond
	scriptMaxAllocs = 10000
)

// ExpandCards runs a cards_script. The script sees difficulty and
// max_waves and must leave an array of non-negative ints in cards.
func ExpandCards(ctx context.Context, src string, difficulty match.Difficulty, maxWaves int) ([]int, error) {
	s := tengo.NewScript([]byte(src))
	s.SetImports(stdlib.GetModuleMap("math"))
	s.SetMaxAllocs(scriptMaxAllocs)
	if err := s.Add("difficulty", string(difficulty)); err != nil {
		return nil, fmt.Errorf("cards_script %s: %w", difficulty, err)
	}
	if err := s.Add("max_waves", max(maxWaves, 1)); err != nil {
		return nil, fmt.Errorf("cards_script %s: %w", difficulty, err)
	}

	ctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()
	compiled, err := s.RunContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("cards_script %s: %w", difficulty, err)
	}

	v := compiled.Get("cards")
	if v.IsUndefined() {
		return nil, fmt.Errorf("cards_script %s: cards is not set", difficulty)
	}
	raw, ok := v.Value().([]any)
	if !ok {
		return nil, fmt.Errorf("cards_script %s: cards is %s, want array", difficulty, v.ValueType())
	}
	out := make([]int, 0, len(raw))
	for i, x := range raw {
		n, ok := x.(int64)
		if !ok || n < 0 {
			return nil, fmt.Errorf("cards_script %s: cards[%d] = %v, want a non-negative int", difficulty, i, x)
		}
		out = append(out, int(n))
	}
	return out, nil
}
