// Package sim plays bot matches against the game service. It backs the
// simulate command and doubles as an end to end exercise of the rules.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/nfrund/dungeonwave/internal/catalog"
	"github.com/nfrund/dungeonwave/internal/database"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rng"
	"github.com/nfrund/dungeonwave/internal/game/rules"
	"github.com/nfrund/dungeonwave/internal/game/service"
)

// Config controls a simulation run.
type Config struct {
	Matches    int
	Workers    int
	Players    int
	Difficulty match.Difficulty
	// Seed is the seed of the first match; match i uses Seed+i.
	Seed int64
	// MaxTurns stops a match that has not ended after this many turns.
	MaxTurns int
	Logger   *slog.Logger
}

func (c *Config) defaults() {
	if c.Matches <= 0 {
		c.Matches = 1
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Players <= 0 {
		c.Players = 2
	}
	if c.Difficulty == "" {
		c.Difficulty = match.DifficultyFamily
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = 50
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Outcome is the end state of one simulated match.
type Outcome struct {
	MatchID string       `json:"match_id"`
	Seed    int64        `json:"seed"`
	Result  match.Result `json:"result"`
	Waves   int          `json:"waves"`
	Turns   int          `json:"turns"`
	Souls   int          `json:"souls"`
}

// Report aggregates a run.
type Report struct {
	Matches    int       `json:"matches"`
	Victories  int       `json:"victories"`
	Defeats    int       `json:"defeats"`
	Unfinished int       `json:"unfinished"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"outcomes"`
}

func (r *Report) add(o Outcome) {
	switch o.Result {
	case match.ResultVictory:
		r.Victories++
	case match.ResultDefeat:
		r.Defeats++
	default:
		r.Unfinished++
	}
}

// Run plays cfg.Matches matches on a worker pool. A match that errors is
// counted as failed and logged; Run itself fails only when the pool cannot
// be started or ctx is cancelled.
func Run(ctx context.Context, cat *catalog.Catalog, cfg Config) (Report, error) {
	cfg.defaults()
	pool, err := ants.NewPool(cfg.Workers, ants.WithPanicHandler(func(p any) {
		cfg.Logger.Error("simulation worker panicked", "panic", p)
	}))
	if err != nil {
		return Report{}, fmt.Errorf("pool init failed: %w", err)
	}
	defer pool.Release()

	outcomes := make([]*Outcome, cfg.Matches)
	var wg sync.WaitGroup
	for i := range cfg.Matches {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		seed := cfg.Seed + int64(i)
		id := fmt.Sprintf("sim-%d", i+1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			o, err := PlayOne(ctx, cat, id, seed, cfg)
			if err != nil {
				cfg.Logger.Warn("simulated match failed", "match_id", id, "seed", seed, "error", err)
				return
			}
			outcomes[i] = &o
		})
		if submitErr != nil {
			wg.Done()
			cfg.Logger.Warn("could not schedule match", "match_id", id, "error", submitErr)
		}
	}
	wg.Wait()

	r := Report{Matches: cfg.Matches}
	for _, o := range outcomes {
		if o == nil {
			r.Failed++
			continue
		}
		r.add(*o)
		r.Outcomes = append(r.Outcomes, *o)
	}
	return r, ctx.Err()
}

// PlayOne runs a single bot match to completion on a private in-memory
// service seeded with seed.
func PlayOne(ctx context.Context, cat *catalog.Catalog, id string, seed int64, cfg Config) (Outcome, error) {
	cfg.defaults()
	svc, err := service.New(service.Options{
		Store:   database.NewMemoryStore(),
		Log:     database.NewMemoryLog(),
		Catalog: catalog.NewStatic(cat),
		RNG:     rng.Seeded(seed),
		Logger:  cfg.Logger.With("match_id", id),
		NewID:   func() string { return id },
	})
	if err != nil {
		return Outcome{}, err
	}

	players := make([]service.PlayerSpec, cfg.Players)
	for i := range players {
		players[i] = service.PlayerSpec{Name: fmt.Sprintf("Bot %d", i+1)}
	}
	m, err := svc.CreateMatch(ctx, service.CreateRequest{Players: players, Difficulty: cfg.Difficulty})
	if err != nil {
		return Outcome{}, fmt.Errorf("create match: %w", err)
	}

	turns := 0
	for !m.Terminal() && turns < cfg.MaxTurns {
		if m, err = playTurn(ctx, svc, m); err != nil {
			return Outcome{}, err
		}
		if m.Terminal() {
			break
		}
		if _, m, err = svc.EndTurn(ctx, id); err != nil {
			return Outcome{}, fmt.Errorf("end turn %d: %w", turns+1, err)
		}
		turns++
	}

	out := Outcome{MatchID: id, Seed: seed, Result: m.Result, Waves: m.Wave, Turns: turns}
	for _, p := range m.Players {
		out.Souls += p.Resources["souls"]
	}
	return out, nil
}

// playTurn lets every bot act until it has nothing useful left to do.
func playTurn(ctx context.Context, svc *service.Service, m *match.Match) (*match.Match, error) {
	ids := make([]string, 0, len(m.Players))
	for _, p := range m.Players {
		ids = append(ids, p.ID)
	}
	for _, pid := range ids {
		b := newBot(pid)
		for {
			if m.Terminal() || m.Phase != match.PhasePlayer {
				return m, nil
			}
			a, ok := b.next(m)
			if !ok {
				break
			}
			_, next, err := svc.Perform(ctx, m.ID, a)
			var f *match.Failure
			if errors.As(err, &f) {
				// A rejected move ends this bot's turn.
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%s: %w", rules.Describe(a), err)
			}
			m = next
		}
	}
	return m, nil
}
