package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/nfrund/dungeonwave/internal/catalog"
	"github.com/nfrund/dungeonwave/internal/game/deck"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/phase"
	"github.com/nfrund/dungeonwave/internal/game/rng"
)

// PlayerSpec names a seat. An empty Class takes the first free class.
type PlayerSpec struct {
	Name  string
	Class string
}

// CreateRequest describes a new match.
type CreateRequest struct {
	Players    []PlayerSpec
	Difficulty match.Difficulty
}

// CreateMatch builds a match from the current catalog, deals the opening
// hands and saves it in the PLAYER phase.
func (s *Service) CreateMatch(ctx context.Context, req CreateRequest) (*match.Match, error) {
	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	id := s.newID()
	src := s.rng()

	m, err := Build(src, cat, id, req)
	if err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	m.CreatedAt = now

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock match %s: %w", id, err)
	}
	defer unlock()

	j := s.journal(id)
	j.Record("match_created", map[string]any{
		"difficulty": string(m.Difficulty),
		"scenario":   m.Scenario,
		"players":    lo.Map(m.Players, func(p *match.Player, _ int) string { return p.ID }),
	})
	if err := phase.New(src).Start(m, j); err != nil {
		return nil, err
	}
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}
	s.deliver(ctx, m, j)
	s.logger.Info("match created", "match_id", id, "players", len(m.Players), "difficulty", m.Difficulty)
	return m, nil
}

// Build assembles a match in the SETUP phase from cat. Decks are shuffled
// with src; hands are dealt when the match starts.
func Build(src rng.Source, cat *catalog.Catalog, id string, req CreateRequest) (*match.Match, error) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = match.DifficultyFamily
	}
	if !difficulty.Valid() {
		return nil, match.Fail(match.CodeInvalidSetup, "unknown difficulty %q", difficulty)
	}
	classes := cat.ClassIDs()
	if len(req.Players) == 0 || len(req.Players) > len(classes) {
		return nil, match.Fail(match.CodeInvalidSetup, "need between 1 and %d players, got %d", len(classes), len(req.Players))
	}
	assigned, err := assignClasses(req.Players, classes)
	if err != nil {
		return nil, err
	}

	r := cat.MatchRules()
	m := &match.Match{
		ID:             id,
		Phase:          match.PhaseSetup,
		Difficulty:     difficulty,
		Scenario:       cat.Scenario.Name,
		Rules:          r,
		Halls:          cat.Halls(),
		Heroes:         []*match.Hero{},
		Monsters:       []*match.Monster{},
		GuildDiscard:   []string{},
		HeroTemplates:  cat.HeroTemplates(),
		MonsterClasses: cat.MonsterClasses(),
		ShopCards:      cat.ShopCards(),
	}

	for i, spec := range req.Players {
		class, _ := cat.Class(assigned[i])
		pile := slices.Clone(class.Cards)
		deck.Shuffle(src, pile)
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		m.Players = append(m.Players, &match.Player{
			ID:           fmt.Sprintf("p%d", i+1),
			Name:         name,
			MonsterClass: class.ID,
			Hand:         []string{},
			Deck:         pile,
			Discard:      []string{},
			Resources:    map[string]int{"gold": 0, "souls": 0},
		})
	}

	m.GuildDeck = cat.GuildCards()
	deck.Shuffle(src, m.GuildDeck)
	shop := cat.ShopDeck()
	deck.Shuffle(src, shop)
	m.Shop = deck.NewShop(shop, r.DisplaySize)
	return m, nil
}

func assignClasses(specs []PlayerSpec, classes []string) ([]string, error) {
	out := make([]string, len(specs))
	taken := make(map[string]bool, len(specs))
	for i, spec := range specs {
		if spec.Class == "" {
			continue
		}
		if !slices.Contains(classes, spec.Class) {
			return nil, match.Fail(match.CodeInvalidSetup, "unknown monster class %q", spec.Class)
		}
		if taken[spec.Class] {
			return nil, match.Fail(match.CodeInvalidSetup, "monster class %q chosen twice", spec.Class)
		}
		taken[spec.Class] = true
		out[i] = spec.Class
	}
	free := lo.Filter(classes, func(c string, _ int) bool { return !taken[c] })
	for i := range out {
		if out[i] == "" {
			out[i], free = free[0], free[1:]
		}
	}
	return out, nil
}
