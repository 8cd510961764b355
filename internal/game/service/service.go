// Package service runs the load, process, save and deliver cycle for
// matches. It is the only writer of match state.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nfrund/dungeonwave/internal/catalog"
	"github.com/nfrund/dungeonwave/internal/database"
	"github.com/nfrund/dungeonwave/internal/game/heroai"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/phase"
	"github.com/nfrund/dungeonwave/internal/game/rng"
	"github.com/nfrund/dungeonwave/internal/game/rules"
)

// StateStore persists whole matches. Load returns database.ErrNotFound for
// an unknown id.
type StateStore interface {
	Load(ctx context.Context, id string) (*match.Match, error)
	Save(ctx context.Context, m *match.Match) error
}

// LogSink keeps the append-only match log.
type LogSink interface {
	Append(ctx context.Context, id string, entries ...match.Entry) error
	Read(ctx context.Context, id string, limit int) ([]match.Entry, error)
}

// Notifier delivers events to the clients of a match.
type Notifier interface {
	Publish(ctx context.Context, matchID string, ev match.Event) error
}

// Options wires a Service. Store, Log and Catalog are required.
type Options struct {
	Store    StateStore
	Log      LogSink
	Notifier Notifier
	Catalog  catalog.Provider
	RNG      rng.Factory
	Logger   *slog.Logger
	Clock    func() time.Time
	NewID    func() string
}

// Service coordinates matches. Requests for the same match are serialized;
// different matches proceed in parallel.
type Service struct {
	store    StateStore
	log      LogSink
	notifier Notifier
	catalog  catalog.Provider
	rng      rng.Factory
	logger   *slog.Logger
	clock    func() time.Time
	newID    func() string
	locks    *keyedLock
}

// New validates opts and applies defaults.
func New(opts Options) (*Service, error) {
	if opts.Store == nil || opts.Log == nil || opts.Catalog == nil {
		return nil, errors.New("service: store, log and catalog are required")
	}
	s := &Service{
		store:    opts.Store,
		log:      opts.Log,
		notifier: opts.Notifier,
		catalog:  opts.Catalog,
		rng:      opts.RNG,
		logger:   opts.Logger,
		clock:    opts.Clock,
		newID:    opts.NewID,
		locks:    newKeyedLock(),
	}
	if s.notifier == nil {
		s.notifier = discard{}
	}
	if s.rng == nil {
		s.rng = rng.Entropy()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s, nil
}

// Get returns the current state of a match.
func (s *Service) Get(ctx context.Context, id string) (*match.Match, error) {
	return s.load(ctx, id)
}

// Log returns the newest limit entries of a match log, oldest first.
func (s *Service) Log(ctx context.Context, id string, limit int) ([]match.Entry, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.log.Read(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("read log for %s: %w", id, err)
	}
	return entries, nil
}

// Perform validates and applies one player action.
func (s *Service) Perform(ctx context.Context, id string, a rules.Action) (rules.Result, *match.Match, error) {
	var res rules.Result
	m, err := s.process(ctx, id, func(m *match.Match, src rng.Source, j *match.Journal) error {
		r, err := rules.Apply(m, a, j)
		if err != nil {
			return err
		}
		res = r
		phase.New(src).AfterAction(m, j)
		return nil
	})
	if err != nil {
		return rules.Result{}, nil, err
	}
	return res, m, nil
}

// EndTurn closes the player phase and resolves the next hero wave.
func (s *Service) EndTurn(ctx context.Context, id string) (heroai.Outcome, *match.Match, error) {
	var out heroai.Outcome
	m, err := s.process(ctx, id, func(m *match.Match, src rng.Source, j *match.Journal) error {
		o, err := phase.New(src).EndTurn(m, j)
		out = o
		return err
	})
	if err != nil {
		return heroai.Outcome{}, nil, err
	}
	return out, m, nil
}

type step func(m *match.Match, src rng.Source, j *match.Journal) error

// process holds the match lock around load, fn and save, then delivers the
// journal. A failing fn leaves the stored state untouched.
func (s *Service) process(ctx context.Context, id string, fn step) (*match.Match, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock match %s: %w", id, err)
	}
	defer unlock()

	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	j := s.journal(id)
	if err := fn(m, s.rng(), j); err != nil {
		return nil, err
	}
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}
	s.deliver(ctx, m, j)
	return m, nil
}

func (s *Service) load(ctx context.Context, id string) (*match.Match, error) {
	m, err := s.store.Load(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, match.Fail(match.CodeMatchNotFound, "match %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", id, err)
	}
	return m, nil
}

func (s *Service) save(ctx context.Context, m *match.Match) error {
	m.UpdatedAt = s.clock().UTC()
	if problems := m.CheckInvariants(); len(problems) > 0 {
		s.logger.Warn("match integrity warning", "match_id", m.ID, "problems", errors.Join(problems...).Error())
	}
	if err := s.store.Save(ctx, m); err != nil {
		return fmt.Errorf("save match %s: %w", m.ID, err)
	}
	return nil
}

func (s *Service) journal(id string) *match.Journal {
	return match.NewJournal(s.logger.With("match_id", id)).WithClock(s.clock)
}

// deliver appends the journal to the log and publishes its events followed
// by one state_update. Failures are logged; the state is already saved.
func (s *Service) deliver(ctx context.Context, m *match.Match, j *match.Journal) {
	ctx = context.WithoutCancel(ctx)
	logger := s.logger.With("match_id", m.ID)

	if entries := j.Entries(); len(entries) > 0 {
		if err := s.log.Append(ctx, m.ID, entries...); err != nil {
			logger.Error("failed to append match log", "entries", len(entries), "error", err)
		}
	}
	events := append(j.Events(), match.Event{
		Kind:    match.EventStateUpdate,
		Payload: map[string]any{"state": m},
	})
	for _, ev := range events {
		if err := s.notifier.Publish(ctx, m.ID, ev); err != nil {
			logger.Error("failed to publish match event", "event", ev.Kind, "error", err)
		}
	}
}

type discard struct{}

func (discard) Publish(context.Context, string, match.Event) error { return nil }
