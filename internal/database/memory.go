package database

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/nfrund/dungeonwave/internal/game/match"
)

// MemoryStore keeps encoded matches in process memory. Every Load decodes
// a fresh copy, so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{matches: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*match.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err, "load match "+id)
	}
	s.mu.RLock()
	state, ok := s.matches[id]
	s.mu.RUnlock()
	if !ok {
		return nil, NewDBError(ErrNotFound, "load match "+id)
	}
	return decodeMatch(state)
}

func (s *MemoryStore) Save(ctx context.Context, m *match.Match) error {
	if m == nil || m.ID == "" {
		return NewDBError(ErrInvalidInput, "match must have an id")
	}
	if err := ctx.Err(); err != nil {
		return classify(err, "save match "+m.ID)
	}
	state, err := json.Marshal(m)
	if err != nil {
		return NewDBError(err, "encode match "+m.ID)
	}
	s.mu.Lock()
	s.matches[m.ID] = state
	s.mu.Unlock()
	return nil
}

// IDs lists the stored match ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.matches))
	for id := range s.matches {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MemoryLog is an in-process append-only match log.
type MemoryLog struct {
	mu      sync.RWMutex
	entries map[string][]match.Entry
}

// NewMemoryLog returns an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{entries: make(map[string][]match.Entry)}
}

func (l *MemoryLog) Append(ctx context.Context, id string, entries ...match.Entry) error {
	if err := ctx.Err(); err != nil {
		return classify(err, "append log "+id)
	}
	l.mu.Lock()
	l.entries[id] = append(l.entries[id], entries...)
	l.mu.Unlock()
	return nil
}

func (l *MemoryLog) Read(ctx context.Context, id string, limit int) ([]match.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err, "read log "+id)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := l.entries[id]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return slices.Clone(all), nil
}
