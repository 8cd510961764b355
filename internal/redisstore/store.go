package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nfrund/dungeonwave/internal/database"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/redis/go-redis/v9"
)

// StateKey is where the encoded match lives.
func StateKey(id string) string { return fmt.Sprintf("game:%s", id) }

// LogKey is the list holding the match log.
func LogKey(id string) string { return fmt.Sprintf("game:%s:log", id) }

// Store implements match state storage on a Redis string per match.
type Store struct {
	rdb redis.UniversalClient
}

// NewStore wraps rdb.
func NewStore(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

// Load returns the match with id or database.ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) (*match.Match, error) {
	data, err := s.rdb.Get(ctx, StateKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, database.NewDBError(database.ErrNotFound, "load match "+id)
	}
	if err != nil {
		return nil, wrap(err, "load match "+id)
	}
	var m match.Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, database.NewDBError(errors.Join(database.ErrCorrupt, err), "decode match "+id)
	}
	return &m, nil
}

// Save overwrites the stored match.
func (s *Store) Save(ctx context.Context, m *match.Match) error {
	if m == nil || m.ID == "" {
		return database.NewDBError(database.ErrInvalidInput, "match must have an id")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return database.NewDBError(err, "encode match "+m.ID)
	}
	return wrap(s.rdb.Set(ctx, StateKey(m.ID), data, 0).Err(), "save match "+m.ID)
}

// LogSink appends match log entries to a Redis list.
type LogSink struct {
	rdb redis.UniversalClient
}

// NewLogSink wraps rdb.
func NewLogSink(rdb redis.UniversalClient) *LogSink {
	return &LogSink{rdb: rdb}
}

func (l *LogSink) Append(ctx context.Context, id string, entries ...match.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	values := make([]any, len(entries))
	for i, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return database.NewDBError(err, "encode log entry")
		}
		values[i] = data
	}
	return wrap(l.rdb.RPush(ctx, LogKey(id), values...).Err(), "append log "+id)
}

// Read returns the newest limit entries, oldest first. A limit of zero or
// less returns the whole list.
func (l *LogSink) Read(ctx context.Context, id string, limit int) ([]match.Entry, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := l.rdb.LRange(ctx, LogKey(id), start, -1).Result()
	if err != nil {
		return nil, wrap(err, "read log "+id)
	}
	out := make([]match.Entry, 0, len(raw))
	for _, r := range raw {
		var e match.Entry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, database.NewDBError(errors.Join(database.ErrCorrupt, err), "decode log entry")
		}
		out = append(out, e)
	}
	return out, nil
}

func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return database.NewDBError(errors.Join(database.ErrTimeout, err), op)
	}
	return database.NewDBError(errors.Join(database.ErrQueryFailed, err), op)
}
