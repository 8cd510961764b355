package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/surrealdb/surrealdb.go"
)

const (
	matchTable = "match"
	logTable   = "match_log"
)

// matchRecord is the stored form of a match. The state is kept as a JSON
// document so the schema of the game model never leaks into SurrealQL.
type matchRecord struct {
	MatchID string `json:"match_id"`
	Phase   string `json:"phase"`
	Wave    int    `json:"wave"`
	State   string `json:"state"`
}

type logRow struct {
	MatchID   string         `json:"match_id"`
	Seq       int64          `json:"seq"`
	Timestamp string         `json:"timestamp"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

// SurrealStore persists matches and their event logs in SurrealDB.
type SurrealStore struct {
	conn           *Connection
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewSurrealStore returns a store backed by conn.
func NewSurrealStore(conn *Connection) (*SurrealStore, error) {
	if conn == nil {
		return nil, NewDBError(ErrInvalidInput, "connection cannot be nil")
	}
	if conn.QueryTimeout() <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_QUERY_TIMEOUT must be a positive duration")
	}
	if conn.ExecuteTimeout() <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_EXECUTE_TIMEOUT must be a positive duration")
	}
	return &SurrealStore{
		conn:           conn,
		queryTimeout:   conn.QueryTimeout(),
		executeTimeout: conn.ExecuteTimeout(),
	}, nil
}

// Load returns the match with id, or ErrNotFound.
func (s *SurrealStore) Load(ctx context.Context, id string) (*match.Match, error) {
	if id == "" {
		return nil, NewDBError(ErrInvalidInput, "match id cannot be empty")
	}
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	var rec *matchRecord
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		rec, err = QueryOne[matchRecord](ctx, db,
			"SELECT match_id, phase, wave, state FROM type::thing($tb, $id)",
			map[string]any{"tb": matchTable, "id": id})
		return err
	})
	if err != nil {
		return nil, classify(err, "load match "+id)
	}
	if rec == nil {
		return nil, NewDBError(ErrNotFound, "load match "+id)
	}
	return decodeMatch([]byte(rec.State))
}

// Save upserts m.
func (s *SurrealStore) Save(ctx context.Context, m *match.Match) error {
	if m == nil || m.ID == "" {
		return NewDBError(ErrInvalidInput, "match must have an id")
	}
	state, err := json.Marshal(m)
	if err != nil {
		return NewDBError(err, "encode match "+m.ID)
	}
	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	rec := matchRecord{MatchID: m.ID, Phase: string(m.Phase), Wave: m.Wave, State: string(state)}
	err = s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, "UPSERT type::thing($tb, $id) CONTENT $rec",
			map[string]any{"tb": matchTable, "id": m.ID, "rec": rec})
	})
	return classify(err, "save match "+m.ID)
}

// Append adds entries to the match log.
func (s *SurrealStore) Append(ctx context.Context, id string, entries ...match.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	base := time.Now().UnixNano()
	rows := make([]logRow, len(entries))
	for i, e := range entries {
		rows[i] = logRow{
			MatchID:   id,
			Seq:       base + int64(i),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Type:      e.Kind,
			Payload:   e.Payload,
		}
	}
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, "INSERT INTO type::table($tb) $rows",
			map[string]any{"tb": logTable, "rows": rows})
	})
	return classify(err, "append log "+id)
}

// Read returns the newest limit entries in chronological order. A limit
// of zero or less returns the whole log.
func (s *SurrealStore) Read(ctx context.Context, id string, limit int) ([]match.Entry, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	query := "SELECT * FROM type::table($tb) WHERE match_id = $id ORDER BY seq ASC"
	params := map[string]any{"tb": logTable, "id": id}
	if limit > 0 {
		query = "SELECT * FROM (SELECT * FROM type::table($tb) WHERE match_id = $id ORDER BY seq DESC LIMIT $limit) ORDER BY seq ASC"
		params["limit"] = limit
	}

	var rows []logRow
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		rows, err = Query[logRow](ctx, db, query, params)
		return err
	})
	if err != nil {
		return nil, classify(err, "read log "+id)
	}

	out := make([]match.Entry, 0, len(rows))
	for _, r := range rows {
		ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return nil, NewDBError(errors.Join(ErrCorrupt, err), fmt.Sprintf("read log %s: seq %d", id, r.Seq))
		}
		out = append(out, match.Entry{Timestamp: ts, Kind: r.Type, Payload: r.Payload})
	}
	return out, nil
}

func decodeMatch(state []byte) (*match.Match, error) {
	var m match.Match
	if err := json.Unmarshal(state, &m); err != nil {
		return nil, NewDBError(errors.Join(ErrCorrupt, err), "decode match")
	}
	return &m, nil
}
