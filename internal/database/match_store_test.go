package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/nfrund/dungeonwave/internal/config"
	"github.com/nfrund/dungeonwave/internal/game/gametest"
	"github.com/nfrund/dungeonwave/internal/game/match"
)

// SurrealStoreTestSuite runs against the SurrealDB named by SURREAL_URL,
// SURREAL_NS and SURREAL_DB.
type SurrealStoreTestSuite struct {
	suite.Suite
	conn  *Connection
	store *SurrealStore
}

func (s *SurrealStoreTestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping integration test in short mode")
	}
	cfg := config.FromEnv()
	if cfg.Validate() != nil || cfg.DBUrl == "" {
		s.T().Skip("SURREAL_URL, SURREAL_NS and SURREAL_DB are not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.conn = NewConnection(cfg)
	s.Require().NoError(s.conn.Connect(ctx), "Failed to connect to test database")

	store, err := NewSurrealStore(s.conn)
	s.Require().NoError(err)
	s.store = store
}

func (s *SurrealStoreTestSuite) TearDownSuite() {
	if s.conn != nil {
		_ = s.conn.Close(context.Background())
	}
}

func TestSurrealStore(t *testing.T) {
	suite.Run(t, new(SurrealStoreTestSuite))
}

func (s *SurrealStoreTestSuite) newMatch() *match.Match {
	m := gametest.NewMatch()
	m.ID = "test-" + uuid.NewString()
	return m
}

func (s *SurrealStoreTestSuite) TestLoadUnknown() {
	_, err := s.store.Load(context.Background(), "missing-"+uuid.NewString())
	s.ErrorIs(err, ErrNotFound)
}

func (s *SurrealStoreTestSuite) TestSaveAndLoad() {
	ctx := context.Background()
	m := s.newMatch()
	s.Require().NoError(s.store.Save(ctx, m))

	loaded, err := s.store.Load(ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(m.ID, loaded.ID)
	s.Equal(m.Phase, loaded.Phase)
	s.Equal(m.Players[0].Hand, loaded.Players[0].Hand)

	loaded.Wave = 3
	s.Require().NoError(s.store.Save(ctx, loaded), "saving twice overwrites")
	again, err := s.store.Load(ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(3, again.Wave)
}

func (s *SurrealStoreTestSuite) TestLogReturnsNewestEntriesInOrder() {
	ctx := context.Background()
	id := s.newMatch().ID
	for i, kind := range []string{"match_created", "play_card", "turn_ended"} {
		s.Require().NoError(s.store.Append(ctx, id, match.Entry{
			Timestamp: gametest.Epoch.Add(time.Duration(i) * time.Second),
			Kind:      kind,
			Payload:   map[string]any{"n": i},
		}))
	}

	entries, err := s.store.Read(ctx, id, 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("play_card", entries[0].Kind)
	s.Equal("turn_ended", entries[1].Kind)
}
