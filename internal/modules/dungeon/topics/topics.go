package topics

import (
	"github.com/nfrund/dungeonwave/internal/modules/dungeon/events"
	"github.com/nfrund/dungeonwave/internal/pubsub"
	"github.com/nfrund/dungeonwave/internal/topicmgr"
)

// MatchEvent is published once per journal event, in order, after the
// match has been saved.
var MatchEvent = pubsub.NewEvent[events.MatchEvent](
	"dungeon.match.event",
	"A match event to fan out to the match room or one player",
)

// Register adds every dungeon topic to mgr.
func Register(mgr *topicmgr.Manager) error {
	return MatchEvent.Register(mgr)
}
