package match

import (
	"log/slog"
	"time"
)

// EventKind names a notification delivered to clients.
type EventKind string

const (
	EventStateUpdate     EventKind = "state_update"
	EventActionPerformed EventKind = "action_performed"
	EventMove            EventKind = "move"
	EventAttack          EventKind = "attack"
	EventTreasureEffect  EventKind = "treasure_effect"
	EventPhaseChanged    EventKind = "phase_changed"
	EventGameOver        EventKind = "game_over"
	EventChooseDiscard   EventKind = "choose_discard"
	EventCardDiscarded   EventKind = "card_discarded"
	EventTurnEnded       EventKind = "turn_ended"
	EventGameStarted     EventKind = "game_started"
)

// KindWarning is the log entry kind for recoverable inconsistencies.
const KindWarning = "warning"

// Entry is one append-only log record.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Event is one notification. An empty PlayerID broadcasts to the match.
type Event struct {
	Kind     EventKind      `json:"event"`
	PlayerID string         `json:"player_id,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// Journal collects the log entries and events produced while processing a
// single request. The service delivers them after the state is saved.
type Journal struct {
	now     func() time.Time
	logger  *slog.Logger
	entries []Entry
	events  []Event
}

// NewJournal creates a journal that mirrors warnings to logger.
func NewJournal(logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{now: time.Now, logger: logger}
}

// WithClock overrides the timestamp source.
func (j *Journal) WithClock(now func() time.Time) *Journal {
	j.now = now
	return j
}

// Record appends a log entry.
func (j *Journal) Record(kind string, payload map[string]any) {
	j.entries = append(j.entries, Entry{Timestamp: j.now().UTC(), Kind: kind, Payload: payload})
}

// Warn appends a warning entry and logs it.
func (j *Journal) Warn(msg string, payload map[string]any) {
	args := make([]any, 0, len(payload)*2)
	for k, v := range payload {
		args = append(args, k, v)
	}
	j.logger.Warn(msg, args...)

	p := map[string]any{"message": msg}
	for k, v := range payload {
		p[k] = v
	}
	j.Record(KindWarning, p)
}

// Emit queues a broadcast event.
func (j *Journal) Emit(kind EventKind, payload map[string]any) {
	j.events = append(j.events, Event{Kind: kind, Payload: payload})
}

// EmitTo queues an event for a single player.
func (j *Journal) EmitTo(playerID string, kind EventKind, payload map[string]any) {
	j.events = append(j.events, Event{Kind: kind, PlayerID: playerID, Payload: payload})
}

// Entries returns the recorded log entries in order.
func (j *Journal) Entries() []Entry { return j.entries }

// Events returns the queued events in order.
func (j *Journal) Events() []Event { return j.events }

// Logger returns the logger warnings are mirrored to.
func (j *Journal) Logger() *slog.Logger { return j.logger }
