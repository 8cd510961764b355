package events

import "encoding/json"

// MatchEvent carries one match notification across the bus. An empty
// PlayerID addresses everyone watching the match.
type MatchEvent struct {
	MatchID  string          `json:"match_id"`
	Kind     string          `json:"kind"`
	PlayerID string          `json:"player_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}
