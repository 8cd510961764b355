package dungeon

import (
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rules"
	"github.com/nfrund/dungeonwave/internal/game/service"
)

// PlayerRequest names one seat of a new match.
type PlayerRequest struct {
	Name  string `json:"name" validate:"max=40"`
	Class string `json:"class"`
}

// CreateMatchRequest is the body of POST /api/matches.
type CreateMatchRequest struct {
	Players    []PlayerRequest `json:"players" validate:"required,min=1,dive"`
	Difficulty string          `json:"difficulty" validate:"omitempty,oneof=family problem hard"`
}

func (r CreateMatchRequest) toService() service.CreateRequest {
	players := make([]service.PlayerSpec, len(r.Players))
	for i, p := range r.Players {
		players[i] = service.PlayerSpec{Name: p.Name, Class: p.Class}
	}
	return service.CreateRequest{Players: players, Difficulty: match.Difficulty(r.Difficulty)}
}

// ActionRequest is the body of POST /api/matches/:id/actions and of
// websocket messages. Which ids are needed depends on Type.
type ActionRequest struct {
	Type      string `json:"type" validate:"required,oneof=play_card move_monster attack buy_card discard_card"`
	PlayerID  string `json:"player_id" validate:"required"`
	CardID    string `json:"card_id,omitempty"`
	HallID    string `json:"hall_id,omitempty"`
	MonsterID string `json:"monster_id,omitempty"`
	FromHall  string `json:"from_hall,omitempty"`
	ToHall    string `json:"to_hall,omitempty"`
	HeroID    string `json:"hero_id,omitempty"`
}

// ToAction converts r into a rules.Action, checking the fields its type needs.
func (r ActionRequest) ToAction() (rules.Action, error) {
	// need takes name, value pairs.
	need := func(pairs ...string) error {
		for i := 0; i+1 < len(pairs); i += 2 {
			if pairs[i+1] == "" {
				return match.Fail(match.CodeInvalidAction, "%s requires %s", r.Type, pairs[i])
			}
		}
		return nil
	}

	var (
		a   rules.Action
		err error
	)
	switch rules.Kind(r.Type) {
	case rules.KindPlayCard:
		err = need("card_id", r.CardID, "hall_id", r.HallID)
		a = rules.PlayCard{PlayerID: r.PlayerID, CardID: r.CardID, HallID: r.HallID}
	case rules.KindMoveMonster:
		err = need("monster_id", r.MonsterID, "from_hall", r.FromHall, "to_hall", r.ToHall)
		a = rules.MoveMonster{PlayerID: r.PlayerID, MonsterID: r.MonsterID, FromHall: r.FromHall, ToHall: r.ToHall}
	case rules.KindAttack:
		err = need("monster_id", r.MonsterID, "hero_id", r.HeroID)
		a = rules.Attack{PlayerID: r.PlayerID, MonsterID: r.MonsterID, HeroID: r.HeroID}
	case rules.KindBuyCard:
		err = need("card_id", r.CardID, "hall_id", r.HallID)
		a = rules.BuyCard{PlayerID: r.PlayerID, HallID: r.HallID, CardID: r.CardID}
	case rules.KindDiscardCard:
		err = need("card_id", r.CardID)
		a = rules.DiscardCard{PlayerID: r.PlayerID, CardID: r.CardID}
	default:
		return nil, match.Fail(match.CodeInvalidAction, "unknown action type %q", r.Type)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ActionResponse is returned for an accepted action.
type ActionResponse struct {
	Result rules.Result `json:"result"`
	State  *match.Match `json:"state"`
}

// EndTurnResponse summarizes a resolved hero wave.
type EndTurnResponse struct {
	Spawned []string     `json:"spawned"`
	Acted   int          `json:"acted"`
	Result  match.Result `json:"result,omitempty"`
	State   *match.Match `json:"state"`
}

// LogResponse wraps a slice of the match log.
type LogResponse struct {
	MatchID string        `json:"match_id"`
	Entries []match.Entry `json:"entries"`
}
