// Package rules validates and applies player actions.
package rules

// Kind names an action on the wire and in the log.
type Kind string

const (
	KindPlayCard    Kind = "play_card"
	KindMoveMonster Kind = "move_monster"
	KindAttack      Kind = "attack"
	KindBuyCard     Kind = "buy_card"
	KindDiscardCard Kind = "discard_card"
)

// Action is the closed set of player actions. Only the types in this
// package implement it.
type Action interface {
	Kind() Kind
	Actor() string
	action()
}

// PlayCard discards a hand card to summon a monster into HallID.
type PlayCard struct {
	PlayerID string
	CardID   string
	HallID   string
}

// MoveMonster relocates an owned monster between adjacent halls.
type MoveMonster struct {
	PlayerID  string
	MonsterID string
	FromHall  string
	ToHall    string
}

// Attack has a monster deal one damage to a hero in the same hall.
type Attack struct {
	PlayerID  string
	MonsterID string
	HeroID    string
}

// BuyCard spends a resource token in HallID on a shop display card.
type BuyCard struct {
	PlayerID string
	HallID   string
	CardID   string
}

// DiscardCard removes a card from hand, voluntarily or to settle a curse.
type DiscardCard struct {
	PlayerID string
	CardID   string
}

func (PlayCard) Kind() Kind    { return KindPlayCard }
func (MoveMonster) Kind() Kind { return KindMoveMonster }
func (Attack) Kind() Kind      { return KindAttack }
func (BuyCard) Kind() Kind     { return KindBuyCard }
func (DiscardCard) Kind() Kind { return KindDiscardCard }

func (a PlayCard) Actor() string    { return a.PlayerID }
func (a MoveMonster) Actor() string { return a.PlayerID }
func (a Attack) Actor() string      { return a.PlayerID }
func (a BuyCard) Actor() string     { return a.PlayerID }
func (a DiscardCard) Actor() string { return a.PlayerID }

func (PlayCard) action()    {}
func (MoveMonster) action() {}
func (Attack) action()      {}
func (BuyCard) action()     {}
func (DiscardCard) action() {}

// Result is the payload returned for an accepted action.
type Result struct {
	Kind    Kind           `json:"kind"`
	Payload map[string]any `json:"payload"`
}
