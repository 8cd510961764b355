package match

import (
	"errors"
	"fmt"
)

// Failure categories. Every Failure matches exactly one of them with errors.Is.
var (
	// ErrValidation marks a malformed action or one that references an entity
	// in the wrong place.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to an unknown match, player or entity.
	ErrNotFound = errors.New("not found")

	// ErrTerminalState marks a request submitted after the match ended.
	ErrTerminalState = errors.New("match is over")
)

// Code identifies a specific failure.
type Code string

const (
	CodePlayerNotFound      Code = "player_not_found"
	CodeCardNotInHand       Code = "card_not_in_hand"
	CodeInvalidHall         Code = "invalid_hall"
	CodeResourceUnavailable Code = "resource_unavailable"
	CodeNotAdjacent         Code = "not_adjacent"
	CodeMonsterNotFound     Code = "monster_not_found"
	CodeHeroNotFound        Code = "hero_not_found"
	CodeNotOwner            Code = "not_owner"
	CodeNotSameHall         Code = "not_same_hall"
	CodeCardNotInShop       Code = "card_not_in_shop"
	CodeMonsterLimit        Code = "monster_limit"
	CodeWrongPhase          Code = "wrong_phase"
	CodeMatchNotFound       Code = "match_not_found"
	CodeGameOver            Code = "game_over"
	CodeInvalidAction       Code = "invalid_action"
	CodeInvalidSetup        Code = "invalid_setup"
)

func (c Code) category() error {
	switch c {
	case CodePlayerNotFound, CodeMonsterNotFound, CodeHeroNotFound, CodeMatchNotFound:
		return ErrNotFound
	case CodeGameOver:
		return ErrTerminalState
	default:
		return ErrValidation
	}
}

// Failure is a typed rejection. It never accompanies a state mutation.
type Failure struct {
	Code   Code
	Detail string
}

// Sentinel failures for errors.Is comparisons. Only the code is compared.
var (
	ErrPlayerNotFound      = &Failure{Code: CodePlayerNotFound}
	ErrCardNotInHand       = &Failure{Code: CodeCardNotInHand}
	ErrInvalidHall         = &Failure{Code: CodeInvalidHall}
	ErrResourceUnavailable = &Failure{Code: CodeResourceUnavailable}
	ErrNotAdjacent         = &Failure{Code: CodeNotAdjacent}
	ErrMonsterNotFound     = &Failure{Code: CodeMonsterNotFound}
	ErrHeroNotFound        = &Failure{Code: CodeHeroNotFound}
	ErrNotOwner            = &Failure{Code: CodeNotOwner}
	ErrNotSameHall         = &Failure{Code: CodeNotSameHall}
	ErrCardNotInShop       = &Failure{Code: CodeCardNotInShop}
	ErrMonsterLimit        = &Failure{Code: CodeMonsterLimit}
	ErrWrongPhase          = &Failure{Code: CodeWrongPhase}
	ErrMatchNotFound       = &Failure{Code: CodeMatchNotFound}
	ErrGameOver            = &Failure{Code: CodeGameOver}
	ErrInvalidAction       = &Failure{Code: CodeInvalidAction}
	ErrInvalidSetup        = &Failure{Code: CodeInvalidSetup}
)

// Fail builds a Failure with a formatted detail message.
func Fail(code Code, format string, args ...any) *Failure {
	return &Failure{Code: code, Detail: fmt.Sprintf(format, args...)}
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return string(f.Code)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Detail)
}

// Is matches failures with the same code and the failure's category sentinel.
func (f *Failure) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*Failure); ok {
		return t.Code == f.Code
	}
	return target == f.Code.category()
}

// Category returns ErrValidation, ErrNotFound or ErrTerminalState.
func (f *Failure) Category() error {
	return f.Code.category()
}
