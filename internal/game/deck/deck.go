// Package deck holds the card pile primitives shared by the guild deck, the
// players' monster decks and the shop.
package deck

import "github.com/nfrund/dungeonwave/internal/game/rng"

// DefaultDisplaySize is the number of face-up shop cards.
const DefaultDisplaySize = 5

// Shuffle randomizes cards in place.
func Shuffle(src rng.Source, cards []string) {
	src.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Draw removes up to n cards from the front of pile and returns them.
// It returns fewer cards when the pile is short and never fails.
func Draw(pile *[]string, n int) []string {
	if n <= 0 || len(*pile) == 0 {
		return nil
	}
	if n > len(*pile) {
		n = len(*pile)
	}
	drawn := make([]string, n)
	copy(drawn, (*pile)[:n])
	*pile = append((*pile)[:0], (*pile)[n:]...)
	return drawn
}

// ReshuffleFromDiscard moves every discarded card into pile, shuffles it and
// clears the discard.
func ReshuffleFromDiscard(src rng.Source, pile, discard *[]string) {
	if len(*discard) == 0 {
		return
	}
	*pile = append(*pile, *discard...)
	*discard = (*discard)[:0]
	Shuffle(src, *pile)
}

// DrawWithReshuffle draws n cards, refilling pile from discard whenever it
// runs dry. The returned count of reshuffles lets callers enforce a budget;
// limit < 0 means unlimited.
func DrawWithReshuffle(src rng.Source, pile, discard *[]string, n, limit int) (drawn []string, reshuffles int) {
	for len(drawn) < n {
		if len(*pile) == 0 {
			if len(*discard) == 0 || (limit >= 0 && reshuffles >= limit) {
				break
			}
			ReshuffleFromDiscard(src, pile, discard)
			reshuffles++
		}
		drawn = append(drawn, Draw(pile, n-len(drawn))...)
	}
	return drawn, reshuffles
}

// Remove deletes the first occurrence of card from pile.
func Remove(pile *[]string, card string) bool {
	for i, c := range *pile {
		if c == card {
			*pile = append((*pile)[:i], (*pile)[i+1:]...)
			return true
		}
	}
	return false
}
