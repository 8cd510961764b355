package deck

import "slices"

// Shop is the purchasable card row: a face-down deck and a face-up display.
type Shop struct {
	Deck    []string `json:"deck"`
	Display []string `json:"display"`
	Size    int      `json:"size"`
}

// NewShop builds a shop from an already shuffled deck and fills the display.
func NewShop(cards []string, size int) Shop {
	if size <= 0 {
		size = DefaultDisplaySize
	}
	s := Shop{Deck: slices.Clone(cards), Size: size}
	s.Refill()
	return s
}

// Refill tops the display up to its size or until the deck is exhausted.
func (s *Shop) Refill() {
	if missing := s.Size - len(s.Display); missing > 0 {
		s.Display = append(s.Display, Draw(&s.Deck, missing)...)
	}
}

// Offers reports whether card is face up in the display.
func (s *Shop) Offers(card string) bool {
	return slices.Contains(s.Display, card)
}

// Take removes card from the display and refills it.
func (s *Shop) Take(card string) bool {
	if !Remove(&s.Display, card) {
		return false
	}
	s.Refill()
	return true
}

// IsEmpty is true only when both the deck and the display are empty.
func (s *Shop) IsEmpty() bool {
	return len(s.Deck) == 0 && len(s.Display) == 0
}
