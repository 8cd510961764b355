package heroai

import (
	"slices"

	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/rng"
)

// Distances returns, for every hall that can reach one, the number of moves
// to the nearest hall holding an unopened treasure.
func Distances(m *match.Match) map[string]int {
	incoming := make(map[string][]string, len(m.Halls))
	for _, h := range m.Halls {
		for _, to := range h.Connections {
			incoming[to] = append(incoming[to], h.ID)
		}
	}

	dist := make(map[string]int, len(m.Halls))
	var queue []string
	for _, h := range m.Halls {
		if h.UnopenedTreasure() != nil {
			dist[h.ID] = 0
			queue = append(queue, h.ID)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, prev := range incoming[cur] {
			if _, seen := dist[prev]; !seen {
				dist[prev] = dist[cur] + 1
				queue = append(queue, prev)
			}
		}
	}
	return dist
}

// NextHall picks where a hero in from moves next: the neighbor that brings
// it strictly closer to treasure, lowest hall id first among equals, or a
// random neighbor when no such neighbor exists. It returns nil for a dead end.
func NextHall(src rng.Source, m *match.Match, from *match.Hall) *match.Hall {
	var neighbors []string
	for _, id := range from.Connections {
		if m.Hall(id) != nil && !slices.Contains(neighbors, id) {
			neighbors = append(neighbors, id)
		}
	}
	if len(neighbors) == 0 {
		return nil
	}
	slices.Sort(neighbors)

	dist := Distances(m)
	if cur, ok := dist[from.ID]; ok {
		best, bestDist := "", cur
		for _, id := range neighbors {
			if d, ok := dist[id]; ok && d < bestDist {
				best, bestDist = id, d
			}
		}
		if best != "" {
			return m.Hall(best)
		}
	}

	id, _ := rng.Pick(src, neighbors)
	return m.Hall(id)
}
