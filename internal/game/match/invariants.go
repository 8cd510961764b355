package match

import (
	"fmt"
	"slices"
)

// AsymmetricLinks lists every connection A->B whose reverse B->A is missing.
func (m *Match) AsymmetricLinks() [][2]string {
	var out [][2]string
	for _, h := range m.Halls {
		for _, to := range h.Connections {
			other := m.Hall(to)
			if other == nil || !other.ConnectedTo(h.ID) {
				out = append(out, [2]string{h.ID, to})
			}
		}
	}
	return out
}

// CheckInvariants reports every structural inconsistency in m. A healthy
// match returns nil.
func (m *Match) CheckInvariants() []error {
	var errs []error

	for _, link := range m.AsymmetricLinks() {
		errs = append(errs, fmt.Errorf("hall %s lists %s but not the reverse", link[0], link[1]))
	}

	for _, h := range m.Heroes {
		errs = append(errs, m.checkOccupant("hero", h.ID, h.HallID, func(hall *Hall) []string { return hall.Heroes })...)
		if h.HP <= 0 {
			errs = append(errs, fmt.Errorf("hero %s has hp %d", h.ID, h.HP))
		}
	}
	for _, mo := range m.Monsters {
		errs = append(errs, m.checkOccupant("monster", mo.ID, mo.HallID, func(hall *Hall) []string { return hall.Monsters })...)
		if mo.HP <= 0 {
			errs = append(errs, fmt.Errorf("monster %s has hp %d", mo.ID, mo.HP))
		}
	}
	for _, hall := range m.Halls {
		for _, id := range hall.Heroes {
			if h := m.Hero(id); h == nil || h.HallID != hall.ID {
				errs = append(errs, fmt.Errorf("hall %s lists stray hero %s", hall.ID, id))
			}
		}
		for _, id := range hall.Monsters {
			if mo := m.Monster(id); mo == nil || mo.HallID != hall.ID {
				errs = append(errs, fmt.Errorf("hall %s lists stray monster %s", hall.ID, id))
			}
		}
	}

	switch {
	case m.GameOver && m.Phase != PhaseGameOver && m.Phase != PhaseHeroes:
		errs = append(errs, fmt.Errorf("game over in phase %s", m.Phase))
	case m.Phase == PhaseGameOver && !m.GameOver:
		errs = append(errs, fmt.Errorf("phase %s without a result", m.Phase))
	}
	return errs
}

func (m *Match) checkOccupant(kind, id, hallID string, roster func(*Hall) []string) []error {
	var errs []error
	count := 0
	for _, hall := range m.Halls {
		if slices.Contains(roster(hall), id) {
			count++
			if hall.ID != hallID {
				errs = append(errs, fmt.Errorf("%s %s listed in %s but located in %s", kind, id, hall.ID, hallID))
			}
		}
	}
	if count != 1 {
		errs = append(errs, fmt.Errorf("%s %s listed in %d halls", kind, id, count))
	}
	return errs
}
