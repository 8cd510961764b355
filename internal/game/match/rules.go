package match

// Effect is a treasure theft consequence.
type Effect string

const (
	EffectRobbery  Effect = "robbery"
	EffectCurse    Effect = "curse"
	EffectHeal     Effect = "heal"
	EffectPrisoner Effect = "prisoner"
	EffectDefeat   Effect = "defeat"
)

// MainTreasureTier is the tier whose theft loses the game.
const MainTreasureTier = 4

// CurseMode selects how curse discards are resolved.
type CurseMode string

const (
	// CurseAuto discards each player's first card immediately.
	CurseAuto CurseMode = "auto"
	// CursePrompt asks each player to choose and falls back to the first
	// card when the turn ends.
	CursePrompt CurseMode = "prompt"
)

// Rules is the catalog snapshot a match plays by. It never changes after
// the match is created.
type Rules struct {
	CardsPerWave       map[Difficulty][]int `json:"cards_per_wave"`
	TreasureTable      map[int][]Effect     `json:"treasure_table"`
	HealHP             map[Difficulty]int   `json:"heal_hp"`
	PrisonHall         string               `json:"prison_hall"`
	DisplaySize        int                  `json:"display_size"`
	HandSize           int                  `json:"hand_size"`
	MaxWaves           int                  `json:"max_waves"`
	MaxGuildReshuffles int                  `json:"max_guild_reshuffles"`
	CurseMode          CurseMode            `json:"curse_mode"`
}

// DefaultRules returns the base game rules.
func DefaultRules() Rules {
	return Rules{
		CardsPerWave: map[Difficulty][]int{
			DifficultyFamily:  {1, 2},
			DifficultyProblem: {2, 2},
			DifficultyHard:    {2, 3},
		},
		TreasureTable: DefaultTreasureTable(),
		HealHP: map[Difficulty]int{
			DifficultyFamily:  0,
			DifficultyProblem: 1,
			DifficultyHard:    2,
		},
		PrisonHall:         "prison",
		DisplaySize:        5,
		HandSize:           3,
		MaxWaves:           2,
		MaxGuildReshuffles: 1,
		CurseMode:          CurseAuto,
	}
}

// DefaultTreasureTable maps each tier to its candidate effects.
func DefaultTreasureTable() map[int][]Effect {
	return map[int][]Effect{
		1: {EffectRobbery, EffectCurse},
		2: {EffectCurse, EffectHeal},
		3: {EffectHeal, EffectPrisoner},
		4: {EffectDefeat},
	}
}

// CardsToPlay returns how many guild cards are drawn at the start of wave.
// Waves past the end of the table reuse its last entry; a missing table
// draws one card.
func (r Rules) CardsToPlay(d Difficulty, wave int) int {
	table := r.CardsPerWave[d]
	if len(table) == 0 {
		return 1
	}
	switch {
	case wave < 1:
		return table[0]
	case wave > len(table):
		return table[len(table)-1]
	}
	return table[wave-1]
}

// Candidates returns the effects a treasure of tier may produce.
func (r Rules) Candidates(tier int) []Effect {
	return r.TreasureTable[tier]
}
