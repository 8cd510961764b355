package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/nfrund/dungeonwave/internal/game/match"
)

var (
	// ErrMissingFile is returned when a required catalog file is absent.
	ErrMissingFile = errors.New("catalog: missing file")
	// ErrInvalid is returned when the catalog fails validation.
	ErrInvalid = errors.New("catalog: invalid")
)

// File names, without extension. Each may be .yaml, .yml or .json.
const (
	FileScenario = "scenario"
	FileHeroes   = "heroes"
	FileMonsters = "monsters"
	FileShop     = "shop"
	FileRules    = "rules"
)

var extensions = []string{".yaml", ".yml", ".json"}

//go:embed defaults/*.yaml
var defaults embed.FS

var validate = validator.New()

// DefaultFs exposes the built-in catalog as a read-only afero filesystem
// rooted at the catalog directory.
func DefaultFs() afero.Fs {
	sub, err := fs.Sub(defaults, "defaults")
	if err != nil {
		panic(err)
	}
	return afero.FromIOFS{FS: sub}
}

// LoadDefault loads the built-in catalog.
func LoadDefault(ctx context.Context) (*Catalog, []Warning, error) {
	return Load(ctx, DefaultFs(), ".")
}

// Load reads the catalog in dir, validates it and repairs what it can.
// Repairs are reported as warnings; anything else is an error.
func Load(ctx context.Context, fsys afero.Fs, dir string) (*Catalog, []Warning, error) {
	cat := &Catalog{}
	if err := decode(fsys, dir, FileScenario, true, &cat.Scenario); err != nil {
		return nil, nil, err
	}
	if err := decode(fsys, dir, FileHeroes, true, &cat.Heroes); err != nil {
		return nil, nil, err
	}
	if err := decode(fsys, dir, FileMonsters, true, &cat.Classes); err != nil {
		return nil, nil, err
	}
	if err := decode(fsys, dir, FileShop, false, &cat.Shop); err != nil {
		return nil, nil, err
	}
	if err := decode(fsys, dir, FileRules, false, &cat.Rules); err != nil {
		return nil, nil, err
	}

	if err := expandScripts(ctx, cat); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	warnings, err := Check(cat)
	if err != nil {
		return nil, warnings, err
	}
	return cat, warnings, nil
}

func decode(fsys afero.Fs, dir, name string, required bool, out any) error {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		ok, err := afero.Exists(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: stat %s: %w", path, err)
		}
		if !ok {
			continue
		}
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
		}
		return nil
	}
	if required {
		return fmt.Errorf("%w: %s in %s", ErrMissingFile, name, dir)
	}
	return nil
}

func expandScripts(ctx context.Context, cat *Catalog) error {
	maxWaves := cat.MatchRules().MaxWaves
	for d, dd := range cat.Rules.Difficulties {
		if strings.TrimSpace(dd.CardsScript) == "" {
			continue
		}
		cards, err := ExpandCards(ctx, dd.CardsScript, d, maxWaves)
		if err != nil {
			return err
		}
		dd.CardsPerWave = cards
		cat.Rules.Difficulties[d] = dd
	}
	return nil
}

// Check validates cat in place. It fills display names and default ids,
// repairs broken references and returns a warning for each repair.
func Check(cat *Catalog) ([]Warning, error) {
	if err := validate.Struct(cat); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for _, ids := range [][]string{
		lo.Map(cat.Scenario.Halls, func(h HallDef, _ int) string { return h.ID }),
		lo.Map(cat.Heroes, func(h HeroDef, _ int) string { return h.ID }),
		cat.ClassIDs(),
		lo.Map(cat.Shop, func(s ShopCardDef, _ int) string { return s.ID }),
	} {
		if dup := lo.FindDuplicates(ids); len(dup) > 0 {
			return nil, fmt.Errorf("%w: duplicate ids %v", ErrInvalid, dup)
		}
	}
	for d := range cat.Rules.Difficulties {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalid, d)
		}
	}

	var warnings []Warning
	warnings = append(warnings, checkHalls(cat)...)
	if !hasMainTreasure(cat.Scenario.Halls) {
		return warnings, fmt.Errorf("%w: scenario needs a tier %d treasure", ErrInvalid, match.MainTreasureTier)
	}
	warnings = append(warnings, checkReferences(cat)...)
	fillNames(cat)
	return warnings, nil
}

func checkHalls(cat *Catalog) []Warning {
	halls := cat.Scenario.Halls
	byID := make(map[string]int, len(halls))
	for i, h := range halls {
		byID[h.ID] = i
	}

	var warnings []Warning
	for i := range halls {
		h := &halls[i]
		h.Connections = lo.Filter(lo.Uniq(h.Connections), func(to string, _ int) bool {
			if _, ok := byID[to]; ok && to != h.ID {
				return true
			}
			warnings = append(warnings, Warning{Kind: WarnUnknownHall, Subject: h.ID, Detail: "dropped connection to " + to})
			return false
		})
	}
	for i := range halls {
		h := &halls[i]
		for _, to := range h.Connections {
			other := &halls[byID[to]]
			if !slices.Contains(other.Connections, h.ID) {
				other.Connections = append(other.Connections, h.ID)
				warnings = append(warnings, Warning{Kind: WarnAsymmetricLink, Subject: h.ID, Detail: "added " + to + " -> " + h.ID})
			}
		}
	}

	for i := range halls {
		bindTreasureToken(&halls[i])
		h := &halls[i]
		if h.Treasure == nil && h.ID == "treasury" {
			h.Treasure = &TreasureDef{Tier: match.MainTreasureTier}
		}
		if h.Treasure != nil && h.Treasure.ID == "" {
			h.Treasure.ID = "treasure_" + h.ID
		}
	}
	return warnings
}

// bindTreasureToken turns a treasury_<tier> token into the hall's treasure.
func bindTreasureToken(h *HallDef) {
	for i, t := range h.Tokens {
		tier, ok := strings.CutPrefix(t, "treasury_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(tier)
		if err != nil || n < 1 || n > match.MainTreasureTier {
			continue
		}
		h.Tokens = slices.Delete(slices.Clone(h.Tokens), i, i+1)
		if h.Treasure == nil {
			h.Treasure = &TreasureDef{ID: t, Tier: n}
		}
		return
	}
}

func hasMainTreasure(halls []HallDef) bool {
	return lo.ContainsBy(halls, func(h HallDef) bool {
		return h.Treasure != nil && h.Treasure.Tier == match.MainTreasureTier
	})
}

func checkReferences(cat *Catalog) []Warning {
	var warnings []Warning
	heroes := lo.SliceToMap(cat.Heroes, func(h HeroDef) (string, struct{}) { return h.ID, struct{}{} })
	classes := lo.SliceToMap(cat.Classes, func(c ClassDef) (string, struct{}) { return c.ID, struct{}{} })

	cat.Scenario.Guild = lo.Filter(cat.Scenario.Guild, func(id string, _ int) bool {
		if _, ok := heroes[id]; ok {
			return true
		}
		warnings = append(warnings, Warning{Kind: WarnUnknownTemplate, Subject: "guild", Detail: "dropped card " + id})
		return false
	})

	for i := range cat.Shop {
		s := &cat.Shop[i]
		if s.Class == "" {
			continue
		}
		if _, ok := classes[s.Class]; !ok {
			warnings = append(warnings, Warning{Kind: WarnUnknownClass, Subject: s.ID, Detail: "dropped class " + s.Class})
			s.Class = ""
		}
	}

	if p := cat.MatchRules().PrisonHall; p != "" && !lo.ContainsBy(cat.Scenario.Halls, func(h HallDef) bool { return h.ID == p }) {
		warnings = append(warnings, Warning{Kind: WarnUnknownHall, Subject: "prison_hall", Detail: "no hall " + p})
	}

	known := []string{
		string(match.EffectRobbery),
		string(match.EffectCurse),
		string(match.EffectHeal),
		string(match.EffectPrisoner),
		string(match.EffectDefeat),
	}
	for tier, effects := range cat.Rules.TreasureTable {
		cat.Rules.TreasureTable[tier] = lo.Filter(effects, func(e string, _ int) bool {
			if slices.Contains(known, e) {
				return true
			}
			warnings = append(warnings, Warning{Kind: WarnUnknownEffect, Subject: "tier " + strconv.Itoa(tier), Detail: "dropped effect " + e})
			return false
		})
	}
	return warnings
}

func fillNames(cat *Catalog) {
	for i := range cat.Scenario.Halls {
		if cat.Scenario.Halls[i].Label == "" {
			cat.Scenario.Halls[i].Label = DisplayName(cat.Scenario.Halls[i].ID)
		}
	}
	for i := range cat.Heroes {
		if cat.Heroes[i].Name == "" {
			cat.Heroes[i].Name = DisplayName(cat.Heroes[i].ID)
		}
	}
	for i := range cat.Classes {
		if cat.Classes[i].Name == "" {
			cat.Classes[i].Name = DisplayName(cat.Classes[i].ID)
		}
	}
	for i := range cat.Shop {
		if cat.Shop[i].Name == "" {
			cat.Shop[i].Name = DisplayName(cat.Shop[i].ID)
		}
	}
}
