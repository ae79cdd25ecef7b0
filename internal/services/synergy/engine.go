// Package synergy computes slot bonuses and per-round card power.
package synergy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/model"
)

// Clamp bounds
const (
	MaxTimeReduction = 0.75
	MaxPowerBonus    = 1.0
)

// SetSize is the number of same-category factions that activates a category bonus
const SetSize = 2

// epsilon absorbs float error before flooring weighted sums
const epsilon = 1e-9

// Result is the aggregate bonus of the placed factions
type Result struct {
	TimeReduction    float64                       `json:"timeReduction"`
	PowerBonus       float64                       `json:"powerBonus"`
	FragmentBonus    int                           `json:"fragmentBonus"`
	ActiveCategories []model.FactionCategory       `json:"activeCategories"`
	Categories       map[model.FactionCategory]int `json:"categories"`
	SynergyTitle     string                        `json:"synergyTitle"`
	Description      string                        `json:"description"`
}

// Engine evaluates slot layouts against the catalog
type Engine struct {
	catalog *catalog.Catalog
}

// New creates a new synergy engine
func New(catalog *catalog.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// categoryBonus returns the extra effects of a completed category set
func categoryBonus(c model.FactionCategory) model.FactionEffects {
	switch c {
	case model.CategoryLLM:
		return model.FactionEffects{PowerBonus: 0.05}
	case model.CategoryImage:
		return model.FactionEffects{FragmentBonus: 1}
	case model.CategoryVideo:
		return model.FactionEffects{TimeReduction: 0.05}
	case model.CategoryAudio:
		return model.FactionEffects{TimeReduction: 0.03}
	case model.CategoryCode:
		return model.FactionEffects{PowerBonus: 0.03}
	default:
		return model.FactionEffects{}
	}
}

// Calculate sums the effects of every occupied slot plus category set bonuses.
// Unknown factions are ignored.
func (e *Engine) Calculate(slots []model.FactionSlot) Result {
	res := Result{Categories: map[model.FactionCategory]int{}}
	placed := 0

	for _, slot := range slots {
		if slot.IsEmpty() {
			continue
		}
		faction, ok := e.catalog.Faction(*slot.FactionID)
		if !ok {
			continue
		}
		placed++
		res.TimeReduction += faction.Effects.TimeReduction
		res.PowerBonus += faction.Effects.PowerBonus
		res.FragmentBonus += faction.Effects.FragmentBonus
		res.Categories[faction.Category]++
	}

	for category, n := range res.Categories {
		if n < SetSize {
			continue
		}
		bonus := categoryBonus(category)
		res.TimeReduction += bonus.TimeReduction
		res.PowerBonus += bonus.PowerBonus
		res.FragmentBonus += bonus.FragmentBonus
		res.ActiveCategories = append(res.ActiveCategories, category)
	}
	sort.Slice(res.ActiveCategories, func(i, j int) bool {
		return res.ActiveCategories[i] < res.ActiveCategories[j]
	})

	res.TimeReduction = clamp(res.TimeReduction, 0, MaxTimeReduction)
	res.PowerBonus = clamp(res.PowerBonus, 0, MaxPowerBonus)
	if res.FragmentBonus < 0 {
		res.FragmentBonus = 0
	}

	res.SynergyTitle = title(placed, res)
	res.Description = describe(placed, res)
	return res
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func title(placed int, res Result) string {
	switch {
	case placed == 0:
		return "No Synergy"
	case len(res.Categories) == 5:
		return "Full Spectrum"
	case len(res.ActiveCategories) > 1:
		return "Hybrid Alliance"
	case len(res.ActiveCategories) == 1:
		c := string(res.ActiveCategories[0])
		if c == string(model.CategoryLLM) {
			return "LLM Alliance"
		}
		return strings.ToUpper(c[:1]) + c[1:] + " Alliance"
	default:
		return "Loose Network"
	}
}

func describe(placed int, res Result) string {
	return fmt.Sprintf("%d factions placed: %.0f%% faster production, +%.0f%% power, +%d fragments",
		placed, res.TimeReduction*100, res.PowerBonus*100, res.FragmentBonus)
}

// BasePower is floor(sum of weight * stat) for a card
func BasePower(stats model.CardStats, w catalog.Weights) int {
	sum := 0.0
	for _, stat := range model.AllStats {
		sum += w.For(stat) * float64(stats.Get(stat))
	}
	return int(math.Floor(sum + epsilon))
}

// CalculatePower is floor(BasePower * (1 + bonus))
func CalculatePower(card *model.Card, w catalog.Weights, bonus float64) int {
	return int(math.Floor(float64(BasePower(card.Stats, w))*(1+bonus) + epsilon))
}
