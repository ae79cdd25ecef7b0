// Package cards creates card instances from catalog templates.
package cards

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/dependencies/random"
	"github.com/mcoot/aicardgame-go/internal/model"
)

// Generator rolls new cards
type Generator struct {
	catalog *catalog.Catalog
	clock   clock.Clock
	random  random.Random
}

// NewGenerator creates a new Generator
func NewGenerator(catalog *catalog.Catalog, clock clock.Clock, random random.Random) *Generator {
	return &Generator{
		catalog: catalog,
		clock:   clock,
		random:  random,
	}
}

// NewID returns a fresh card ID
func NewID() model.CardID {
	return model.CardID(uuid.NewString())
}

// RollRarity picks a tier using the catalog generation weights
func (g *Generator) RollRarity() model.Rarity {
	tiers, weights := g.catalog.GenerationWeights()
	i := random.Weighted(g.random, weights)
	if i < 0 {
		return model.RarityCommon
	}
	return tiers[i]
}

// Build creates a level 1 card from a template with the given rarity and stats
func (g *Generator) Build(owner model.PlayerID, ref catalog.TemplateRef, rarity model.Rarity, stats model.CardStats) *model.Card {
	stats.Recompute()
	return &model.Card{
		ID:         NewID(),
		TemplateID: ref.Template.ID,
		FactionID:  ref.FactionID,
		Name:       ref.Template.Name,
		OwnerID:    owner,
		Level:      model.MinCardLevel,
		Stats:      stats,
		Rarity:     rarity,
		AcquiredAt: g.clock.Now(),
		IsUnique:   ref.Template.Unique,
	}
}

// Generate creates a card from a template with stats rolled inside the tier's range
func (g *Generator) Generate(owner model.PlayerID, ref catalog.TemplateRef, rarity model.Rarity) (*model.Card, error) {
	rule, ok := g.catalog.Rarity(rarity)
	if !ok {
		return nil, fmt.Errorf("unknown rarity %q", rarity)
	}
	var stats model.CardStats
	for _, stat := range model.AllStats {
		stats.Add(stat, random.Between(g.random, rule.StatMin, rule.StatMax))
	}
	return g.Build(owner, ref, rarity, stats), nil
}

// FromFaction rolls a rarity and a template belonging to the faction
func (g *Generator) FromFaction(owner model.PlayerID, factionID model.FactionID) (*model.Card, error) {
	faction, ok := g.catalog.Faction(factionID)
	if !ok {
		return nil, model.ErrUnknownFaction
	}
	rarity := g.RollRarity()
	t := faction.Templates[g.random.Intn(len(faction.Templates))]
	return g.Generate(owner, catalog.TemplateRef{Template: t, FactionID: faction.ID}, rarity)
}

// Random rolls a card from any template in the catalog
func (g *Generator) Random(owner model.PlayerID) (*model.Card, error) {
	refs := g.catalog.Templates()
	ref := refs[g.random.Intn(len(refs))]
	return g.Generate(owner, ref, g.RollRarity())
}

// Deck builds DeckSize cards whose total power sums exactly to target.
// Power is split evenly between cards and jittered between stats.
func (g *Generator) Deck(owner model.PlayerID, target int) []model.Card {
	if target < 0 {
		target = 0
	}
	refs := g.catalog.Templates()
	deck := make([]model.Card, model.DeckSize)

	for i := range deck {
		power := target / model.DeckSize
		if i < target%model.DeckSize {
			power++
		}
		ref := refs[g.random.Intn(len(refs))]
		deck[i] = *g.Build(owner, ref, rarityForPower(g.catalog, power), splitPower(g.random, power))
	}
	return deck
}

// splitPower spreads power over the five stats. Each of the first four stats
// moves at most a fifth of the even share so the last stat never goes negative.
func splitPower(r random.Random, power int) model.CardStats {
	base := power / len(model.AllStats)
	jitter := base / 5
	values := make([]int, len(model.AllStats))
	used := 0
	for i := 0; i < len(values)-1; i++ {
		values[i] = base + random.Between(r, -jitter, jitter)
		used += values[i]
	}
	values[len(values)-1] = power - used
	return model.NewCardStats(values[0], values[1], values[2], values[3], values[4])
}

// rarityForPower returns the highest tier whose minimum card power is reached
func rarityForPower(c *catalog.Catalog, power int) model.Rarity {
	best := model.RarityCommon
	for _, r := range model.Rarities {
		rule, ok := c.Rarity(r)
		if ok && power >= rule.StatMin*len(model.AllStats) {
			best = r
		}
	}
	return best
}
