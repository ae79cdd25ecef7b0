// Package catalog loads the read-only card, faction and battle rule tables.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/aicardgame-go/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// RarityRule holds the per-tier generation and fusion parameters
type RarityRule struct {
	Rarity           model.Rarity `yaml:"rarity"`
	StatMin          int          `yaml:"stat_min"`
	StatMax          int          `yaml:"stat_max"`
	GenerationWeight int          `yaml:"generation_weight"`
	// FusionCost is charged when fusing three cards of this tier
	FusionCost int `yaml:"fusion_cost"`
	// FusionMultiplier scales averaged stats when fusing into this tier
	FusionMultiplier float64 `yaml:"fusion_multiplier"`
}

// Weights are per-stat multipliers for a battle genre
type Weights struct {
	Creativity float64 `yaml:"creativity"`
	Accuracy   float64 `yaml:"accuracy"`
	Speed      float64 `yaml:"speed"`
	Stability  float64 `yaml:"stability"`
	Ethics     float64 `yaml:"ethics"`
}

// For returns the weight of a single stat
func (w Weights) For(stat model.Stat) float64 {
	switch stat {
	case model.StatCreativity:
		return w.Creativity
	case model.StatAccuracy:
		return w.Accuracy
	case model.StatSpeed:
		return w.Speed
	case model.StatStability:
		return w.Stability
	case model.StatEthics:
		return w.Ethics
	default:
		return 0
	}
}

// TemplateRef is a template together with its owning faction
type TemplateRef struct {
	Template  model.CardTemplate
	FactionID model.FactionID
}

// Catalog is the loaded rule set. It is immutable after Load.
type Catalog struct {
	StarterFaction model.FactionID         `yaml:"starter_faction"`
	Rarities       []RarityRule            `yaml:"rarities"`
	Genres         map[model.Genre]Weights `yaml:"genres"`
	Factions       []model.Faction         `yaml:"factions"`

	factionIndex  map[model.FactionID]int
	rarityIndex   map[model.Rarity]int
	templateIndex map[model.TemplateID]TemplateRef
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Load(defaultCatalog)
}

// MustDefault returns the embedded catalog and panics if it is invalid
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load parses and validates a YAML catalog
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	c.rarityIndex = make(map[model.Rarity]int, len(c.Rarities))
	for i, r := range c.Rarities {
		if !r.Rarity.Valid() {
			return fmt.Errorf("catalog: unknown rarity %q", r.Rarity)
		}
		if r.StatMin < 0 || r.StatMax < r.StatMin {
			return fmt.Errorf("catalog: rarity %s has invalid stat range", r.Rarity)
		}
		if r.FusionMultiplier <= 0 {
			return fmt.Errorf("catalog: rarity %s needs a positive fusion multiplier", r.Rarity)
		}
		c.rarityIndex[r.Rarity] = i
	}
	for _, r := range model.Rarities {
		if _, ok := c.rarityIndex[r]; !ok {
			return fmt.Errorf("catalog: missing rarity %s", r)
		}
	}

	if _, ok := c.Genres[model.GenreBalanced]; !ok {
		return errors.New("catalog: missing balanced genre")
	}

	c.factionIndex = make(map[model.FactionID]int, len(c.Factions))
	c.templateIndex = make(map[model.TemplateID]TemplateRef)
	for i := range c.Factions {
		f := &c.Factions[i]
		if f.ID == "" {
			f.ID = model.FactionID(slug.Make(f.Name))
		}
		if _, dup := c.factionIndex[f.ID]; dup {
			return fmt.Errorf("catalog: duplicate faction %s", f.ID)
		}
		if !f.Category.Valid() {
			return fmt.Errorf("catalog: faction %s has unknown category %q", f.ID, f.Category)
		}
		if f.GenerationMinutes <= 0 {
			return fmt.Errorf("catalog: faction %s needs a positive generation time", f.ID)
		}
		if len(f.Templates) == 0 {
			return fmt.Errorf("catalog: faction %s has no templates", f.ID)
		}
		for j := range f.Templates {
			t := &f.Templates[j]
			if t.ID == "" {
				t.ID = model.TemplateID(slug.Make(t.Name))
			}
			if _, dup := c.templateIndex[t.ID]; dup {
				return fmt.Errorf("catalog: duplicate template %s", t.ID)
			}
			c.templateIndex[t.ID] = TemplateRef{Template: *t, FactionID: f.ID}
		}
		c.factionIndex[f.ID] = i
	}

	if c.StarterFaction == "" && len(c.Factions) > 0 {
		c.StarterFaction = c.Factions[0].ID
	}
	if _, ok := c.factionIndex[c.StarterFaction]; !ok {
		return fmt.Errorf("catalog: starter faction %q not defined", c.StarterFaction)
	}
	return nil
}

// Faction returns the faction with the given ID
func (c *Catalog) Faction(id model.FactionID) (*model.Faction, bool) {
	i, ok := c.factionIndex[id]
	if !ok {
		return nil, false
	}
	return &c.Factions[i], true
}

// Rarity returns the rule for a tier
func (c *Catalog) Rarity(r model.Rarity) (RarityRule, bool) {
	i, ok := c.rarityIndex[r]
	if !ok {
		return RarityRule{}, false
	}
	return c.Rarities[i], true
}

// Weights returns the stat weights for a genre
func (c *Catalog) Weights(g model.Genre) (Weights, bool) {
	w, ok := c.Genres[g]
	return w, ok
}

// Template returns a template and its faction
func (c *Catalog) Template(id model.TemplateID) (TemplateRef, bool) {
	ref, ok := c.templateIndex[id]
	return ref, ok
}

// Templates returns every template in catalog order
func (c *Catalog) Templates() []TemplateRef {
	var refs []TemplateRef
	for _, f := range c.Factions {
		for _, t := range f.Templates {
			refs = append(refs, TemplateRef{Template: t, FactionID: f.ID})
		}
	}
	return refs
}

// GenerationWeights returns the rarity tiers and their roll weights in tier order
func (c *Catalog) GenerationWeights() ([]model.Rarity, []int) {
	tiers := make([]model.Rarity, 0, len(model.Rarities))
	weights := make([]int, 0, len(model.Rarities))
	for _, r := range model.Rarities {
		rule, _ := c.Rarity(r)
		tiers = append(tiers, r)
		weights = append(weights, rule.GenerationWeight)
	}
	return tiers, weights
}
