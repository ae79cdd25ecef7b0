package model

import "time"

// CardID uniquely identifies a card instance
type CardID string

// TemplateID identifies a card template in the catalog
type TemplateID string

// Card levels
const (
	MinCardLevel = 1
	MaxCardLevel = 10
)

// Rarity is the ordered tier of a card
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
)

// Rarities lists every tier from lowest to highest
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary, RarityMythic}

// Rank returns the tier index, or -1 for an unknown rarity
func (r Rarity) Rank() int {
	switch r {
	case RarityCommon:
		return 0
	case RarityRare:
		return 1
	case RarityEpic:
		return 2
	case RarityLegendary:
		return 3
	case RarityMythic:
		return 4
	default:
		return -1
	}
}

// Valid reports whether r is a known tier
func (r Rarity) Valid() bool {
	return r.Rank() >= 0
}

// Next returns the tier above r. ok is false for the top tier.
func (r Rarity) Next() (Rarity, bool) {
	switch r {
	case RarityCommon:
		return RarityRare, true
	case RarityRare:
		return RarityEpic, true
	case RarityEpic:
		return RarityLegendary, true
	case RarityLegendary:
		return RarityMythic, true
	case RarityMythic:
		return "", false
	default:
		return "", false
	}
}

// Stat names a single card attribute
type Stat string

const (
	StatCreativity Stat = "creativity"
	StatAccuracy   Stat = "accuracy"
	StatSpeed      Stat = "speed"
	StatStability  Stat = "stability"
	StatEthics     Stat = "ethics"
)

// AllStats lists the five card attributes in canonical order
var AllStats = []Stat{StatCreativity, StatAccuracy, StatSpeed, StatStability, StatEthics}

// CardStats holds a card's attributes. TotalPower is always the sum of the five stats.
type CardStats struct {
	Creativity int `json:"creativity"`
	Accuracy   int `json:"accuracy"`
	Speed      int `json:"speed"`
	Stability  int `json:"stability"`
	Ethics     int `json:"ethics"`
	TotalPower int `json:"totalPower"`
}

// NewCardStats builds stats from the five attributes and computes TotalPower
func NewCardStats(creativity, accuracy, speed, stability, ethics int) CardStats {
	s := CardStats{
		Creativity: creativity,
		Accuracy:   accuracy,
		Speed:      speed,
		Stability:  stability,
		Ethics:     ethics,
	}
	s.Recompute()
	return s
}

// Get returns the value of a single stat
func (s CardStats) Get(stat Stat) int {
	switch stat {
	case StatCreativity:
		return s.Creativity
	case StatAccuracy:
		return s.Accuracy
	case StatSpeed:
		return s.Speed
	case StatStability:
		return s.Stability
	case StatEthics:
		return s.Ethics
	default:
		return 0
	}
}

// Add increases a single stat and keeps TotalPower in sync
func (s *CardStats) Add(stat Stat, delta int) {
	switch stat {
	case StatCreativity:
		s.Creativity += delta
	case StatAccuracy:
		s.Accuracy += delta
	case StatSpeed:
		s.Speed += delta
	case StatStability:
		s.Stability += delta
	case StatEthics:
		s.Ethics += delta
	}
	s.Recompute()
}

// Recompute sets TotalPower to the sum of the five stats
func (s *CardStats) Recompute() {
	s.TotalPower = s.Creativity + s.Accuracy + s.Speed + s.Stability + s.Ethics
}

// Card is a single owned card instance
type Card struct {
	ID         CardID     `json:"id"`
	TemplateID TemplateID `json:"templateId"`
	FactionID  FactionID  `json:"factionId,omitempty"`
	Name       string     `json:"name"`
	OwnerID    PlayerID   `json:"ownerId"`
	Level      int        `json:"level"`
	Experience int        `json:"experience"`
	Stats      CardStats  `json:"stats"`
	Rarity     Rarity     `json:"rarity"`
	AcquiredAt time.Time  `json:"acquiredAt"`
	IsLocked   bool       `json:"isLocked"`
	IsUnique   bool       `json:"isUnique"`
}

// TotalPower is shorthand for Stats.TotalPower
func (c *Card) TotalPower() int {
	return c.Stats.TotalPower
}

// Clone returns a copy of the card
func (c *Card) Clone() *Card {
	cp := *c
	return &cp
}
