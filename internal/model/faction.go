package model

import "time"

// FactionID identifies an AI faction
type FactionID string

// SlotCount is the number of production slots per player
const SlotCount = 5

// FactionCategory groups factions by the kind of AI they represent
type FactionCategory string

const (
	CategoryLLM   FactionCategory = "llm"
	CategoryImage FactionCategory = "image"
	CategoryVideo FactionCategory = "video"
	CategoryAudio FactionCategory = "audio"
	CategoryCode  FactionCategory = "code"
)

// Valid reports whether c is a known category
func (c FactionCategory) Valid() bool {
	switch c {
	case CategoryLLM, CategoryImage, CategoryVideo, CategoryAudio, CategoryCode:
		return true
	default:
		return false
	}
}

// FactionEffects are the bonuses a faction grants while placed in a slot
type FactionEffects struct {
	TimeReduction float64 `json:"timeReduction" yaml:"time_reduction"`
	PowerBonus    float64 `json:"powerBonus" yaml:"power_bonus"`
	FragmentBonus int     `json:"fragmentBonus" yaml:"fragment_bonus"`
}

// CardTemplate is a catalog blueprint for generated cards
type CardTemplate struct {
	ID     TemplateID `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Unique bool       `json:"unique,omitempty" yaml:"unique"`
}

// Faction is a read-only catalog entry
type Faction struct {
	ID                FactionID       `json:"id" yaml:"id"`
	Name              string          `json:"name" yaml:"name"`
	Category          FactionCategory `json:"category" yaml:"category"`
	UnlockCost        int             `json:"unlockCost" yaml:"unlock_cost"`
	GenerationMinutes int             `json:"generationMinutes" yaml:"generation_minutes"`
	Effects           FactionEffects  `json:"effects" yaml:"effects"`
	Templates         []CardTemplate  `json:"templates" yaml:"templates"`
}

// BaseGenerationTime returns the unmodified production interval
func (f *Faction) BaseGenerationTime() time.Duration {
	return time.Duration(f.GenerationMinutes) * time.Minute
}

// FactionSlot is a production slot. Slots are addressed by SlotNumber (1..SlotCount).
type FactionSlot struct {
	SlotNumber     int        `json:"slotNumber"`
	FactionID      *FactionID `json:"aiFactionId"`
	LastGeneration *time.Time `json:"lastGeneration,omitempty"`
	NextGeneration *time.Time `json:"nextGeneration,omitempty"`
}

// IsEmpty reports whether no faction occupies the slot
func (s *FactionSlot) IsEmpty() bool {
	return s.FactionID == nil
}

// EmptySlots returns a fresh set of empty slots numbered 1..SlotCount
func EmptySlots() []FactionSlot {
	slots := make([]FactionSlot, SlotCount)
	for i := range slots {
		slots[i] = FactionSlot{SlotNumber: i + 1}
	}
	return slots
}
