package model

import "time"

// Game state defaults
const (
	StartingTokens     = 2000
	StartingRating     = 1000
	ExperiencePerLevel = 100
)

// BattleOutcome is the result of a battle from one player's perspective
type BattleOutcome string

const (
	OutcomeWin  BattleOutcome = "win"
	OutcomeLoss BattleOutcome = "loss"
	OutcomeDraw BattleOutcome = "draw"
)

// Score returns the Elo score for the outcome (1, 0.5 or 0)
func (o BattleOutcome) Score() float64 {
	switch o {
	case OutcomeWin:
		return 1
	case OutcomeDraw:
		return 0.5
	default:
		return 0
	}
}

// Invert returns the outcome as seen by the opponent
func (o BattleOutcome) Invert() BattleOutcome {
	switch o {
	case OutcomeWin:
		return OutcomeLoss
	case OutcomeLoss:
		return OutcomeWin
	default:
		return OutcomeDraw
	}
}

// GameStats are lifetime counters for a player
type GameStats struct {
	TotalBattles  int `json:"totalBattles"`
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	Draws         int `json:"draws"`
	WinStreak     int `json:"winStreak"`
	CurrentStreak int `json:"currentStreak"`
	PvPMatches    int `json:"pvpMatches"`
	CardsEnhanced int `json:"cardsEnhanced"`
	CardsFused    int `json:"cardsFused"`
}

// WinRate returns wins as a fraction of total battles
func (s GameStats) WinRate() float64 {
	if s.TotalBattles == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalBattles)
}

// DailyMissions tracks mission progress for a single UTC day
type DailyMissions struct {
	Date     string          `json:"date"`
	Progress map[string]int  `json:"progress"`
	Claimed  map[string]bool `json:"claimed"`
}

// GameState is the persistent per-user progress record
type GameState struct {
	UserID            PlayerID      `json:"userId"`
	Nickname          string        `json:"nickname"`
	Level             int           `json:"level"`
	Experience        int           `json:"experience"`
	TotalExperience   int           `json:"totalExperience"`
	Tokens            int           `json:"tokens"`
	Fragments         int           `json:"fragments"`
	Rating            int           `json:"rating"`
	PendingBonusCards int           `json:"pendingBonusCards"`
	Inventory         []*Card       `json:"inventory"`
	UnlockedFactions  []FactionID   `json:"unlockedFactions"`
	Stats             GameStats     `json:"stats"`
	DailyMissions     DailyMissions `json:"dailyMissions"`
	Slots             []FactionSlot `json:"slots"`
	CreatedAt         time.Time     `json:"createdAt"`
	LastSaved         time.Time     `json:"lastSaved"`
}

// FindCard returns the card with the given ID, or nil
func (g *GameState) FindCard(id CardID) *Card {
	for _, c := range g.Inventory {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// RemoveCard deletes a card from the inventory and reports whether it was present
func (g *GameState) RemoveCard(id CardID) bool {
	for i, c := range g.Inventory {
		if c.ID == id {
			g.Inventory = append(g.Inventory[:i], g.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// HasFaction reports whether the faction is unlocked
func (g *GameState) HasFaction(id FactionID) bool {
	for _, f := range g.UnlockedFactions {
		if f == id {
			return true
		}
	}
	return false
}

// Slot returns the slot with the given number, or nil
func (g *GameState) Slot(number int) *FactionSlot {
	for i := range g.Slots {
		if g.Slots[i].SlotNumber == number {
			return &g.Slots[i]
		}
	}
	return nil
}

// SlotOf returns the slot occupied by the faction, or nil
func (g *GameState) SlotOf(id FactionID) *FactionSlot {
	for i := range g.Slots {
		if f := g.Slots[i].FactionID; f != nil && *f == id {
			return &g.Slots[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the state
func (g *GameState) Clone() *GameState {
	cp := *g
	cp.Inventory = make([]*Card, len(g.Inventory))
	for i, c := range g.Inventory {
		cp.Inventory[i] = c.Clone()
	}
	cp.UnlockedFactions = append([]FactionID(nil), g.UnlockedFactions...)
	cp.Slots = make([]FactionSlot, len(g.Slots))
	for i, s := range g.Slots {
		cp.Slots[i] = s
		if s.FactionID != nil {
			id := *s.FactionID
			cp.Slots[i].FactionID = &id
		}
		if s.LastGeneration != nil {
			t := *s.LastGeneration
			cp.Slots[i].LastGeneration = &t
		}
		if s.NextGeneration != nil {
			t := *s.NextGeneration
			cp.Slots[i].NextGeneration = &t
		}
	}
	cp.DailyMissions.Progress = make(map[string]int, len(g.DailyMissions.Progress))
	for k, v := range g.DailyMissions.Progress {
		cp.DailyMissions.Progress[k] = v
	}
	cp.DailyMissions.Claimed = make(map[string]bool, len(g.DailyMissions.Claimed))
	for k, v := range g.DailyMissions.Claimed {
		cp.DailyMissions.Claimed[k] = v
	}
	return &cp
}

// LevelForExperience returns the level reached with the given total experience
func LevelForExperience(total int) int {
	if total < 0 {
		total = 0
	}
	return total/ExperiencePerLevel + 1
}
