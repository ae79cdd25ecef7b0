package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case HealthResult:
		fmt.Printf("Status: %s\nStorage: %s\n", v.Status, v.Storage)
	case StateResult:
		o.printState(v)
	case CardList:
		o.printCards(v.Cards)
	case CardResult:
		o.printCards([]Card{v.Card})
	case EnhanceResult:
		fmt.Printf("Enhanced for %d tokens (+%d power), %d tokens left\n", v.Cost, v.PowerGain, v.Tokens)
		o.printCards([]Card{v.Card})
	case FuseResult:
		fmt.Printf("Fused %d cards for %d tokens\n", len(v.Consumed), v.Cost)
		o.printCards([]Card{v.Card})
	case FactionList:
		o.printFactions(v)
	case TokensResult:
		fmt.Printf("Tokens: %d\n", v.Tokens)
	case SlotResult:
		o.printSlot(v.Slot)
	case ClaimResult:
		fmt.Printf("Claimed slot %d (+%d fragments)\n", v.Slot.SlotNumber, v.Fragments)
		o.printCards([]Card{v.Card})
	case BonusCards:
		o.printCards(v.Cards)
	case PvPSession:
		o.printSession(v)
	case MatchList:
		for _, m := range v.Matches {
			o.printMatch(m)
		}
	case Match:
		o.printMatch(v)
	case Rankings:
		o.printRankings(v)
	case Standing:
		o.printStanding(v)
	case MissionList:
		for _, m := range v.Missions {
			o.printMission(m)
		}
	case MissionClaim:
		o.printMission(v.Mission)
		fmt.Printf("Tokens: %d\n", v.Tokens)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// CardStats are a card's five attributes plus their total
type CardStats struct {
	Creativity int `json:"creativity"`
	Accuracy   int `json:"accuracy"`
	Speed      int `json:"speed"`
	Stability  int `json:"stability"`
	Ethics     int `json:"ethics"`
	TotalPower int `json:"totalPower"`
}

// Card response type
type Card struct {
	ID         string    `json:"id"`
	TemplateID string    `json:"templateId"`
	FactionID  string    `json:"factionId"`
	Name       string    `json:"name"`
	Level      int       `json:"level"`
	Experience int       `json:"experience"`
	Stats      CardStats `json:"stats"`
	Rarity     string    `json:"rarity"`
	IsLocked   bool      `json:"isLocked"`
	IsUnique   bool      `json:"isUnique"`
}

// Slot is a production slot
type Slot struct {
	SlotNumber     int        `json:"slotNumber"`
	FactionID      *string    `json:"aiFactionId"`
	NextGeneration *time.Time `json:"nextGeneration,omitempty"`
}

// Stats are the player's battle totals
type Stats struct {
	TotalBattles int `json:"totalBattles"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
}

// GameState is the subset of the player's state the CLI shows
type GameState struct {
	Nickname          string   `json:"nickname"`
	Level             int      `json:"level"`
	Experience        int      `json:"experience"`
	Tokens            int      `json:"tokens"`
	Fragments         int      `json:"fragments"`
	Rating            int      `json:"rating"`
	PendingBonusCards int      `json:"pendingBonusCards"`
	Inventory         []Card   `json:"inventory"`
	UnlockedFactions  []string `json:"unlockedFactions"`
	Stats             Stats    `json:"stats"`
	Slots             []Slot   `json:"slots"`
}

// Synergy is the derived bonus of the placed factions
type Synergy struct {
	TimeReduction float64 `json:"timeReduction"`
	PowerBonus    float64 `json:"powerBonus"`
	FragmentBonus int     `json:"fragmentBonus"`
	SynergyTitle  string  `json:"synergyTitle"`
}

// StateResult is the GET /state body
type StateResult struct {
	State   GameState `json:"state"`
	Synergy Synergy   `json:"synergy"`
	WinRate float64   `json:"win_rate"`
}

// CardList is the inventory listing
type CardList struct {
	Cards []Card `json:"cards"`
	Count int    `json:"count"`
}

// BonusCards lists bonus cards granted by level-ups
type BonusCards struct {
	Cards []Card `json:"cards"`
}

// CardResult wraps a single card
type CardResult struct {
	Card Card `json:"card"`
}

// EnhanceResult response type
type EnhanceResult struct {
	Card      Card `json:"card"`
	Cost      int  `json:"cost"`
	PowerGain int  `json:"powerGain"`
	Tokens    int  `json:"tokens"`
}

// FuseResult response type
type FuseResult struct {
	Card     Card     `json:"card"`
	Consumed []string `json:"consumed"`
	Cost     int      `json:"cost"`
}

// Faction is a catalog faction with the player's unlock state
type Faction struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	UnlockCost        int    `json:"unlockCost"`
	GenerationMinutes int    `json:"generationMinutes"`
	Unlocked          bool   `json:"unlocked"`
	Placed            bool   `json:"placed"`
}

// FactionList response type
type FactionList struct {
	Factions []Faction `json:"factions"`
}

// TokensResult reports a balance
type TokensResult struct {
	Tokens int `json:"tokens"`
}

// SlotResult wraps a slot
type SlotResult struct {
	Slot Slot `json:"slot"`
}

// ClaimResult is a production claim
type ClaimResult struct {
	Card      Card `json:"card"`
	Fragments int  `json:"fragments"`
	Slot      Slot `json:"slot"`
}

// MatchPlayer is one side of a match
type MatchPlayer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Rating     int    `json:"rating"`
	TotalPower int    `json:"totalPower"`
	IsBot      bool   `json:"isBot"`
}

// Round is a single round of a battle
type Round struct {
	Round  int    `json:"round"`
	Power1 int    `json:"power1"`
	Power2 int    `json:"power2"`
	Winner string `json:"winner"`
}

// BattleResult response type
type BattleResult struct {
	Rounds  []Round `json:"rounds"`
	Wins1   int     `json:"wins1"`
	Wins2   int     `json:"wins2"`
	Outcome string  `json:"outcome"`
}

// Match is a stored PvP match
type Match struct {
	ID      string        `json:"id"`
	Player1 MatchPlayer   `json:"player1"`
	Player2 MatchPlayer   `json:"player2"`
	Status  string        `json:"status"`
	Mode    string        `json:"mode"`
	Genre   string        `json:"genre"`
	Result  *BattleResult `json:"result,omitempty"`
}

// MatchList response type
type MatchList struct {
	Matches []Match `json:"matches"`
}

// Outcome is what a battle did to the player
type Outcome struct {
	Outcome     string `json:"outcome"`
	RatingDelta int    `json:"ratingDelta"`
	NewRating   int    `json:"newRating"`
	Coins       int    `json:"coins"`
	Experience  int    `json:"experience"`
}

// PvPSession is the player's matchmaking session
type PvPSession struct {
	PlayerID string   `json:"playerId"`
	State    string   `json:"state"`
	Mode     string   `json:"mode,omitempty"`
	Genre    string   `json:"genre,omitempty"`
	Live     bool     `json:"live"`
	Match    *Match   `json:"match,omitempty"`
	Outcome  *Outcome `json:"outcome,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// RankingEntry is a leaderboard row
type RankingEntry struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Rank       int     `json:"rank"`
	Rating     int     `json:"rating"`
	Level      int     `json:"level"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"winRate"`
}

// Rankings response type
type Rankings struct {
	Season  int            `json:"season"`
	Entries []RankingEntry `json:"entries"`
}

// Tier is a rating band
type Tier struct {
	Tier             string `json:"tier"`
	NextTier         string `json:"nextTier,omitempty"`
	RatingToNextTier int    `json:"ratingToNextTier"`
}

// Reward is a season-end reward
type Reward struct {
	Title string `json:"title,omitempty"`
	Coins int    `json:"coins"`
	Cards int    `json:"cards"`
}

// Standing is the player's own ranking
type Standing struct {
	Entry  RankingEntry `json:"entry"`
	Ranked bool         `json:"ranked"`
	Tier   Tier         `json:"tier"`
	Reward Reward       `json:"reward"`
}

// Mission is a daily mission with progress
type Mission struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Target    int    `json:"target"`
	Reward    int    `json:"reward"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
	Claimed   bool   `json:"claimed"`
}

// MissionList response type
type MissionList struct {
	Missions []Mission `json:"missions"`
}

// MissionClaim response type
type MissionClaim struct {
	Mission Mission `json:"mission"`
	Tokens  int     `json:"tokens"`
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Guest: %s\n", yesNo(p.IsGuest))
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
	if !a.ExpiresAt.IsZero() {
		fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
	}
}

func (o *Output) printState(r StateResult) {
	s := r.State
	fmt.Printf("Nickname: %s\n", s.Nickname)
	fmt.Printf("Level: %d (%d xp)\n", s.Level, s.Experience)
	fmt.Printf("Tokens: %d  Fragments: %d\n", s.Tokens, s.Fragments)
	fmt.Printf("Rating: %d  Record: %d-%d (%.1f%%)\n", s.Rating, s.Stats.Wins, s.Stats.Losses, r.WinRate*100)
	fmt.Printf("Cards: %d\n", len(s.Inventory))
	fmt.Printf("Factions: %s\n", strings.Join(s.UnlockedFactions, ", "))
	if s.PendingBonusCards > 0 {
		fmt.Printf("Pending bonus cards: %d\n", s.PendingBonusCards)
	}
	fmt.Println("Slots:")
	for _, slot := range s.Slots {
		o.printSlot(slot)
	}
	if r.Synergy.SynergyTitle != "" {
		fmt.Printf("Synergy: %s\n", r.Synergy.SynergyTitle)
	}
}

func (o *Output) printSlot(s Slot) {
	if s.FactionID == nil {
		fmt.Printf("  [%d] empty\n", s.SlotNumber)
		return
	}
	next := ""
	if s.NextGeneration != nil {
		next = " next " + s.NextGeneration.Format(time.RFC3339)
	}
	fmt.Printf("  [%d] %s%s\n", s.SlotNumber, *s.FactionID, next)
}

func (o *Output) printCards(cards []Card) {
	if len(cards) == 0 {
		fmt.Println("No cards")
		return
	}
	for _, c := range cards {
		lock := ""
		if c.IsLocked {
			lock = " [locked]"
		}
		fmt.Printf("%s  %-24s %-9s Lv%-2d power %d%s\n", c.ID, c.Name, c.Rarity, c.Level, c.Stats.TotalPower, lock)
	}
}

func (o *Output) printFactions(l FactionList) {
	for _, f := range l.Factions {
		state := "locked"
		switch {
		case f.Placed:
			state = "placed"
		case f.Unlocked:
			state = "unlocked"
		}
		fmt.Printf("%-12s %-24s %-10s cost %-5d every %dm  %s\n", f.ID, f.Name, f.Category, f.UnlockCost, f.GenerationMinutes, state)
	}
}

func (o *Output) printSession(s PvPSession) {
	fmt.Printf("State: %s\n", s.State)
	if s.Mode != "" {
		fmt.Printf("Mode: %s  Genre: %s  Live: %s\n", s.Mode, s.Genre, yesNo(s.Live))
	}
	if s.Match != nil {
		o.printMatch(*s.Match)
	}
	if s.Outcome != nil {
		fmt.Printf("Outcome: %s  rating %+d -> %d  +%d coins  +%d xp\n",
			s.Outcome.Outcome, s.Outcome.RatingDelta, s.Outcome.NewRating, s.Outcome.Coins, s.Outcome.Experience)
	}
	if s.Error != "" {
		fmt.Printf("Error: %s\n", s.Error)
	}
}

func (o *Output) printMatch(m Match) {
	fmt.Printf("Match %s (%s, %s/%s)\n", m.ID, m.Status, m.Mode, m.Genre)
	fmt.Printf("  %s (%d) vs %s (%d)\n", m.Player1.Name, m.Player1.Rating, m.Player2.Name, m.Player2.Rating)
	if m.Result == nil {
		return
	}
	for _, r := range m.Result.Rounds {
		fmt.Printf("  round %d: %d vs %d -> %s\n", r.Round, r.Power1, r.Power2, r.Winner)
	}
	fmt.Printf("  result: %d-%d %s\n", m.Result.Wins1, m.Result.Wins2, m.Result.Outcome)
}

func (o *Output) printRankings(r Rankings) {
	fmt.Printf("Season %d\n", r.Season)
	if len(r.Entries) == 0 {
		fmt.Println("No ranked players")
		return
	}
	for _, e := range r.Entries {
		fmt.Printf("%4d  %-24s %5d  Lv%-3d %d-%d\n", e.Rank, e.PlayerName, e.Rating, e.Level, e.Wins, e.Losses)
	}
}

func (o *Output) printStanding(s Standing) {
	if s.Ranked {
		fmt.Printf("Rank: %d\n", s.Entry.Rank)
	} else {
		fmt.Println("Rank: unranked")
	}
	fmt.Printf("Rating: %d\n", s.Entry.Rating)
	fmt.Printf("Tier: %s\n", s.Tier.Tier)
	if s.Tier.NextTier != "" {
		fmt.Printf("Next tier: %s in %d\n", s.Tier.NextTier, s.Tier.RatingToNextTier)
	}
	if s.Reward.Title != "" || s.Reward.Coins > 0 {
		fmt.Printf("Season reward: %s %d coins %d cards\n", s.Reward.Title, s.Reward.Coins, s.Reward.Cards)
	}
}

func (o *Output) printMission(m Mission) {
	state := fmt.Sprintf("%d/%d", m.Progress, m.Target)
	switch {
	case m.Claimed:
		state = "claimed"
	case m.Completed:
		state = "ready"
	}
	fmt.Printf("%-16s %-32s %-8s reward %d\n", m.ID, m.Title, state, m.Reward)
}
