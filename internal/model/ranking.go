package model

import "time"

// RankingEntry is one row of the leaderboard
type RankingEntry struct {
	PlayerID   PlayerID `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Rank       int      `json:"rank"`
	Rating     int      `json:"rating"`
	Level      int      `json:"level"`
	Wins       int      `json:"wins"`
	Losses     int      `json:"losses"`
	WinRate    float64  `json:"winRate"`
}

// RankingSnapshot is a stored, fully ranked leaderboard
type RankingSnapshot struct {
	Season    int            `json:"season"`
	Entries   []RankingEntry `json:"entries"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// RankTier is a named rating band
type RankTier string

const (
	TierBronze   RankTier = "Bronze"
	TierSilver   RankTier = "Silver"
	TierGold     RankTier = "Gold"
	TierPlatinum RankTier = "Platinum"
	TierDiamond  RankTier = "Diamond"
	TierMaster   RankTier = "Master"
)

// TierInfo describes a rating's tier and the distance to the next one
type TierInfo struct {
	Tier             RankTier `json:"tier"`
	MinRating        int      `json:"minRating"`
	NextTier         RankTier `json:"nextTier,omitempty"`
	RatingToNextTier int      `json:"ratingToNextTier"`
}

// RankReward is the season-end reward for a leaderboard position
type RankReward struct {
	Title  string `json:"title,omitempty"`
	Coins  int    `json:"coins"`
	Cards  int    `json:"cards"`
	Season int    `json:"season"`
}

// IsEmpty reports whether the reward grants nothing
func (r RankReward) IsEmpty() bool {
	return r.Title == "" && r.Coins == 0 && r.Cards == 0
}
