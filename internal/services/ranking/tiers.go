package ranking

import "github.com/mcoot/aicardgame-go/internal/model"

// tierBands lists tier floors in ascending order
var tierBands = []struct {
	tier model.RankTier
	min  int
}{
	{model.TierBronze, 0},
	{model.TierSilver, 1200},
	{model.TierGold, 1400},
	{model.TierPlatinum, 1600},
	{model.TierDiamond, 1800},
	{model.TierMaster, 2000},
}

// GetRankTier maps a rating to its tier and the distance to the next one
func GetRankTier(rating int) model.TierInfo {
	idx := 0
	for i, b := range tierBands {
		if rating >= b.min {
			idx = i
		}
	}
	info := model.TierInfo{Tier: tierBands[idx].tier, MinRating: tierBands[idx].min}
	if idx+1 < len(tierBands) {
		next := tierBands[idx+1]
		info.NextTier = next.tier
		info.RatingToNextTier = next.min - rating
	}
	return info
}

// rewardBand is a range of ranks sharing one reward
type rewardBand struct {
	from, to int
	title    string
	coins    int
	cards    int
}

var rewardBands = []rewardBand{
	{1, 1, "Grand Champion", 5000, 5},
	{2, 2, "Champion", 3000, 3},
	{3, 3, "Challenger", 2000, 2},
	{4, 10, "", 1000, 1},
	{11, 50, "", 500, 1},
	{51, 100, "", 200, 0},
}

// GetRewardForRank returns the season reward for a rank. Ranks outside
// the table get an empty reward.
func GetRewardForRank(rank, season int) model.RankReward {
	for _, b := range rewardBands {
		if rank >= b.from && rank <= b.to {
			return model.RankReward{Title: b.title, Coins: b.coins, Cards: b.cards, Season: season}
		}
	}
	return model.RankReward{Season: season}
}

// FindMyRank returns the entry for playerID
func FindMyRank(entries []model.RankingEntry, playerID model.PlayerID) (model.RankingEntry, bool) {
	for _, e := range entries {
		if e.PlayerID == playerID {
			return e, true
		}
	}
	return model.RankingEntry{}, false
}
