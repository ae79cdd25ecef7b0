package storage

import (
	"sort"

	"github.com/mcoot/aicardgame-go/internal/model"
)

// RankOpponents filters candidates to those in the same mode and genre as
// self within window, ordered by rating distance, then by queue time
func RankOpponents(self *model.QueueEntry, candidates []*model.QueueEntry, window int) []*model.QueueEntry {
	var eligible []*model.QueueEntry
	for _, c := range candidates {
		if c.Player.ID == self.Player.ID || c.Mode != self.Mode || c.Genre != self.Genre {
			continue
		}
		if abs(c.Player.Rating-self.Player.Rating) > window {
			continue
		}
		eligible = append(eligible, c)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		di := abs(eligible[i].Player.Rating - self.Player.Rating)
		dj := abs(eligible[j].Player.Rating - self.Player.Rating)
		if di != dj {
			return di < dj
		}
		return eligible[i].JoinedAt.Before(eligible[j].JoinedAt)
	})
	return eligible
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
