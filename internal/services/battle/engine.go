// Package battle resolves five-round card battles.
package battle

import (
	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/services/synergy"
)

// Side is one participant's deck and synergy bonus
type Side struct {
	Deck         []model.Card
	SynergyBonus float64
}

// SideOf builds a Side from a match participant
func SideOf(p *model.PvPPlayer) Side {
	return Side{Deck: p.Deck, SynergyBonus: p.SynergyBonus}
}

// Engine resolves battles. It holds no randomness.
type Engine struct {
	catalog *catalog.Catalog
}

// New creates a new battle engine
func New(catalog *catalog.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// ValidateDeck returns copies of the selected cards, failing with ErrInvalidDeck
// unless the IDs name DeckSize distinct cards in the inventory
func ValidateDeck(state *model.GameState, ids []model.CardID) ([]model.Card, error) {
	if len(ids) != model.DeckSize {
		return nil, model.ErrInvalidDeck
	}
	seen := make(map[model.CardID]bool, len(ids))
	deck := make([]model.Card, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, model.ErrInvalidDeck
		}
		seen[id] = true
		card := state.FindCard(id)
		if card == nil {
			return nil, model.ErrInvalidDeck
		}
		deck = append(deck, *card)
	}
	return deck, nil
}

// Resolve plays up to MaxRounds rounds, stopping once a side reaches
// WinsRequired. Drawn rounds use up a round without scoring.
func (e *Engine) Resolve(mode model.BattleMode, genre model.Genre, side1, side2 Side) (*model.BattleResult, error) {
	strategy, err := StrategyFor(mode)
	if err != nil {
		return nil, err
	}
	weights, ok := e.catalog.Weights(genre)
	if !ok {
		return nil, model.ErrInvalidGenre
	}
	if len(side1.Deck) != model.DeckSize || len(side2.Deck) != model.DeckSize {
		return nil, model.ErrInvalidDeck
	}

	res := &model.BattleResult{}
	for round := 0; round < model.MaxRounds; round++ {
		if res.Wins1 >= model.WinsRequired || res.Wins2 >= model.WinsRequired {
			break
		}
		c1, c2 := &side1.Deck[round], &side2.Deck[round]
		p1 := synergy.CalculatePower(c1, weights, side1.SynergyBonus)
		p2 := synergy.CalculatePower(c2, weights, side2.SynergyBonus)

		winner := strategy.ResolveRound(p1, p2)
		switch winner {
		case model.RoundPlayer1:
			res.Wins1++
		case model.RoundPlayer2:
			res.Wins2++
		}
		res.Rounds = append(res.Rounds, model.RoundResult{
			Round:  round + 1,
			Card1:  c1.ID,
			Card2:  c2.ID,
			Power1: p1,
			Power2: p2,
			Winner: winner,
		})
	}

	switch {
	case res.Wins1 > res.Wins2:
		res.Outcome = model.OutcomeWin
	case res.Wins2 > res.Wins1:
		res.Outcome = model.OutcomeLoss
	default:
		res.Outcome = model.OutcomeDraw
	}
	return res, nil
}
