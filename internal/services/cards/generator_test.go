package cards

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/mocks"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/testutil"
)

type GeneratorSuite struct {
	suite.Suite
	catalog   *catalog.Catalog
	random    *mocks.MockRandom
	generator *Generator
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorSuite))
}

func (s *GeneratorSuite) SetupTest() {
	s.catalog = catalog.MustDefault()
	s.random = mocks.NewMockRandom()
	s.generator = NewGenerator(s.catalog, mocks.NewMockClock(testutil.Epoch), s.random)
}

func (s *GeneratorSuite) TestRollRarityUsesWeights() {
	// Weights are 60/25/10/4/1
	s.random.QueueIntn(0, 59, 60, 84, 85, 95, 99)
	s.Equal(model.RarityCommon, s.generator.RollRarity())
	s.Equal(model.RarityCommon, s.generator.RollRarity())
	s.Equal(model.RarityRare, s.generator.RollRarity())
	s.Equal(model.RarityRare, s.generator.RollRarity())
	s.Equal(model.RarityEpic, s.generator.RollRarity())
	s.Equal(model.RarityLegendary, s.generator.RollRarity())
	s.Equal(model.RarityMythic, s.generator.RollRarity())
}

func (s *GeneratorSuite) TestGenerateStaysInRange() {
	ref, ok := s.catalog.Template("lumen-scribe")
	s.Require().True(ok)

	// Between(10, 30) draws Intn(21)
	s.random.QueueIntn(0, 20, 5, 10, 100)
	card, err := s.generator.Generate("alice", ref, model.RarityCommon)
	s.Require().NoError(err)

	s.Equal(10, card.Stats.Creativity)
	s.Equal(30, card.Stats.Accuracy)
	s.Equal(15, card.Stats.Speed)
	s.Equal(20, card.Stats.Stability)
	s.Equal(30, card.Stats.Ethics)
	s.Equal(105, card.TotalPower())
	s.Equal(1, card.Level)
	s.Equal(model.FactionID("lumen"), card.FactionID)
	s.Equal(model.PlayerID("alice"), card.OwnerID)
	s.Equal(testutil.Epoch, card.AcquiredAt)
	s.NotEmpty(card.ID)
}

func (s *GeneratorSuite) TestFromFactionUnknown() {
	_, err := s.generator.FromFaction("alice", "nope")
	s.ErrorIs(err, model.ErrUnknownFaction)
}

func (s *GeneratorSuite) TestFromFactionUsesFactionTemplates() {
	card, err := s.generator.FromFaction("alice", "atlas")
	s.Require().NoError(err)
	s.Equal(model.FactionID("atlas"), card.FactionID)
}

func (s *GeneratorSuite) TestDeckMatchesTargetPower() {
	for _, target := range []int{0, 7, 425, 503, 575} {
		deck := s.generator.Deck("bot", target)
		s.Require().Len(deck, model.DeckSize)

		total := 0
		for _, c := range deck {
			s.GreaterOrEqual(c.Stats.Ethics, 0)
			total += c.TotalPower()
		}
		s.Equal(target, total)
	}
}

func (s *GeneratorSuite) TestDeckCardIDsAreDistinct() {
	deck := s.generator.Deck("bot", 500)
	seen := map[model.CardID]bool{}
	for _, c := range deck {
		s.False(seen[c.ID])
		seen[c.ID] = true
	}
}
