package synergy

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/model"
)

type EngineSuite struct {
	suite.Suite
	catalog *catalog.Catalog
	engine  *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.catalog = catalog.MustDefault()
	s.engine = New(s.catalog)
}

func slotsWith(ids ...model.FactionID) []model.FactionSlot {
	slots := model.EmptySlots()
	for i, id := range ids {
		id := id
		slots[i].FactionID = &id
	}
	return slots
}

func (s *EngineSuite) TestEmptySlots() {
	res := s.engine.Calculate(model.EmptySlots())
	s.Zero(res.TimeReduction)
	s.Zero(res.PowerBonus)
	s.Zero(res.FragmentBonus)
	s.Equal("No Synergy", res.SynergyTitle)
}

func (s *EngineSuite) TestSingleFaction() {
	res := s.engine.Calculate(slotsWith("lumen"))
	s.InDelta(0.05, res.TimeReduction, 1e-9)
	s.InDelta(0.02, res.PowerBonus, 1e-9)
	s.Empty(res.ActiveCategories)
}

func (s *EngineSuite) TestCategorySetBonus() {
	// lumen + cortex are both llm: 0.02 + 0.05 + 0.05 set bonus
	res := s.engine.Calculate(slotsWith("lumen", "cortex"))
	s.InDelta(0.12, res.PowerBonus, 1e-9)
	s.Equal([]model.FactionCategory{model.CategoryLLM}, res.ActiveCategories)
	s.Equal("LLM Alliance", res.SynergyTitle)

	// prism + nova are both image: 1 + 2 + 1 set bonus
	res = s.engine.Calculate(slotsWith("prism", "nova"))
	s.Equal(4, res.FragmentBonus)
	s.Equal("Image Alliance", res.SynergyTitle)
}

func (s *EngineSuite) TestTimeReductionClamped() {
	res := s.engine.Calculate(slotsWith("atlas", "nova", "vortex", "echo", "lumen"))
	s.LessOrEqual(res.TimeReduction, MaxTimeReduction)
	s.Less(res.TimeReduction, 1.0)
	s.GreaterOrEqual(res.PowerBonus, 0.0)
	s.LessOrEqual(res.PowerBonus, MaxPowerBonus)
}

func (s *EngineSuite) TestUnknownFactionIgnored() {
	res := s.engine.Calculate(slotsWith("ghost"))
	s.Zero(res.PowerBonus)
}

func (s *EngineSuite) TestCalculatePower() {
	card := &model.Card{Stats: model.NewCardStats(10, 20, 30, 40, 50)}
	balanced, _ := s.catalog.Weights(model.GenreBalanced)

	// 0.2 * 150 = 30
	s.Equal(30, BasePower(card.Stats, balanced))
	s.Equal(30, CalculatePower(card, balanced, 0))
	// floor(30 * 1.15) = 34
	s.Equal(34, CalculatePower(card, balanced, 0.15))
}

func (s *EngineSuite) TestCalculatePowerFloorsWeightedSum() {
	card := &model.Card{Stats: model.NewCardStats(11, 11, 11, 11, 12)}
	creative, _ := s.catalog.Weights(model.GenreCreative)

	// 0.4*11 + 0.15*(11+11+11+12) = 4.4 + 6.75 = 11.15
	s.Equal(11, BasePower(card.Stats, creative))
}
