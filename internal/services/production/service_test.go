package production

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/dependencies/mocks"
	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/notify"
	"github.com/mcoot/aicardgame-go/internal/services/cards"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/synergy"
	"github.com/mcoot/aicardgame-go/internal/storage/memory"
	"github.com/mcoot/aicardgame-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	events  *notify.Recorder
	state   *gamestate.Service
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	cat := catalog.MustDefault()
	s.clock = mocks.NewMockClock(testutil.Epoch)
	s.random = mocks.NewMockRandom()
	s.events = notify.NewRecorder()
	s.state = gamestate.New(memory.New(), cat, s.clock, testutil.NopLogger())
	s.service = New(s.state, cat, synergy.New(cat), cards.NewGenerator(cat, s.clock, s.random), s.clock, s.events, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestUnlockFactionCharges() {
	state, err := s.service.UnlockFaction(s.ctx, "alice", "cortex")
	s.Require().NoError(err)
	s.Equal(1500, state.Tokens)
	s.True(state.HasFaction("cortex"))

	_, err = s.service.UnlockFaction(s.ctx, "alice", "cortex")
	s.ErrorIs(err, model.ErrAlreadyUnlocked)

	_, err = s.service.UnlockFaction(s.ctx, "alice", "ghost")
	s.ErrorIs(err, model.ErrUnknownFaction)
}

func (s *ServiceSuite) TestUnlockFactionInsufficientFunds() {
	_, err := s.service.UnlockFaction(s.ctx, "alice", "atlas")
	s.ErrorIs(err, model.ErrInsufficientFunds)

	state, err := s.state.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(state.HasFaction("atlas"))
	s.Equal(2000, state.Tokens)
}

func (s *ServiceSuite) TestPlaceFactionFirstEmpty() {
	slot, err := s.service.PlaceFaction(s.ctx, "alice", "lumen", 0)
	s.Require().NoError(err)
	s.Equal(1, slot.SlotNumber)
	// 30 minutes reduced by lumen's own 5%
	s.Equal(testutil.Epoch.Add(time.Duration(float64(30*time.Minute)*(1-0.05))), *slot.NextGeneration)

	_, err = s.service.PlaceFaction(s.ctx, "alice", "lumen", 2)
	s.ErrorIs(err, model.ErrFactionAlreadyPlaced)
}

func (s *ServiceSuite) TestPlaceFactionGuards() {
	_, err := s.service.PlaceFaction(s.ctx, "alice", "cortex", 1)
	s.ErrorIs(err, model.ErrFactionLocked)

	_, err = s.service.PlaceFaction(s.ctx, "alice", "lumen", 9)
	s.ErrorIs(err, model.ErrInvalidSlot)

	_, err = s.service.UnlockFaction(s.ctx, "alice", "cortex")
	s.Require().NoError(err)
	_, err = s.service.PlaceFaction(s.ctx, "alice", "lumen", 3)
	s.Require().NoError(err)
	_, err = s.service.PlaceFaction(s.ctx, "alice", "cortex", 3)
	s.ErrorIs(err, model.ErrSlotOccupied)
}

func (s *ServiceSuite) TestNoEmptySlot() {
	_, err := s.state.Mutate(s.ctx, "alice", func(state *model.GameState) error {
		for i := range state.Slots {
			id := model.FactionID("filler")
			state.Slots[i].FactionID = &id
		}
		return nil
	})
	s.Require().NoError(err)

	_, err = s.service.PlaceFaction(s.ctx, "alice", "lumen", 0)
	s.ErrorIs(err, model.ErrNoEmptySlot)
}

func (s *ServiceSuite) TestClaimBeforeReady() {
	_, err := s.service.PlaceFaction(s.ctx, "alice", "lumen", 1)
	s.Require().NoError(err)

	s.clock.Advance(10 * time.Minute)
	_, err = s.service.Claim(s.ctx, "alice", 1)
	s.ErrorIs(err, model.ErrNotReady)
}

func (s *ServiceSuite) TestClaimGeneratesCard() {
	_, err := s.service.PlaceFaction(s.ctx, "alice", "lumen", 1)
	s.Require().NoError(err)
	s.clock.Advance(30 * time.Minute)

	res, err := s.service.Claim(s.ctx, "alice", 1)
	s.Require().NoError(err)
	s.Equal(model.FactionID("lumen"), res.Card.FactionID)
	s.Equal(1, res.Fragments)
	s.Equal(s.clock.Now(), *res.Slot.LastGeneration)

	state, err := s.state.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(state.Inventory, 1)
	s.Equal(1, state.Fragments)
	s.Len(s.events.OfType("alice", model.EventCardGenerated), 1)

	// Timer restarted
	_, err = s.service.Claim(s.ctx, "alice", 1)
	s.ErrorIs(err, model.ErrNotReady)
}

func (s *ServiceSuite) TestClaimEmptySlot() {
	_, err := s.service.Claim(s.ctx, "alice", 2)
	s.ErrorIs(err, model.ErrSlotEmpty)

	err = s.service.ClearSlot(s.ctx, "alice", 2)
	s.ErrorIs(err, model.ErrSlotEmpty)
}

func (s *ServiceSuite) TestClearSlot() {
	_, err := s.service.PlaceFaction(s.ctx, "alice", "lumen", 2)
	s.Require().NoError(err)
	s.Require().NoError(s.service.ClearSlot(s.ctx, "alice", 2))

	state, err := s.state.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(state.Slot(2).IsEmpty())
	s.Nil(state.Slot(2).NextGeneration)
}

func (s *ServiceSuite) TestClaimBonusCards() {
	_, _, err := s.state.AddExperience(s.ctx, "alice", 400)
	s.Require().NoError(err)

	granted, err := s.service.ClaimBonusCards(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(granted, 1)

	_, err = s.service.ClaimBonusCards(s.ctx, "alice")
	s.ErrorIs(err, model.ErrNotReady)
}
