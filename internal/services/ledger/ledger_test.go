package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/storage/memory"
)

type LedgerSuite struct {
	suite.Suite
	ledger *Ledger
	ctx    context.Context
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	clk := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ledger = New(memory.New(), clk)
	s.ctx = context.Background()
}

func (s *LedgerSuite) append(playerID string, elapsed float64) {
	_, recorded, err := s.ledger.Append(s.ctx, "K3P9Q2", model.ConnectionID(playerID), playerID, elapsed)
	s.Require().NoError(err)
	s.Require().True(recorded)
}

func (s *LedgerSuite) playerIDs(results []*model.BuzzResult) []model.ConnectionID {
	ids := make([]model.ConnectionID, len(results))
	for i, r := range results {
		ids[i] = r.PlayerID
	}
	return ids
}

func (s *LedgerSuite) TestListSortedByElapsedTime() {
	s.append("c", 0.9)
	s.append("a", 0.1)
	s.append("b", 0.5)

	results, err := s.ledger.ListByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Equal([]model.ConnectionID{"a", "b", "c"}, s.playerIDs(results))
}

func (s *LedgerSuite) TestTiesKeepArrivalOrder() {
	s.append("first", 0.5)
	s.append("fast", 0.2)
	s.append("second", 0.5)
	s.append("third", 0.5)

	results, err := s.ledger.ListByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Equal([]model.ConnectionID{"fast", "first", "second", "third"}, s.playerIDs(results))
}

func (s *LedgerSuite) TestListAlwaysNonDecreasing() {
	times := []float64{0.7, 0.3, 1.2, 0.3, 0.05, 2.0, 0.7, 0.01}
	for i, t := range times {
		s.append(string(rune('a'+i)), t)
	}

	results, err := s.ledger.ListByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Require().Len(results, len(times))
	for i := 1; i < len(results); i++ {
		s.LessOrEqual(results[i-1].ElapsedTime, results[i].ElapsedTime)
	}
}

func (s *LedgerSuite) TestDuplicateBuzzReturnsFirstResult() {
	s.append("a", 0.42)

	result, recorded, err := s.ledger.Append(s.ctx, "K3P9Q2", "a", "a", 0.9)
	s.Require().NoError(err)
	s.False(recorded)
	s.InDelta(0.42, result.ElapsedTime, 1e-9)

	results, _ := s.ledger.ListByRoom(s.ctx, "K3P9Q2")
	s.Len(results, 1)
}

func (s *LedgerSuite) TestSamePlayerCanBuzzAfterClear() {
	s.append("a", 0.42)
	_, _ = s.ledger.ClearByRoom(s.ctx, "K3P9Q2")

	_, recorded, err := s.ledger.Append(s.ctx, "K3P9Q2", "a", "a", 0.8)
	s.Require().NoError(err)
	s.True(recorded)
}

func (s *LedgerSuite) TestNegativeElapsedClampedToZero() {
	result, _, err := s.ledger.Append(s.ctx, "K3P9Q2", "a", "a", -1)
	s.Require().NoError(err)
	s.Zero(result.ElapsedTime)
}

func (s *LedgerSuite) TestListEmptyRoom() {
	results, err := s.ledger.ListByRoom(s.ctx, "NOPE22")
	s.Require().NoError(err)
	s.NotNil(results)
	s.Empty(results)
}

func (s *LedgerSuite) TestClearThenListIsEmpty() {
	s.append("a", 0.1)
	s.append("b", 0.2)

	cleared, err := s.ledger.ClearByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.True(cleared)

	results, err := s.ledger.ListByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *LedgerSuite) TestClearRoomWithoutLedger() {
	cleared, err := s.ledger.ClearByRoom(s.ctx, "NOPE22")
	s.Require().NoError(err)
	s.False(cleared)
}
