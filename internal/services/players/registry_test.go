package players

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/storage/memory"
)

type RegistrySuite struct {
	suite.Suite
	clock    *clockwork.FakeClock
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = NewRegistry(memory.New(), s.clock)
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestAddAndGet() {
	player, err := s.registry.Add(s.ctx, "conn-1", "Alice", "K3P9Q2")
	s.Require().NoError(err)
	s.Equal(s.clock.Now(), player.JoinedAt)

	retrieved, err := s.registry.GetByConnection(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.Name)
	s.Equal(model.RoomCode("K3P9Q2"), retrieved.RoomCode)
}

func (s *RegistrySuite) TestAddOverwrites() {
	_, _ = s.registry.Add(s.ctx, "conn-1", "Alice", "K3P9Q2")
	_, _ = s.registry.Add(s.ctx, "conn-1", "Alicia", "K3P9Q2")

	players, err := s.registry.ListByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("Alicia", players[0].Name)
}

func (s *RegistrySuite) TestGetByConnectionNotFound() {
	_, err := s.registry.GetByConnection(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *RegistrySuite) TestListByRoomIsScoped() {
	_, _ = s.registry.Add(s.ctx, "a", "Alice", "K3P9Q2")
	_, _ = s.registry.Add(s.ctx, "b", "Bob", "K3P9Q2")
	_, _ = s.registry.Add(s.ctx, "c", "Carol", "OTHER2")

	players, err := s.registry.ListByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Len(players, 2)
}

func (s *RegistrySuite) TestRemove() {
	_, _ = s.registry.Add(s.ctx, "a", "Alice", "K3P9Q2")

	removed, err := s.registry.Remove(s.ctx, "a")
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.registry.Remove(s.ctx, "a")
	s.Require().NoError(err)
	s.False(removed)
}

func (s *RegistrySuite) TestRemoveByRoom() {
	_, _ = s.registry.Add(s.ctx, "a", "Alice", "K3P9Q2")
	_, _ = s.registry.Add(s.ctx, "b", "Bob", "K3P9Q2")
	_, _ = s.registry.Add(s.ctx, "c", "Carol", "OTHER2")

	removed, err := s.registry.RemoveByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Len(removed, 2)

	left, _ := s.registry.ListByRoom(s.ctx, "K3P9Q2")
	s.Empty(left)
	other, _ := s.registry.ListByRoom(s.ctx, "OTHER2")
	s.Len(other, 1)
}
