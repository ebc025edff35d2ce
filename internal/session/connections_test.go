package session

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/buzzrelay/internal/model"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = NewRegistry()
}

func (s *RegistrySuite) TestRegisterIssuesUniqueUnboundIDs() {
	a := s.registry.Register(&fakePeer{})
	b := s.registry.Register(&fakePeer{})
	s.NotEqual(a, b)

	conn, err := s.registry.Lookup(a)
	s.Require().NoError(err)
	s.Equal(model.ConnectionUnbound, conn.State)
	s.Empty(conn.RoomCode)
	s.False(conn.IsHost)
}

func (s *RegistrySuite) TestRegisterRetriesOnIDCollision() {
	ids := []model.ConnectionID{"same", "same", "other"}
	s.registry.newID = func() model.ConnectionID {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	s.Equal(model.ConnectionID("same"), s.registry.Register(&fakePeer{}))
	s.Equal(model.ConnectionID("other"), s.registry.Register(&fakePeer{}))
}

func (s *RegistrySuite) TestBindOnlyOnce() {
	id := s.registry.Register(&fakePeer{})
	s.Require().NoError(s.registry.Bind(id, "K3P9Q2", true))

	conn, _ := s.registry.Lookup(id)
	s.Equal(model.ConnectionBound, conn.State)
	s.Equal(model.RoomCode("K3P9Q2"), conn.RoomCode)
	s.True(conn.IsHost)

	s.ErrorIs(s.registry.Bind(id, "OTHER2", false), model.ErrAlreadyBound)
	conn, _ = s.registry.Lookup(id)
	s.Equal(model.RoomCode("K3P9Q2"), conn.RoomCode)
}

func (s *RegistrySuite) TestBindUnknownConnection() {
	s.ErrorIs(s.registry.Bind("missing", "K3P9Q2", false), model.ErrConnectionNotFound)
}

func (s *RegistrySuite) TestLookupAfterUnregister() {
	id := s.registry.Register(&fakePeer{})
	_, ok := s.registry.Unregister(id)
	s.True(ok)

	_, err := s.registry.Lookup(id)
	s.ErrorIs(err, model.ErrConnectionNotFound)

	_, ok = s.registry.Unregister(id)
	s.False(ok)
}

func (s *RegistrySuite) TestRoomIndex() {
	host := s.registry.Register(&fakePeer{})
	player := s.registry.Register(&fakePeer{})
	elsewhere := s.registry.Register(&fakePeer{})
	unbound := s.registry.Register(&fakePeer{})
	s.Require().NoError(s.registry.Bind(host, "K3P9Q2", true))
	s.Require().NoError(s.registry.Bind(player, "K3P9Q2", false))
	s.Require().NoError(s.registry.Bind(elsewhere, "OTHER2", true))

	s.Equal([]model.ConnectionID{host, player}, s.registry.InRoom("K3P9Q2"))
	s.Equal([]model.ConnectionID{host}, s.registry.HostsOf("K3P9Q2"))
	s.NotContains(s.registry.InRoom("K3P9Q2"), unbound)
	s.Equal(2, s.registry.RoomCount())
	s.Equal(4, s.registry.Count())

	s.registry.Unregister(player)
	s.Equal([]model.ConnectionID{host}, s.registry.InRoom("K3P9Q2"))
}

func (s *RegistrySuite) TestEvictRemovesFromFanOut() {
	host := s.registry.Register(&fakePeer{})
	player := s.registry.Register(&fakePeer{})
	s.Require().NoError(s.registry.Bind(host, "K3P9Q2", true))
	s.Require().NoError(s.registry.Bind(player, "K3P9Q2", false))

	s.registry.Evict(player)

	s.Equal([]model.ConnectionID{host}, s.registry.InRoom("K3P9Q2"))
	conn, err := s.registry.Lookup(player)
	s.Require().NoError(err)
	s.Equal(model.ConnectionEvicted, conn.State)
	s.ErrorIs(s.registry.Bind(player, "K3P9Q2", false), model.ErrEvicted)

	_, ok := s.registry.Peer(player)
	s.True(ok)
}

func (s *RegistrySuite) TestEmptyRoomIsDropped() {
	host := s.registry.Register(&fakePeer{})
	s.Require().NoError(s.registry.Bind(host, "K3P9Q2", true))
	s.registry.Evict(host)

	s.Empty(s.registry.InRoom("K3P9Q2"))
	s.Zero(s.registry.RoomCount())
}
