package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/buzzrelay/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	cfg.PlayerTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	released := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	room := &model.Room{
		Code:       "K3P9Q2",
		HostID:     "conn-1",
		HostName:   "Alice",
		Active:     true,
		CreatedAt:  time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		ReleasedAt: &released,
	}

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Equal(room.HostID, retrieved.HostID)
	s.Equal(room.HostName, retrieved.HostName)
	s.Require().NotNil(retrieved.ReleasedAt)
	s.True(released.Equal(*retrieved.ReleasedAt))
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomTTL() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "K3P9Q2"})

	ttl := s.mini.TTL(roomKey("K3P9Q2"))
	s.True(ttl > 0, "Room should have TTL")
}

func (s *StorageSuite) TestRoomExists() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "K3P9Q2"})

	exists, err := s.storage.RoomExists(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.RoomExists(s.ctx, "NOPE22")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestListRoomsSkipsExpired() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "AAAAAA"})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "BBBBBB"})
	s.mini.Del(roomKey("BBBBBB"))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(model.RoomCode("AAAAAA"), rooms[0].Code)

	members, err := s.mini.SMembers(roomsIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"AAAAAA"}, members)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "K3P9Q2"})
	_ = s.storage.AppendBuzzResult(s.ctx, &model.BuzzResult{RoomCode: "K3P9Q2", PlayerID: "p1"})

	err := s.storage.DeleteRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "K3P9Q2")
	s.ErrorIs(err, model.ErrRoomNotFound)

	cleared, err := s.storage.ClearBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.False(cleared)
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	err := s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "conn-1", Name: "Alice", RoomCode: "K3P9Q2"})
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.Name)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGetPlayersByRoomKeepsInsertionOrder() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "c", Name: "Carol", RoomCode: "K3P9Q2"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "a", Name: "Alice", RoomCode: "K3P9Q2"})
	// Re-saving in the same room does not move the player
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "c", Name: "Carol B", RoomCode: "K3P9Q2"})

	players, err := s.storage.GetPlayersByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal("Carol B", players[0].Name)
	s.Equal("Alice", players[1].Name)
}

func (s *StorageSuite) TestGetPlayersByRoomEmpty() {
	players, err := s.storage.GetPlayersByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *StorageSuite) TestDeletePlayer() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "a", Name: "Alice", RoomCode: "K3P9Q2"})

	existed, err := s.storage.DeletePlayer(s.ctx, "a")
	s.Require().NoError(err)
	s.True(existed)

	existed, err = s.storage.DeletePlayer(s.ctx, "a")
	s.Require().NoError(err)
	s.False(existed)

	players, _ := s.storage.GetPlayersByRoom(s.ctx, "K3P9Q2")
	s.Empty(players)
}

// Buzz result tests

func (s *StorageSuite) TestAppendKeepsArrivalOrder() {
	_ = s.storage.AppendBuzzResult(s.ctx, &model.BuzzResult{RoomCode: "K3P9Q2", PlayerID: "slow", ElapsedTime: 2.5})
	_ = s.storage.AppendBuzzResult(s.ctx, &model.BuzzResult{RoomCode: "K3P9Q2", PlayerID: "fast", ElapsedTime: 0.5})

	results, err := s.storage.GetBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(model.ConnectionID("slow"), results[0].PlayerID)
	s.InDelta(0.5, results[1].ElapsedTime, 1e-9)
}

func (s *StorageSuite) TestClearBuzzResults() {
	cleared, err := s.storage.ClearBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.False(cleared)

	_ = s.storage.AppendBuzzResult(s.ctx, &model.BuzzResult{RoomCode: "K3P9Q2", PlayerID: "p1"})

	cleared, err = s.storage.ClearBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.True(cleared)

	// The room keeps its (now empty) ledger
	cleared, err = s.storage.ClearBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.True(cleared)

	results, err := s.storage.GetBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *StorageSuite) TestLedgerMarkerExpiresWithRoom() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "K3P9Q2"})
	_ = s.storage.AppendBuzzResult(s.ctx, &model.BuzzResult{RoomCode: "K3P9Q2", PlayerID: "p1"})
	s.True(s.mini.TTL(ledgerMarkerKey("K3P9Q2")) > 0, "Ledger marker should have TTL")

	// The room leaves through expiry, never through DeleteRoom
	s.mini.FastForward(2 * time.Hour)

	s.False(s.mini.Exists(roomKey("K3P9Q2")))
	s.False(s.mini.Exists(ledgerMarkerKey("K3P9Q2")))
	s.False(s.mini.Exists(buzzResultsKey("K3P9Q2")))

	cleared, err := s.storage.ClearBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.False(cleared)
}
