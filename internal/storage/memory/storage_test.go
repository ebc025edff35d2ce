package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		Code:      "K3P9Q2",
		HostID:    "conn-1",
		HostName:  "Alice",
		Active:    true,
		CreatedAt: time.Now(),
	}

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Equal(room.HostID, retrieved.HostID)
	s.Equal(room.HostName, retrieved.HostName)
	s.True(retrieved.Active)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestGetRoomReturnsCopy() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "K3P9Q2", Active: true})

	retrieved, _ := s.storage.GetRoom(s.ctx, "K3P9Q2")
	retrieved.Active = false

	again, _ := s.storage.GetRoom(s.ctx, "K3P9Q2")
	s.True(again.Active)
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

func (s *StorageSuite) TestDeleteRoomRemovesResults() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "K3P9Q2"})
	_ = s.storage.AppendBuzzResult(s.ctx, &model.BuzzResult{RoomCode: "K3P9Q2", PlayerID: "p1"})

	err := s.storage.DeleteRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "K3P9Q2")
	s.ErrorIs(err, model.ErrRoomNotFound)
	results, err := s.storage.GetBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *StorageSuite) TestListRooms() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "AAAAAA"})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "BBBBBB"})

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 2)
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{ConnectionID: "conn-1", Name: "Alice", RoomCode: "K3P9Q2"}

	err := s.storage.SavePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.Name)
	s.Equal(model.RoomCode("K3P9Q2"), retrieved.RoomCode)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGetPlayersByRoomKeepsInsertionOrder() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "c", Name: "Carol", RoomCode: "K3P9Q2"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "a", Name: "Alice", RoomCode: "K3P9Q2"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "b", Name: "Bob", RoomCode: "OTHER2"})

	players, err := s.storage.GetPlayersByRoom(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(model.ConnectionID("c"), players[0].ConnectionID)
	s.Equal(model.ConnectionID("a"), players[1].ConnectionID)
}

func (s *StorageSuite) TestSavePlayerOverwriteMovesRoom() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "a", Name: "Alice", RoomCode: "ROOM22"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ConnectionID: "a", Name: "Alice", RoomCode: "ROOM33"})

	old, _ := s.storage.GetPlayersByRoom(s.ctx, "ROOM22")
	s.Empty(old)
	moved, _ := s.storage.GetPlayersByRoom(s.ctx, "ROOM33")
	s.Len(moved, 1)
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
	_ = s.storage.AppendBuzzResult(s.ctx, &model.BuzzResult{RoomCode: "K3P9Q2", PlayerID: "slow", ElapsedTime: 2})
	_ = s.storage.AppendBuzzResult(s.ctx, &model.BuzzResult{RoomCode: "K3P9Q2", PlayerID: "fast", ElapsedTime: 1})

	results, err := s.storage.GetBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(model.ConnectionID("slow"), results[0].PlayerID)
	s.Equal(model.ConnectionID("fast"), results[1].PlayerID)
}

func (s *StorageSuite) TestGetBuzzResultsEmptyRoom() {
	results, err := s.storage.GetBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.NotNil(results)
	s.Empty(results)
}

func (s *StorageSuite) TestClearBuzzResults() {
	cleared, err := s.storage.ClearBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.False(cleared, "room without a result list has nothing to clear")

	_ = s.storage.AppendBuzzResult(s.ctx, &model.BuzzResult{RoomCode: "K3P9Q2", PlayerID: "p1"})

	cleared, err = s.storage.ClearBuzzResults(s.ctx, "K3P9Q2")
	s.Require().NoError(err)
	s.True(cleared)

	results, _ := s.storage.GetBuzzResults(s.ctx, "K3P9Q2")
	s.Empty(results)
}
