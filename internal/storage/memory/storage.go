package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms       map[model.RoomCode]*model.Room
	players     map[model.ConnectionID]*model.Player
	roomPlayers map[model.RoomCode][]model.ConnectionID // insertion order
	buzzResults map[model.RoomCode][]*model.BuzzResult
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:       make(map[model.RoomCode]*model.Room),
		players:     make(map[model.ConnectionID]*model.Player),
		roomPlayers: make(map[model.RoomCode][]model.ConnectionID),
		buzzResults: make(map[model.RoomCode][]*model.BuzzResult),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *room
	s.rooms[room.Code] = &r
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	r := *room
	return &r, nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		r := *room
		rooms = append(rooms, &r)
	}
	return rooms, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	delete(s.buzzResults, code)
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Overwriting a player in the same room keeps its position
	existing, ok := s.players[player.ConnectionID]
	switch {
	case !ok:
		s.roomPlayers[player.RoomCode] = append(s.roomPlayers[player.RoomCode], player.ConnectionID)
	case existing.RoomCode != player.RoomCode:
		s.removeFromRoomIndex(existing.RoomCode, existing.ConnectionID)
		s.roomPlayers[player.RoomCode] = append(s.roomPlayers[player.RoomCode], player.ConnectionID)
	}

	p := *player
	s.players[player.ConnectionID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.ConnectionID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) GetPlayersByRoom(ctx context.Context, code model.RoomCode) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.roomPlayers[code]
	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		if player, ok := s.players[id]; ok {
			p := *player
			players = append(players, &p)
		}
	}
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.ConnectionID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return false, nil
	}
	s.removeFromRoomIndex(player.RoomCode, id)
	delete(s.players, id)
	return true, nil
}

func (s *Storage) removeFromRoomIndex(code model.RoomCode, id model.ConnectionID) {
	ids := slices.DeleteFunc(s.roomPlayers[code], func(other model.ConnectionID) bool {
		return other == id
	})
	if len(ids) == 0 {
		delete(s.roomPlayers, code)
		return
	}
	s.roomPlayers[code] = ids
}

// Buzz result operations

func (s *Storage) AppendBuzzResult(ctx context.Context, result *model.BuzzResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *result
	s.buzzResults[result.RoomCode] = append(s.buzzResults[result.RoomCode], &r)
	return nil
}

func (s *Storage) GetBuzzResults(ctx context.Context, code model.RoomCode) ([]*model.BuzzResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.buzzResults[code]
	results := make([]*model.BuzzResult, len(stored))
	for i, result := range stored {
		r := *result
		results[i] = &r
	}
	return results, nil
}

func (s *Storage) ClearBuzzResults(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buzzResults[code]; !ok {
		return false, nil
	}
	s.buzzResults[code] = []*model.BuzzResult{}
	return true, nil
}
