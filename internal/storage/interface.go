package storage

import (
	"context"

	"github.com/mcoot/buzzrelay/internal/model"
)

// Storage defines the interface for room, player and buzz result persistence.
// Implementations return model.Err*NotFound sentinels for missing records.
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.ConnectionID) (*model.Player, error)
	// GetPlayersByRoom returns players in the order they were added
	GetPlayersByRoom(ctx context.Context, code model.RoomCode) ([]*model.Player, error)
	// DeletePlayer reports whether a player existed
	DeletePlayer(ctx context.Context, id model.ConnectionID) (bool, error)

	// Buzz result operations
	// AppendBuzzResult stores a result after all earlier results for the room
	AppendBuzzResult(ctx context.Context, result *model.BuzzResult) error
	// GetBuzzResults returns a room's results in arrival order
	GetBuzzResults(ctx context.Context, code model.RoomCode) ([]*model.BuzzResult, error)
	// ClearBuzzResults empties a room's results, reporting whether the room had a result list
	ClearBuzzResults(ctx context.Context, code model.RoomCode) (bool, error)
}
