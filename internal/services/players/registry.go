package players

import (
	"context"
	"fmt"

	"github.com/mcoot/buzzrelay/internal/dependencies/clock"
	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/storage"
)

// Registry maps connections to the players they represent
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
}

// NewRegistry creates a new player Registry
func NewRegistry(storage storage.Storage, clock clock.Clock) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
	}
}

// Add stores a player for the connection, replacing any previous one
func (r *Registry) Add(ctx context.Context, id model.ConnectionID, name string, code model.RoomCode) (*model.Player, error) {
	player := &model.Player{
		ConnectionID: id,
		Name:         name,
		RoomCode:     code,
		JoinedAt:     r.clock.Now(),
	}
	if err := r.storage.SavePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("save player: %w", err)
	}
	return player, nil
}

// ListByRoom returns the players in a room.
// Order follows insertion but callers should not depend on it after removals.
func (r *Registry) ListByRoom(ctx context.Context, code model.RoomCode) ([]*model.Player, error) {
	return r.storage.GetPlayersByRoom(ctx, code)
}

// GetByConnection retrieves the player for a connection
func (r *Registry) GetByConnection(ctx context.Context, id model.ConnectionID) (*model.Player, error) {
	return r.storage.GetPlayer(ctx, id)
}

// Remove deletes the player for a connection, reporting whether one existed
func (r *Registry) Remove(ctx context.Context, id model.ConnectionID) (bool, error) {
	return r.storage.DeletePlayer(ctx, id)
}

// RemoveByRoom deletes every player in a room and returns them
func (r *Registry) RemoveByRoom(ctx context.Context, code model.RoomCode) ([]*model.Player, error) {
	players, err := r.storage.GetPlayersByRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if _, err := r.storage.DeletePlayer(ctx, p.ConnectionID); err != nil {
			return nil, fmt.Errorf("delete player %s: %w", p.ConnectionID, err)
		}
	}
	return players, nil
}
