package rooms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/buzzrelay/internal/dependencies/clock"
	"github.com/mcoot/buzzrelay/internal/dependencies/random"
	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/storage"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// maxCodeAttempts bounds the collision retry loop
	maxCodeAttempts = 16
)

// Directory owns room records: creation, lookup and buzz window state
type Directory struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewDirectory creates a new room Directory
func NewDirectory(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Directory {
	return &Directory{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "rooms")),
	}
}

// CreateRoom creates a new active room hosted by the given connection.
// Codes that collide with an existing room are regenerated.
func (d *Directory) CreateRoom(ctx context.Context, hostID model.ConnectionID, hostName string) (*model.Room, error) {
	code, err := d.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	room := &model.Room{
		Code:      code,
		HostID:    hostID,
		HostName:  hostName,
		Active:    true,
		CreatedAt: d.clock.Now(),
	}

	if err := d.storage.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("save room: %w", err)
	}

	d.logger.Info("room created",
		slog.String("room", string(code)),
		slog.String("host_id", string(hostID)))
	return room, nil
}

func (d *Directory) generateCode(ctx context.Context) (model.RoomCode, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := model.RoomCode(d.random.String(CodeLength, CodeAlphabet))
		exists, err := d.storage.RoomExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check room code: %w", err)
		}
		if !exists {
			return code, nil
		}
		d.logger.Warn("room code collision", slog.String("room", string(code)))
	}
	return "", model.ErrRoomCodeExhausted
}

// GetByCode retrieves a room by code
func (d *Directory) GetByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return d.storage.GetRoom(ctx, code)
}

// MarkReleased opens the buzz window, recording the release time
func (d *Directory) MarkReleased(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return d.update(ctx, code, func(room *model.Room) {
		now := d.clock.Now()
		room.ReleasedAt = &now
	})
}

// ClearRelease closes the buzz window
func (d *Directory) ClearRelease(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return d.update(ctx, code, func(room *model.Room) {
		room.ReleasedAt = nil
	})
}

// MarkOrphaned deactivates a room whose host connection has gone
func (d *Directory) MarkOrphaned(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return d.update(ctx, code, func(room *model.Room) {
		now := d.clock.Now()
		room.Active = false
		room.OrphanedAt = &now
	})
}

// SetOccupancy tracks when a room last became empty
func (d *Directory) SetOccupancy(ctx context.Context, code model.RoomCode, playerCount int) (*model.Room, error) {
	return d.update(ctx, code, func(room *model.Room) {
		switch {
		case playerCount > 0:
			room.EmptySince = nil
		case room.EmptySince == nil:
			now := d.clock.Now()
			room.EmptySince = &now
		}
	})
}

// Expired returns rooms that have been orphaned or empty for longer than ttl
func (d *Directory) Expired(ctx context.Context, ttl time.Duration) ([]*model.Room, error) {
	all, err := d.storage.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	now := d.clock.Now()
	var expired []*model.Room
	for _, room := range all {
		if since(room.OrphanedAt, now) >= ttl || since(room.EmptySince, now) >= ttl {
			expired = append(expired, room)
		}
	}
	return expired, nil
}

// Delete removes a room and its buzz results
func (d *Directory) Delete(ctx context.Context, code model.RoomCode) error {
	if err := d.storage.DeleteRoom(ctx, code); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	d.logger.Info("room deleted", slog.String("room", string(code)))
	return nil
}

func (d *Directory) update(ctx context.Context, code model.RoomCode, mutate func(*model.Room)) (*model.Room, error) {
	room, err := d.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	mutate(room)
	if err := d.storage.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("save room: %w", err)
	}
	return room, nil
}

// since returns how long ago t was, or -1 if t is unset
func since(t *time.Time, now time.Time) time.Duration {
	if t == nil {
		return -1
	}
	return now.Sub(*t)
}
