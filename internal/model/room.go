package model

import (
	"strings"
	"time"
)

// RoomCode is the human-readable identifier players use to join a room
type RoomCode string

// Room holds the metadata of a buzzer room
type Room struct {
	Code     RoomCode     `json:"code"`
	HostID   ConnectionID `json:"host_id"` // Never changes after creation
	HostName string       `json:"host_name"`
	// Active is false once the host connection has gone
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`

	// ReleasedAt is set while a buzz window is open
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	// OrphanedAt records when the host disconnected
	OrphanedAt *time.Time `json:"orphaned_at,omitempty"`
	// EmptySince records when the last player left
	EmptySince *time.Time `json:"empty_since,omitempty"`
}

// IsReleased reports whether buzzers are currently released
func (r *Room) IsReleased() bool {
	return r.ReleasedAt != nil
}

// Elapsed returns the time since buzzers were released, in seconds.
// Returns false if the buzz window is not open.
func (r *Room) Elapsed(now time.Time) (float64, bool) {
	if r.ReleasedAt == nil {
		return 0, false
	}
	d := now.Sub(*r.ReleasedAt)
	if d < 0 {
		d = 0
	}
	return d.Seconds(), true
}

// NormalizeRoomCode uppercases and trims a user-supplied room code
func NormalizeRoomCode(code string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(code)))
}
