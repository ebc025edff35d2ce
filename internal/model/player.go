package model

import "time"

// Player is a participant in a room, keyed by the connection it arrived on.
// A room's host is also a player.
type Player struct {
	ConnectionID ConnectionID `json:"connection_id"`
	Name         string       `json:"name"`
	RoomCode     RoomCode     `json:"room_code"`
	JoinedAt     time.Time    `json:"joined_at"`
}
