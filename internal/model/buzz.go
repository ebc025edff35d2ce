package model

import "time"

// BuzzResult is a single player's buzz in a room's current window
type BuzzResult struct {
	RoomCode   RoomCode     `json:"room_code"`
	PlayerID   ConnectionID `json:"player_id"`
	PlayerName string       `json:"player_name"`
	// ElapsedTime is seconds since release, measured by the server
	ElapsedTime float64   `json:"elapsed_time"`
	RecordedAt  time.Time `json:"recorded_at"`
}
