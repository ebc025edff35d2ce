package response

import (
	"time"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/session"
)

// Health is the health check response
type Health struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

// Player represents a player in API responses
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"is_host"`
	JoinedAt time.Time `json:"joined_at"`
}

// BuzzResult represents a ranked buzz
type BuzzResult struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Time       float64 `json:"time"`
}

// BuzzResultFromModel converts model.BuzzResult
func BuzzResultFromModel(r *model.BuzzResult) BuzzResult {
	return BuzzResult{
		PlayerID:   string(r.PlayerID),
		PlayerName: r.PlayerName,
		Time:       r.ElapsedTime,
	}
}

// Room represents a room in API responses
type Room struct {
	Code       string       `json:"code"`
	HostName   string       `json:"host_name"`
	Active     bool         `json:"active"`
	CreatedAt  time.Time    `json:"created_at"`
	Released   bool         `json:"released"`
	ReleasedAt *time.Time   `json:"released_at,omitempty"`
	Players    []Player     `json:"players"`
	Results    []BuzzResult `json:"results"`
}

// RoomFromSnapshot converts a session.RoomSnapshot.
// Results keep the snapshot's fastest-first order.
func RoomFromSnapshot(snap *session.RoomSnapshot) Room {
	players := make([]Player, len(snap.Players))
	for i, p := range snap.Players {
		players[i] = Player{
			ID:       string(p.ConnectionID),
			Name:     p.Name,
			IsHost:   p.ConnectionID == snap.Room.HostID,
			JoinedAt: p.JoinedAt,
		}
	}

	results := make([]BuzzResult, len(snap.Results))
	for i, r := range snap.Results {
		results[i] = BuzzResultFromModel(r)
	}

	return Room{
		Code:       string(snap.Room.Code),
		HostName:   snap.Room.HostName,
		Active:     snap.Room.Active,
		CreatedAt:  snap.Room.CreatedAt,
		Released:   snap.Room.IsReleased(),
		ReleasedAt: snap.Room.ReleasedAt,
		Players:    players,
		Results:    results,
	}
}
