package redis

import (
	"fmt"

	"github.com/mcoot/buzzrelay/internal/model"
)

// Key prefix for all buzzer data
const keyPrefix = "buzz"

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// roomsIndexKey returns the Redis key for the SET of all room codes
func roomsIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// playerKey returns the Redis key for a Player
func playerKey(id model.ConnectionID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// roomPlayersIndexKey returns the Redis key for the LIST of players in a room
func roomPlayersIndexKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:idx:room_players:%s", keyPrefix, code)
}

// buzzResultsKey returns the Redis key for the LIST of a room's buzz results
func buzzResultsKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:results:%s", keyPrefix, code)
}

// ledgerMarkerKey returns the Redis key marking that a room has had a result list.
// It expires with the room so abandoned rooms leave nothing behind.
func ledgerMarkerKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:ledger:%s", keyPrefix, code)
}
