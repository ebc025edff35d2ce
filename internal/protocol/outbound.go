package protocol

import (
	"encoding/json"
	"time"

	"github.com/mcoot/buzzrelay/internal/model"
)

// Outbound message types
const (
	TypeConnectionEstablished Type = "connection_established"
	TypeRoomCreated           Type = "room_created"
	TypeRoomJoined            Type = "room_joined"
	TypePlayerJoined          Type = "player_joined"
	TypePlayerLeft            Type = "player_left"
	TypePlayerKicked          Type = "player_kicked"
	TypeKickedFromRoom        Type = "kicked_from_room"
	TypeBuzzersReleased       Type = "buzzers_released"
	TypeBuzzersReset          Type = "buzzers_reset"
	TypeBuzzResults           Type = "buzz_results"
	TypeBuzzAcknowledged      Type = "buzz_acknowledged"
	TypeRoomClosed            Type = "room_closed"
	TypeError                 Type = "error"
)

// KickedMessage is the text sent to a kicked player
const KickedMessage = "You have been removed from the room by the host"

// Room close reasons
const (
	CloseReasonHostLeft = "host_left"
	CloseReasonEmpty    = "empty"
)

// PlayerInfo is a player as seen by clients
type PlayerInfo struct {
	ID   model.ConnectionID `json:"id"`
	Name string             `json:"name"`
}

// ResultInfo is a ranked buzz as seen by clients
type ResultInfo struct {
	PlayerID   model.ConnectionID `json:"playerId"`
	PlayerName string             `json:"playerName"`
	Time       float64            `json:"time"`
}

// ConnectionEstablished greets a new connection with its id.
// SocketID carries the same value for older clients.
type ConnectionEstablished struct {
	Type         Type               `json:"type"`
	ConnectionID model.ConnectionID `json:"connectionId"`
	SocketID     model.ConnectionID `json:"socketId"`
}

// RoomCreated tells the host the code of its new room
type RoomCreated struct {
	Type     Type           `json:"type"`
	RoomCode model.RoomCode `json:"roomCode"`
	HostName string         `json:"hostName"`
}

// RoomJoined confirms a join to the joining player
type RoomJoined struct {
	Type       Type           `json:"type"`
	RoomCode   model.RoomCode `json:"roomCode"`
	PlayerName string         `json:"playerName"`
}

// PlayerJoined announces a new player with the updated roster
type PlayerJoined struct {
	Type    Type         `json:"type"`
	Player  PlayerInfo   `json:"player"`
	Players []PlayerInfo `json:"players"`
}

// PlayerLeft announces a closed connection with the updated roster
type PlayerLeft struct {
	Type     Type               `json:"type"`
	PlayerID model.ConnectionID `json:"playerId"`
	Players  []PlayerInfo       `json:"players"`
}

// PlayerKicked tells hosts who was kicked. KickedPlayerName is empty if nobody was.
type PlayerKicked struct {
	Type             Type         `json:"type"`
	KickedPlayerName string       `json:"kickedPlayerName"`
	Players          []PlayerInfo `json:"players"`
}

// KickedFromRoom tells a player they were removed by the host
type KickedFromRoom struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// BuzzersReleased carries the release time in unix milliseconds
type BuzzersReleased struct {
	Type      Type  `json:"type"`
	Timestamp int64 `json:"timestamp"`
}

// BuzzersReset announces a cleared ledger and a closed buzz window
type BuzzersReset struct {
	Type Type `json:"type"`
}

// BuzzResults lists a room's buzzes, fastest first
type BuzzResults struct {
	Type    Type         `json:"type"`
	Results []ResultInfo `json:"results"`
}

// BuzzAcknowledged gives a player their recorded time in seconds
type BuzzAcknowledged struct {
	Type Type    `json:"type"`
	Time float64 `json:"time"`
}

// RoomClosed tells bound connections their room was swept
type RoomClosed struct {
	Type     Type           `json:"type"`
	RoomCode model.RoomCode `json:"roomCode"`
	Reason   string         `json:"reason"`
}

// Error reports a rejected message to its sender
type Error struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// NewConnectionEstablished builds the greeting for a new connection
func NewConnectionEstablished(id model.ConnectionID) ConnectionEstablished {
	return ConnectionEstablished{Type: TypeConnectionEstablished, ConnectionID: id, SocketID: id}
}

// NewRoomCreated builds a RoomCreated from a stored room
func NewRoomCreated(room *model.Room) RoomCreated {
	return RoomCreated{Type: TypeRoomCreated, RoomCode: room.Code, HostName: room.HostName}
}

// NewRoomJoined builds a RoomJoined from the new player
func NewRoomJoined(player *model.Player) RoomJoined {
	return RoomJoined{Type: TypeRoomJoined, RoomCode: player.RoomCode, PlayerName: player.Name}
}

// NewPlayerJoined builds a PlayerJoined with the full roster
func NewPlayerJoined(joined *model.Player, players []*model.Player) PlayerJoined {
	return PlayerJoined{
		Type:    TypePlayerJoined,
		Player:  toPlayerInfo(joined),
		Players: ToPlayerInfos(players),
	}
}

// NewPlayerLeft builds a PlayerLeft with the remaining roster
func NewPlayerLeft(id model.ConnectionID, players []*model.Player) PlayerLeft {
	return PlayerLeft{Type: TypePlayerLeft, PlayerID: id, Players: ToPlayerInfos(players)}
}

// NewPlayerKicked builds a PlayerKicked with the remaining roster
func NewPlayerKicked(name string, players []*model.Player) PlayerKicked {
	return PlayerKicked{Type: TypePlayerKicked, KickedPlayerName: name, Players: ToPlayerInfos(players)}
}

// NewKickedFromRoom builds the notice sent to a kicked player
func NewKickedFromRoom() KickedFromRoom {
	return KickedFromRoom{Type: TypeKickedFromRoom, Message: KickedMessage}
}

// NewBuzzersReleased builds a BuzzersReleased stamped with the release time
func NewBuzzersReleased(at time.Time) BuzzersReleased {
	return BuzzersReleased{Type: TypeBuzzersReleased, Timestamp: at.UnixMilli()}
}

// NewBuzzersReset builds a BuzzersReset
func NewBuzzersReset() BuzzersReset {
	return BuzzersReset{Type: TypeBuzzersReset}
}

// NewBuzzResults builds a BuzzResults keeping the given order
func NewBuzzResults(results []*model.BuzzResult) BuzzResults {
	return BuzzResults{Type: TypeBuzzResults, Results: ToResultInfos(results)}
}

// NewBuzzAcknowledged builds a BuzzAcknowledged for an elapsed time in seconds
func NewBuzzAcknowledged(elapsed float64) BuzzAcknowledged {
	return BuzzAcknowledged{Type: TypeBuzzAcknowledged, Time: elapsed}
}

// NewRoomClosed builds a RoomClosed with one of the CloseReason values
func NewRoomClosed(code model.RoomCode, reason string) RoomClosed {
	return RoomClosed{Type: TypeRoomClosed, RoomCode: code, Reason: reason}
}

// NewError builds an Error carrying user-facing text
func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

// ToPlayerInfos converts players to their wire form. Never nil.
func ToPlayerInfos(players []*model.Player) []PlayerInfo {
	infos := make([]PlayerInfo, len(players))
	for i, p := range players {
		infos[i] = toPlayerInfo(p)
	}
	return infos
}

func toPlayerInfo(p *model.Player) PlayerInfo {
	return PlayerInfo{ID: p.ConnectionID, Name: p.Name}
}

// ToResultInfos converts buzz results to their wire form, keeping order. Never nil.
func ToResultInfos(results []*model.BuzzResult) []ResultInfo {
	infos := make([]ResultInfo, len(results))
	for i, r := range results {
		infos[i] = ResultInfo{PlayerID: r.PlayerID, PlayerName: r.PlayerName, Time: r.ElapsedTime}
	}
	return infos
}

// Encode marshals an outbound message
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}
