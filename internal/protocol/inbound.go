package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcoot/buzzrelay/internal/model"
)

// Type is the discriminator carried by every message
type Type string

// Inbound message types
const (
	TypeCreateRoom     Type = "create_room"
	TypeJoinRoom       Type = "join_room"
	TypeReleaseBuzzers Type = "release_buzzers"
	TypeResetBuzzers   Type = "reset_buzzers"
	TypeBuzzIn         Type = "buzz_in"
	TypeKickPlayer     Type = "kick_player"
)

// MaxNameLength bounds host and player display names, in runes
const MaxNameLength = 32

// Inbound is a decoded client message
type Inbound interface {
	MessageType() Type
}

// CreateRoom asks the server to mint a room hosted by the sender
type CreateRoom struct {
	HostName string `json:"hostName"`
}

// JoinRoom asks to join an existing room as a player
type JoinRoom struct {
	PlayerName string         `json:"playerName"`
	RoomCode   model.RoomCode `json:"roomCode"`
}

// ReleaseBuzzers opens a new buzz window
type ReleaseBuzzers struct {
	RoomCode model.RoomCode `json:"roomCode"`
}

// ResetBuzzers closes the buzz window and clears results
type ResetBuzzers struct {
	RoomCode model.RoomCode `json:"roomCode"`
}

// BuzzIn records a buzz. Any client-reported time is ignored.
type BuzzIn struct {
	RoomCode model.RoomCode `json:"roomCode"`
}

// KickPlayer removes a player from the host's room
type KickPlayer struct {
	RoomCode model.RoomCode     `json:"roomCode"`
	PlayerID model.ConnectionID `json:"playerId"`
}

func (CreateRoom) MessageType() Type     { return TypeCreateRoom }
func (JoinRoom) MessageType() Type       { return TypeJoinRoom }
func (ReleaseBuzzers) MessageType() Type { return TypeReleaseBuzzers }
func (ResetBuzzers) MessageType() Type   { return TypeResetBuzzers }
func (BuzzIn) MessageType() Type         { return TypeBuzzIn }
func (KickPlayer) MessageType() Type     { return TypeKickPlayer }

type envelope struct {
	Type Type `json:"type"`
}

// PeekType returns the type discriminator of a raw message, if it has one
func PeekType(raw []byte) Type {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Type
}

// Decode parses and validates a raw client message.
// Errors wrap model.ErrMalformedMessage or model.ErrUnknownMessage.
func Decode(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}

	switch env.Type {
	case TypeCreateRoom:
		var msg CreateRoom
		if err := decodeBody(raw, &msg); err != nil {
			return nil, err
		}
		name, err := cleanName("hostName", msg.HostName)
		if err != nil {
			return nil, err
		}
		msg.HostName = name
		return msg, nil

	case TypeJoinRoom:
		var msg JoinRoom
		if err := decodeBody(raw, &msg); err != nil {
			return nil, err
		}
		name, err := cleanName("playerName", msg.PlayerName)
		if err != nil {
			return nil, err
		}
		msg.PlayerName = name
		if msg.RoomCode, err = cleanCode(msg.RoomCode); err != nil {
			return nil, err
		}
		return msg, nil

	case TypeReleaseBuzzers:
		var msg ReleaseBuzzers
		if err := decodeBody(raw, &msg); err != nil {
			return nil, err
		}
		var err error
		if msg.RoomCode, err = cleanCode(msg.RoomCode); err != nil {
			return nil, err
		}
		return msg, nil

	case TypeResetBuzzers:
		var msg ResetBuzzers
		if err := decodeBody(raw, &msg); err != nil {
			return nil, err
		}
		var err error
		if msg.RoomCode, err = cleanCode(msg.RoomCode); err != nil {
			return nil, err
		}
		return msg, nil

	case TypeBuzzIn:
		var msg BuzzIn
		if err := decodeBody(raw, &msg); err != nil {
			return nil, err
		}
		var err error
		if msg.RoomCode, err = cleanCode(msg.RoomCode); err != nil {
			return nil, err
		}
		return msg, nil

	case TypeKickPlayer:
		var msg KickPlayer
		if err := decodeBody(raw, &msg); err != nil {
			return nil, err
		}
		var err error
		if msg.RoomCode, err = cleanCode(msg.RoomCode); err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(msg.PlayerID)) == "" {
			return nil, missingField("playerId")
		}
		return msg, nil

	case "":
		return nil, missingField("type")

	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownMessage, env.Type)
	}
}

func decodeBody(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}
	return nil
}

func cleanName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", missingField(field)
	}
	if len([]rune(name)) > MaxNameLength {
		return "", fmt.Errorf("%w: %s longer than %d characters", model.ErrMalformedMessage, field, MaxNameLength)
	}
	return name, nil
}

func cleanCode(code model.RoomCode) (model.RoomCode, error) {
	normalized := model.NormalizeRoomCode(string(code))
	if normalized == "" {
		return "", missingField("roomCode")
	}
	return normalized, nil
}

func missingField(field string) error {
	return fmt.Errorf("%w: missing %s", model.ErrMalformedMessage, field)
}

// EncodeInbound marshals a client message with its type discriminator
func EncodeInbound(msg Inbound) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields["type"], err = json.Marshal(msg.MessageType()); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}
