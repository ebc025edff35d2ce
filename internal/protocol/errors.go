package protocol

import (
	"errors"

	"github.com/mcoot/buzzrelay/internal/model"
)

// GenericErrorMessage is sent for malformed input and internal failures
const GenericErrorMessage = "Error processing message"

// ErrorMessage maps an error raised while handling a message of type t
// to the text sent back to the client
func ErrorMessage(t Type, err error) string {
	switch {
	case errors.Is(err, model.ErrNotHost):
		switch t {
		case TypeReleaseBuzzers:
			return "Only host can release buzzers"
		case TypeResetBuzzers:
			return "Only host can reset buzzers"
		case TypeKickPlayer:
			return "Only host can kick players"
		default:
			return "Only host can do that"
		}
	case errors.Is(err, model.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, model.ErrRoomClosed):
		return "Room is closed"
	case errors.Is(err, model.ErrRoomCodeExhausted):
		return "Could not create a room, please try again"
	case errors.Is(err, model.ErrWrongRoom):
		return "Not in that room"
	case errors.Is(err, model.ErrPlayerNotFound):
		return "Player not found"
	case errors.Is(err, model.ErrCannotKickSelf):
		return "Host cannot kick themselves"
	case errors.Is(err, model.ErrAlreadyBound):
		return "Already in a room"
	case errors.Is(err, model.ErrEvicted):
		return "You are no longer in this room"
	case errors.Is(err, model.ErrBuzzersNotReleased):
		return "Buzzers are not released"
	case errors.Is(err, model.ErrUnknownMessage):
		return "Unknown message type"
	default:
		return GenericErrorMessage
	}
}
