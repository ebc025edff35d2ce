package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomClosed        = errors.New("room is closed")
	ErrRoomCodeExhausted = errors.New("could not generate a unique room code")
	ErrNotHost           = errors.New("connection is not the host")
	ErrWrongRoom         = errors.New("connection is not in this room")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrCannotKickSelf = errors.New("host cannot kick themselves")

	// Connection errors
	ErrConnectionNotFound = errors.New("connection not found")
	ErrAlreadyBound       = errors.New("connection is already in a room")
	ErrEvicted            = errors.New("connection was removed from its room")

	// Buzzer errors
	ErrBuzzersNotReleased = errors.New("buzzers have not been released")

	// Protocol errors
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownMessage   = errors.New("unknown message type")
)
