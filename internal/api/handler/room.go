package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/buzzrelay/internal/api/apierr"
	"github.com/mcoot/buzzrelay/internal/api/response"
	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/session"
)

// RoomReader reads room state without mutating it
type RoomReader interface {
	Snapshot(ctx context.Context, code model.RoomCode) (*session.RoomSnapshot, error)
}

// RoomHandler handles room endpoints
type RoomHandler struct {
	rooms RoomReader
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms RoomReader) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.NormalizeRoomCode(mux.Vars(r)["code"])
	if code == "" {
		WriteError(w, apierr.NewInvalidRequestError("room code is required"))
		return
	}

	snap, err := h.rooms.Snapshot(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromSnapshot(snap))
}
