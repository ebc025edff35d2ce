package session

import (
	"log/slog"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/protocol"
)

// sendTo delivers a message to a single connection
func (c *Coordinator) sendTo(id model.ConnectionID, msg any) {
	c.deliver([]model.ConnectionID{id}, msg)
}

// broadcastToRoom delivers a message to every connection bound to a room
func (c *Coordinator) broadcastToRoom(code model.RoomCode, msg any) {
	c.deliver(c.conns.InRoom(code), msg)
}

// broadcastToRoomExcept delivers a message to a room, skipping one connection
func (c *Coordinator) broadcastToRoomExcept(code model.RoomCode, except model.ConnectionID, msg any) {
	var ids []model.ConnectionID
	for _, id := range c.conns.InRoom(code) {
		if id != except {
			ids = append(ids, id)
		}
	}
	c.deliver(ids, msg)
}

// sendToHosts delivers a message to the host connections of a room
func (c *Coordinator) sendToHosts(code model.RoomCode, msg any) {
	c.deliver(c.conns.HostsOf(code), msg)
}

// deliver encodes once and queues the message on each peer.
// A peer that cannot accept the message is closed; the others still receive it.
func (c *Coordinator) deliver(ids []model.ConnectionID, msg any) {
	if len(ids) == 0 {
		return
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		c.logger.Error("failed to encode message", slog.Any("error", err))
		return
	}

	dropped := 0
	for _, id := range ids {
		peer, ok := c.conns.Peer(id)
		if !ok {
			continue
		}
		if !peer.Send(data) {
			dropped++
			c.logger.Warn("message dropped - closing connection",
				slog.String("connection_id", string(id)))
			peer.Close()
		}
	}
	if dropped > 0 {
		c.logger.Warn("fan-out partial failure",
			slog.Int("sent", len(ids)-dropped),
			slog.Int("dropped", dropped))
	}
}
