package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/protocol"
)

func (c *Coordinator) handleMessage(ctx context.Context, id model.ConnectionID, raw []byte) {
	conn, err := c.conns.Lookup(id)
	if err != nil {
		c.logger.Warn("message from unknown connection", slog.String("connection_id", string(id)))
		return
	}

	msg, err := protocol.Decode(raw)
	if err != nil {
		c.logger.Warn("rejected message",
			slog.String("connection_id", string(id)),
			slog.Any("error", err))
		c.sendError(id, protocol.PeekType(raw), err)
		return
	}

	if conn.State == model.ConnectionEvicted {
		c.sendError(id, msg.MessageType(), model.ErrEvicted)
		return
	}

	switch m := msg.(type) {
	case protocol.CreateRoom:
		err = c.handleCreateRoom(ctx, conn, m)
	case protocol.JoinRoom:
		err = c.handleJoinRoom(ctx, conn, m)
	case protocol.ReleaseBuzzers:
		err = c.handleReleaseBuzzers(ctx, conn, m)
	case protocol.ResetBuzzers:
		err = c.handleResetBuzzers(ctx, conn, m)
	case protocol.BuzzIn:
		err = c.handleBuzzIn(ctx, conn, m)
	case protocol.KickPlayer:
		err = c.handleKickPlayer(ctx, conn, m)
	}
	if err == nil {
		return
	}

	text := protocol.ErrorMessage(msg.MessageType(), err)
	if text == protocol.GenericErrorMessage {
		c.logger.Error("failed to handle message",
			slog.String("connection_id", string(id)),
			slog.String("type", string(msg.MessageType())),
			slog.Any("error", err))
	} else {
		c.logger.Info("message refused",
			slog.String("connection_id", string(id)),
			slog.String("type", string(msg.MessageType())),
			slog.String("reason", err.Error()))
	}
	c.sendTo(id, protocol.NewError(text))
}

func (c *Coordinator) sendError(id model.ConnectionID, t protocol.Type, err error) {
	c.sendTo(id, protocol.NewError(protocol.ErrorMessage(t, err)))
}

func (c *Coordinator) handleCreateRoom(ctx context.Context, conn model.Connection, m protocol.CreateRoom) error {
	if conn.State != model.ConnectionUnbound {
		return model.ErrAlreadyBound
	}

	room, err := c.rooms.CreateRoom(ctx, conn.ID, m.HostName)
	if err != nil {
		return err
	}
	if _, err := c.players.Add(ctx, conn.ID, m.HostName, room.Code); err != nil {
		if delErr := c.rooms.Delete(ctx, room.Code); delErr != nil {
			c.logger.Error("failed to remove half-created room",
				slog.String("room", string(room.Code)),
				slog.Any("error", delErr))
		}
		return err
	}
	if err := c.conns.Bind(conn.ID, room.Code, true); err != nil {
		return err
	}

	c.sendTo(conn.ID, protocol.NewRoomCreated(room))
	return nil
}

func (c *Coordinator) handleJoinRoom(ctx context.Context, conn model.Connection, m protocol.JoinRoom) error {
	if conn.State != model.ConnectionUnbound {
		return model.ErrAlreadyBound
	}

	room, err := c.rooms.GetByCode(ctx, m.RoomCode)
	if err != nil {
		return err
	}
	if !room.Active {
		return model.ErrRoomClosed
	}

	player, err := c.players.Add(ctx, conn.ID, m.PlayerName, room.Code)
	if err != nil {
		return err
	}
	if err := c.conns.Bind(conn.ID, room.Code, false); err != nil {
		return err
	}
	roster, err := c.refreshOccupancy(ctx, room.Code)
	if err != nil {
		return err
	}

	c.logger.Info("player joined",
		slog.String("room", string(room.Code)),
		slog.String("connection_id", string(conn.ID)),
		slog.Int("players", len(roster)))

	c.sendTo(conn.ID, protocol.NewRoomJoined(player))
	c.broadcastToRoomExcept(room.Code, conn.ID, protocol.NewPlayerJoined(player, roster))
	return nil
}

// requireHost checks that conn hosts the room named in a host-only message
func (c *Coordinator) requireHost(ctx context.Context, conn model.Connection, code model.RoomCode) (*model.Room, error) {
	if !conn.IsBound() || !conn.IsHost {
		return nil, model.ErrNotHost
	}
	if code != conn.RoomCode {
		return nil, model.ErrWrongRoom
	}
	return c.rooms.GetByCode(ctx, code)
}

func (c *Coordinator) handleReleaseBuzzers(ctx context.Context, conn model.Connection, m protocol.ReleaseBuzzers) error {
	room, err := c.requireHost(ctx, conn, m.RoomCode)
	if err != nil {
		return err
	}

	if _, err := c.ledger.ClearByRoom(ctx, room.Code); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	room, err = c.rooms.MarkReleased(ctx, room.Code)
	if err != nil {
		return err
	}

	c.logger.Info("buzzers released", slog.String("room", string(room.Code)))
	c.broadcastToRoom(room.Code, protocol.NewBuzzersReleased(*room.ReleasedAt))
	return nil
}

func (c *Coordinator) handleResetBuzzers(ctx context.Context, conn model.Connection, m protocol.ResetBuzzers) error {
	room, err := c.requireHost(ctx, conn, m.RoomCode)
	if err != nil {
		return err
	}

	if _, err := c.ledger.ClearByRoom(ctx, room.Code); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	if _, err := c.rooms.ClearRelease(ctx, room.Code); err != nil {
		return err
	}

	c.logger.Info("buzzers reset", slog.String("room", string(room.Code)))
	c.broadcastToRoom(room.Code, protocol.NewBuzzersReset())
	c.sendTo(conn.ID, protocol.NewBuzzResults(nil))
	return nil
}

func (c *Coordinator) handleBuzzIn(ctx context.Context, conn model.Connection, m protocol.BuzzIn) error {
	if !conn.IsBound() {
		return model.ErrPlayerNotFound
	}
	player, err := c.players.GetByConnection(ctx, conn.ID)
	if err != nil {
		return err
	}
	if m.RoomCode != player.RoomCode {
		return model.ErrWrongRoom
	}

	room, err := c.rooms.GetByCode(ctx, player.RoomCode)
	if err != nil {
		return err
	}
	elapsed, open := room.Elapsed(c.clock.Now())
	if !open {
		return model.ErrBuzzersNotReleased
	}

	result, recorded, err := c.ledger.Append(ctx, room.Code, player.ConnectionID, player.Name, elapsed)
	if err != nil {
		return err
	}

	c.sendTo(conn.ID, protocol.NewBuzzAcknowledged(result.ElapsedTime))
	if !recorded {
		c.logger.Debug("duplicate buzz ignored",
			slog.String("room", string(room.Code)),
			slog.String("connection_id", string(conn.ID)))
		return nil
	}

	c.logger.Info("buzz recorded",
		slog.String("room", string(room.Code)),
		slog.String("connection_id", string(conn.ID)),
		slog.Float64("elapsed", result.ElapsedTime))

	results, err := c.ledger.ListByRoom(ctx, room.Code)
	if err != nil {
		c.logger.Error("failed to list buzz results",
			slog.String("room", string(room.Code)),
			slog.Any("error", err))
		return nil
	}
	c.sendToHosts(room.Code, protocol.NewBuzzResults(results))
	return nil
}

func (c *Coordinator) handleKickPlayer(ctx context.Context, conn model.Connection, m protocol.KickPlayer) error {
	room, err := c.requireHost(ctx, conn, m.RoomCode)
	if err != nil {
		return err
	}
	if m.PlayerID == conn.ID {
		return model.ErrCannotKickSelf
	}

	target, err := c.players.GetByConnection(ctx, m.PlayerID)
	if errors.Is(err, model.ErrPlayerNotFound) || (err == nil && target.RoomCode != room.Code) {
		// Nothing to kick; resync the host with the unchanged roster
		roster, err := c.players.ListByRoom(ctx, room.Code)
		if err != nil {
			return err
		}
		c.sendTo(conn.ID, protocol.NewPlayerKicked("", roster))
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := c.players.Remove(ctx, target.ConnectionID); err != nil {
		return err
	}
	c.sendTo(target.ConnectionID, protocol.NewKickedFromRoom())
	c.conns.Evict(target.ConnectionID)

	roster, err := c.refreshOccupancy(ctx, room.Code)
	if err != nil {
		return err
	}

	c.logger.Info("player kicked",
		slog.String("room", string(room.Code)),
		slog.String("connection_id", string(target.ConnectionID)))
	c.broadcastToRoom(room.Code, protocol.NewPlayerKicked(target.Name, roster))
	return nil
}

// handleDisconnect removes a closed connection and its player.
// The room and its ledger are kept; a departing host orphans the room.
func (c *Coordinator) handleDisconnect(ctx context.Context, id model.ConnectionID) {
	conn, ok := c.conns.Unregister(id)
	if !ok {
		return
	}
	c.logger.Info("connection closed",
		slog.String("connection_id", string(id)),
		slog.String("state", string(conn.State)))
	if conn.State != model.ConnectionBound {
		return
	}

	logger := c.logger.With(slog.String("room", string(conn.RoomCode)))

	removed, err := c.players.Remove(ctx, id)
	if err != nil {
		logger.Error("failed to remove player", slog.Any("error", err))
		return
	}

	if conn.IsHost {
		if _, err := c.rooms.MarkOrphaned(ctx, conn.RoomCode); err != nil {
			logger.Error("failed to orphan room", slog.Any("error", err))
		} else {
			logger.Info("host left, room orphaned")
		}
	}

	if !removed {
		return
	}
	roster, err := c.refreshOccupancy(ctx, conn.RoomCode)
	if err != nil {
		logger.Error("failed to list players", slog.Any("error", err))
		return
	}
	c.broadcastToRoom(conn.RoomCode, protocol.NewPlayerLeft(id, roster))
}

// sweep closes rooms that have been orphaned or empty for too long
func (c *Coordinator) sweep(ctx context.Context) {
	if c.config.OrphanTTL <= 0 {
		return
	}

	expired, err := c.rooms.Expired(ctx, c.config.OrphanTTL)
	if err != nil {
		c.logger.Error("room sweep failed", slog.Any("error", err))
		return
	}

	for _, room := range expired {
		reason := protocol.CloseReasonEmpty
		if room.OrphanedAt != nil {
			reason = protocol.CloseReasonHostLeft
		}

		// Tell everyone still bound, then detach them before deleting state
		c.broadcastToRoom(room.Code, protocol.NewRoomClosed(room.Code, reason))
		for _, id := range c.conns.InRoom(room.Code) {
			c.conns.Evict(id)
		}

		if _, err := c.players.RemoveByRoom(ctx, room.Code); err != nil {
			c.logger.Error("failed to remove players of closed room",
				slog.String("room", string(room.Code)),
				slog.Any("error", err))
			continue
		}
		if err := c.rooms.Delete(ctx, room.Code); err != nil {
			c.logger.Error("failed to delete closed room",
				slog.String("room", string(room.Code)),
				slog.Any("error", err))
			continue
		}
		c.logger.Info("room closed",
			slog.String("room", string(room.Code)),
			slog.String("reason", reason))
	}
}

// refreshOccupancy returns the room's players and records whether it is empty
func (c *Coordinator) refreshOccupancy(ctx context.Context, code model.RoomCode) ([]*model.Player, error) {
	roster, err := c.players.ListByRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, err := c.rooms.SetOccupancy(ctx, code, len(roster)); err != nil {
		return nil, err
	}
	return roster, nil
}
