package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/session"
)

// Client is one websocket connection. It implements session.Peer.
type Client struct {
	conn   *websocket.Conn
	config Config
	logger *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

var _ session.Peer = (*Client)(nil)

func newClient(conn *websocket.Conn, config Config, logger *slog.Logger) *Client {
	return &Client{
		conn:   conn,
		config: config,
		logger: logger,
		send:   make(chan []byte, config.SendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send queues a message for the write pump without blocking
func (c *Client) Send(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close stops the write pump, which sends a close frame and drops the connection
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump forwards inbound messages to the session until the connection fails
func (c *Client) readPump(ctx context.Context, id model.ConnectionID, sess Session) {
	c.conn.SetReadLimit(c.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}

		if err := sess.Receive(ctx, id, message); err != nil {
			if !errors.Is(err, session.ErrCoordinatorStopped) {
				c.logger.Error("failed to submit message", slog.Any("error", err))
			}
			return
		}
	}
}

// writePump writes queued messages and keepalive pings.
// One frame per message; clients parse each frame as a single record.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("websocket write failed", slog.Any("error", err))
				c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			c.drain()
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// drain flushes messages already queued before Close
func (c *Client) drain() {
	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}
