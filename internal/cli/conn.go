package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/buzzrelay/internal/protocol"
)

const (
	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second
)

// ServerMessage is any message the server pushes. Fields not carried by a
// given type are left zero.
type ServerMessage struct {
	Type             protocol.Type `json:"type"`
	ConnectionID     string        `json:"connectionId,omitempty"`
	RoomCode         string        `json:"roomCode,omitempty"`
	HostName         string        `json:"hostName,omitempty"`
	PlayerName       string        `json:"playerName,omitempty"`
	PlayerID         string        `json:"playerId,omitempty"`
	KickedPlayerName string        `json:"kickedPlayerName,omitempty"`
	Player           *PlayerInfo   `json:"player,omitempty"`
	Players          []PlayerInfo  `json:"players,omitempty"`
	Results          []ResultInfo  `json:"results,omitempty"`
	Time             float64       `json:"time,omitempty"`
	Timestamp        int64         `json:"timestamp,omitempty"`
	Reason           string        `json:"reason,omitempty"`
	Message          string        `json:"message,omitempty"`

	// Raw is the frame as received
	Raw json.RawMessage `json:"-"`
}

// PlayerInfo is a room member as pushed over the websocket
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResultInfo is one ranked buzz as pushed over the websocket
type ResultInfo struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Time       float64 `json:"time"`
}

// Conn is a websocket connection to the buzzer server
type Conn struct {
	ws       *websocket.Conn
	id       string
	messages chan ServerMessage
	done     chan struct{}

	closeOnce sync.Once
	writeMu   sync.Mutex
	readErr   error
}

// Dial connects to the server and waits for the connection id
func Dial(ctx context.Context, wsURL string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	c := &Conn{
		ws:       ws,
		messages: make(chan ServerMessage, 64),
		done:     make(chan struct{}),
	}

	_ = ws.SetReadDeadline(time.Now().Add(handshakeTimeout))
	first, err := c.read()
	if err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("handshake failed: %w", err)
	}
	if first.Type != protocol.TypeConnectionEstablished {
		_ = ws.Close()
		return nil, fmt.Errorf("handshake failed: unexpected %q message", first.Type)
	}
	_ = ws.SetReadDeadline(time.Time{})

	c.id = first.ConnectionID
	go c.readLoop()
	return c, nil
}

// ID returns the connection id the server assigned
func (c *Conn) ID() string {
	return c.id
}

// Messages returns server messages in arrival order.
// The channel is closed when the connection ends; Err then reports why.
func (c *Conn) Messages() <-chan ServerMessage {
	return c.messages
}

// Err returns the read error that ended the connection, or nil on a normal close
func (c *Conn) Err() error {
	return c.readErr
}

// Send writes one client message
func (c *Conn) Send(msg protocol.Inbound) error {
	data, err := protocol.EncodeInbound(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

// Close sends a close frame and drops the connection
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) read() (ServerMessage, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return ServerMessage{}, err
	}
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ServerMessage{}, fmt.Errorf("invalid server message: %w", err)
	}
	msg.Raw = data
	return msg, nil
}

func (c *Conn) readLoop() {
	defer close(c.messages)
	for {
		msg, err := c.read()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) || closeErr.Code != websocket.CloseNormalClosure {
				c.readErr = err
			}
			return
		}
		select {
		case c.messages <- msg:
		case <-c.done:
			return
		}
	}
}
