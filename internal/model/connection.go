package model

// ConnectionID is the opaque server-issued identifier of a live transport connection.
// It doubles as the player id in the wire protocol.
type ConnectionID string

// ConnectionState tracks where a connection is in its lifecycle
type ConnectionState string

const (
	ConnectionUnbound ConnectionState = "unbound" // Connected, not yet in a room
	ConnectionBound   ConnectionState = "bound"   // Created or joined a room
	ConnectionEvicted ConnectionState = "evicted" // Kicked or its room was closed
)

// Connection is the server-side identity of a transport connection.
// It is owned by the connection registry and never attached to the transport itself.
type Connection struct {
	ID       ConnectionID
	RoomCode RoomCode // Empty until bound
	IsHost   bool
	State    ConnectionState
}

// IsBound reports whether the connection has been bound to a room
func (c *Connection) IsBound() bool {
	return c.State == ConnectionBound
}
