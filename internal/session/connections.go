package session

import (
	"slices"

	"github.com/google/uuid"

	"github.com/mcoot/buzzrelay/internal/model"
)

// Peer is the outbound half of a transport connection
type Peer interface {
	// Send queues a message without blocking.
	// Returns false if the peer is closed or its queue is full.
	Send(msg []byte) bool
	// Close shuts the transport down. Safe to call more than once.
	Close()
}

type connEntry struct {
	conn model.Connection
	peer Peer
}

// Registry tracks live connections and the rooms they are bound to.
// It is owned by the coordinator goroutine and is not safe for concurrent use.
type Registry struct {
	conns map[model.ConnectionID]*connEntry
	// Bound connections per room, in bind order
	rooms map[model.RoomCode][]model.ConnectionID
	newID func() model.ConnectionID
}

// NewRegistry creates an empty Registry issuing random UUID connection ids
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[model.ConnectionID]*connEntry),
		rooms: make(map[model.RoomCode][]model.ConnectionID),
		newID: func() model.ConnectionID {
			return model.ConnectionID(uuid.NewString())
		},
	}
}

// Register records a new unbound connection and returns its id
func (r *Registry) Register(peer Peer) model.ConnectionID {
	id := r.newID()
	for r.conns[id] != nil {
		id = r.newID()
	}
	r.conns[id] = &connEntry{
		conn: model.Connection{ID: id, State: model.ConnectionUnbound},
		peer: peer,
	}
	return id
}

// Bind attaches an unbound connection to a room. A connection is bound at most once.
func (r *Registry) Bind(id model.ConnectionID, code model.RoomCode, isHost bool) error {
	entry, ok := r.conns[id]
	if !ok {
		return model.ErrConnectionNotFound
	}
	switch entry.conn.State {
	case model.ConnectionBound:
		return model.ErrAlreadyBound
	case model.ConnectionEvicted:
		return model.ErrEvicted
	}

	entry.conn.RoomCode = code
	entry.conn.IsHost = isHost
	entry.conn.State = model.ConnectionBound
	r.rooms[code] = append(r.rooms[code], id)
	return nil
}

// Lookup returns a copy of a connection's identity
func (r *Registry) Lookup(id model.ConnectionID) (model.Connection, error) {
	entry, ok := r.conns[id]
	if !ok {
		return model.Connection{}, model.ErrConnectionNotFound
	}
	return entry.conn, nil
}

// Peer returns the transport for a connection
func (r *Registry) Peer(id model.ConnectionID) (Peer, bool) {
	entry, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return entry.peer, true
}

// Evict detaches a bound connection from its room's fan-out.
// The connection stays registered so it can still be told why.
func (r *Registry) Evict(id model.ConnectionID) {
	entry, ok := r.conns[id]
	if !ok || entry.conn.State != model.ConnectionBound {
		return
	}
	r.removeFromRoom(entry.conn.RoomCode, id)
	entry.conn.State = model.ConnectionEvicted
}

// Unregister forgets a connection, returning its last identity
func (r *Registry) Unregister(id model.ConnectionID) (model.Connection, bool) {
	entry, ok := r.conns[id]
	if !ok {
		return model.Connection{}, false
	}
	if entry.conn.State == model.ConnectionBound {
		r.removeFromRoom(entry.conn.RoomCode, id)
	}
	delete(r.conns, id)
	return entry.conn, true
}

// InRoom returns the connections currently bound to a room
func (r *Registry) InRoom(code model.RoomCode) []model.ConnectionID {
	return slices.Clone(r.rooms[code])
}

// HostsOf returns the host connections bound to a room
func (r *Registry) HostsOf(code model.RoomCode) []model.ConnectionID {
	var hosts []model.ConnectionID
	for _, id := range r.rooms[code] {
		if r.conns[id].conn.IsHost {
			hosts = append(hosts, id)
		}
	}
	return hosts
}

// All returns every registered connection id
func (r *Registry) All() []model.ConnectionID {
	ids := make([]model.ConnectionID, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of registered connections
func (r *Registry) Count() int {
	return len(r.conns)
}

// RoomCount returns the number of rooms with at least one bound connection
func (r *Registry) RoomCount() int {
	return len(r.rooms)
}

func (r *Registry) removeFromRoom(code model.RoomCode, id model.ConnectionID) {
	ids := slices.DeleteFunc(r.rooms[code], func(other model.ConnectionID) bool {
		return other == id
	})
	if len(ids) == 0 {
		delete(r.rooms, code)
		return
	}
	r.rooms[code] = ids
}
