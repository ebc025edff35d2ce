package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/buzzrelay/internal/dependencies/clock"
	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/protocol"
	"github.com/mcoot/buzzrelay/internal/services/ledger"
	"github.com/mcoot/buzzrelay/internal/services/players"
	"github.com/mcoot/buzzrelay/internal/services/rooms"
)

// ErrCoordinatorStopped is returned once the event loop has exited
var ErrCoordinatorStopped = errors.New("session coordinator stopped")

// Config holds coordinator settings
type Config struct {
	// OrphanTTL is how long an orphaned or empty room survives. Zero disables sweeping.
	OrphanTTL time.Duration
	// SweepInterval is how often expired rooms are collected. Zero disables the ticker.
	SweepInterval time.Duration
}

// DefaultConfig returns the default coordinator settings
func DefaultConfig() Config {
	return Config{
		OrphanTTL:     30 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Stats is a point-in-time count of live state
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

// RoomSnapshot is a read-only view of a room
type RoomSnapshot struct {
	Room    *model.Room
	Players []*model.Player
	Results []*model.BuzzResult
}

// event is one unit of work for the event loop
type event struct {
	apply func(ctx context.Context)
	done  chan struct{}
}

// Coordinator owns all room, player, ledger and connection state.
// Every mutation runs on the single goroutine started by Run.
type Coordinator struct {
	rooms   *rooms.Directory
	players *players.Registry
	ledger  *ledger.Ledger
	conns   *Registry
	clock   clock.Clock
	config  Config
	logger  *slog.Logger

	events  chan event
	stopped chan struct{}
}

// NewCoordinator creates a new Coordinator. Call Run to start processing events.
func NewCoordinator(
	roomDirectory *rooms.Directory,
	playerRegistry *players.Registry,
	buzzLedger *ledger.Ledger,
	clk clock.Clock,
	config Config,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		rooms:   roomDirectory,
		players: playerRegistry,
		ledger:  buzzLedger,
		conns:   NewRegistry(),
		clock:   clk,
		config:  config,
		logger:  logger.With(slog.String("component", "session")),
		events:  make(chan event),
		stopped: make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled, then closes every peer
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.stopped)

	var sweeps <-chan time.Time
	if c.config.SweepInterval > 0 && c.config.OrphanTTL > 0 {
		ticker := c.clock.NewTicker(c.config.SweepInterval)
		defer ticker.Stop()
		sweeps = ticker.Chan()
	}

	c.logger.Info("session coordinator started")
	for {
		select {
		case ev := <-c.events:
			ev.apply(ctx)
			close(ev.done)

		case <-sweeps:
			c.sweep(ctx)

		case <-ctx.Done():
			ids := c.conns.All()
			for _, id := range ids {
				if peer, ok := c.conns.Peer(id); ok {
					peer.Close()
				}
			}
			c.logger.Info("session coordinator stopped", slog.Int("closed_connections", len(ids)))
			return
		}
	}
}

// Config returns the settings the coordinator runs with
func (c *Coordinator) Config() Config {
	return c.config
}

// Done is closed once Run has returned
func (c *Coordinator) Done() <-chan struct{} {
	return c.stopped
}

// submit queues fn on the event loop and waits for it to finish.
// ctx only bounds the wait for the loop to accept the event.
func (c *Coordinator) submit(ctx context.Context, fn func(ctx context.Context)) error {
	ev := event{apply: fn, done: make(chan struct{})}

	select {
	case c.events <- ev:
	case <-c.stopped:
		return ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the loop always runs fn and closes done
	<-ev.done
	return nil
}

// Connect registers a new transport and greets it with its connection id
func (c *Coordinator) Connect(ctx context.Context, peer Peer) (model.ConnectionID, error) {
	var id model.ConnectionID
	err := c.submit(ctx, func(ctx context.Context) {
		id = c.conns.Register(peer)
		c.logger.Info("connection opened", slog.String("connection_id", string(id)))
		c.sendTo(id, protocol.NewConnectionEstablished(id))
	})
	return id, err
}

// Receive handles one raw message from a connection.
// Per-message failures are reported to the sender, never returned.
func (c *Coordinator) Receive(ctx context.Context, id model.ConnectionID, raw []byte) error {
	return c.submit(ctx, func(ctx context.Context) {
		c.handleMessage(ctx, id, raw)
	})
}

// Disconnect runs the cleanup cascade for a closed transport
func (c *Coordinator) Disconnect(ctx context.Context, id model.ConnectionID) error {
	return c.submit(ctx, func(ctx context.Context) {
		c.handleDisconnect(ctx, id)
	})
}

// Sweep deletes rooms that have been orphaned or empty longer than the configured TTL
func (c *Coordinator) Sweep(ctx context.Context) error {
	return c.submit(ctx, func(ctx context.Context) {
		c.sweep(ctx)
	})
}

// Snapshot returns the current state of a room
func (c *Coordinator) Snapshot(ctx context.Context, code model.RoomCode) (*RoomSnapshot, error) {
	var (
		snap    *RoomSnapshot
		snapErr error
	)
	err := c.submit(ctx, func(ctx context.Context) {
		snap, snapErr = c.snapshot(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	return snap, snapErr
}

// Stats returns live connection and room counts
func (c *Coordinator) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := c.submit(ctx, func(ctx context.Context) {
		stats = Stats{
			Connections: c.conns.Count(),
			Rooms:       c.conns.RoomCount(),
		}
	})
	return stats, err
}

func (c *Coordinator) snapshot(ctx context.Context, code model.RoomCode) (*RoomSnapshot, error) {
	room, err := c.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	roomPlayers, err := c.players.ListByRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	results, err := c.ledger.ListByRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return &RoomSnapshot{Room: room, Players: roomPlayers, Results: results}, nil
}
