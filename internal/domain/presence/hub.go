package presence

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Conn is one live client connection. Implementations must make Deliver
// non-blocking (enqueue or drop) and Close idempotent. Ping and Close must be
// safe to call concurrently with Deliver.
type Conn interface {
	Deliver(ev Event) bool
	Ping() error
	Close()
}

// StatusStore stamps online/offline transitions. Going offline also records
// last_seen.
type StatusStore interface {
	SetOnline(ctx context.Context, id int64, online bool, at time.Time) error
}

type entry struct {
	identityID int64
	conn       Conn
	// set when a ping went out; cleared by Pong. A still-set flag at the next
	// heartbeat tick means the previous ping went unanswered.
	awaitingPong bool
}

// Hub is the process-wide connection registry. It is constructed explicitly
// and handed to the websocket acceptor and to every component that fans out
// events; there is no package-level instance.
type Hub struct {
	mu      sync.RWMutex
	conns   map[int64][]*entry
	status  StatusStore
	beat    time.Duration
	log     zerolog.Logger
	dropped func(n int)
	stale   func(n int)
}

// NewHub creates a connection registry with the given heartbeat interval.
func NewHub(status StatusStore, heartbeat time.Duration, log zerolog.Logger) *Hub {
	return &Hub{
		conns:  make(map[int64][]*entry),
		status: status,
		beat:   heartbeat,
		log:    log.With().Str("component", "presence-hub").Logger(),
	}
}

// OnDropped installs a callback invoked with the number of events dropped per
// fan-out, used for metrics.
func (h *Hub) OnDropped(fn func(n int)) {
	h.dropped = fn
}

// OnStale installs a callback invoked with the number of connections closed
// per heartbeat sweep.
func (h *Hub) OnStale(fn func(n int)) {
	h.stale = fn
}

// Register adds a connection for an identity. The first connection marks the
// identity online and broadcasts the presence edge.
func (h *Hub) Register(ctx context.Context, identityID int64, conn Conn) {
	h.mu.Lock()
	first := len(h.conns[identityID]) == 0
	h.conns[identityID] = append(h.conns[identityID], &entry{identityID: identityID, conn: conn})
	h.mu.Unlock()

	h.log.Debug().Int64("identity_id", identityID).Bool("first", first).Msg("connection registered")

	if first {
		if err := h.status.SetOnline(ctx, identityID, true, time.Now()); err != nil {
			h.log.Warn().Err(err).Int64("identity_id", identityID).Msg("failed to mark identity online")
		}
		h.Broadcast(Event{Type: EventPresence, Data: PresenceData{IdentityID: identityID, IsOnline: true}})
	}
}

// Unregister removes a connection. When no connections remain for the
// identity it is marked offline and last_seen is stamped.
func (h *Hub) Unregister(ctx context.Context, identityID int64, conn Conn) {
	h.mu.Lock()
	entries := h.conns[identityID]
	for i, e := range entries {
		if e.conn == conn {
			h.conns[identityID] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	last := len(h.conns[identityID]) == 0
	if last {
		delete(h.conns, identityID)
	}
	h.mu.Unlock()

	h.log.Debug().Int64("identity_id", identityID).Bool("last", last).Msg("connection unregistered")

	if last {
		if err := h.status.SetOnline(ctx, identityID, false, time.Now()); err != nil {
			h.log.Warn().Err(err).Int64("identity_id", identityID).Msg("failed to mark identity offline")
		}
		h.Broadcast(Event{Type: EventPresence, Data: PresenceData{IdentityID: identityID, IsOnline: false}})
	}
}

// Pong records a heartbeat answer for a connection.
func (h *Hub) Pong(identityID int64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.conns[identityID] {
		if e.conn == conn {
			e.awaitingPong = false
			return
		}
	}
}

// Notify delivers ev to every open connection of the given identities.
// Connections that are not open are skipped; full send buffers drop.
func (h *Hub) Notify(identityIDs []int64, ev Event) {
	h.mu.RLock()
	var targets []Conn
	for _, id := range identityIDs {
		for _, e := range h.conns[id] {
			targets = append(targets, e.conn)
		}
	}
	h.mu.RUnlock()

	drops := 0
	for _, c := range targets {
		if !c.Deliver(ev) {
			drops++
		}
	}
	if drops > 0 {
		h.log.Debug().Str("event", ev.Type).Int("dropped", drops).Msg("fan-out dropped events")
		if h.dropped != nil {
			h.dropped(drops)
		}
	}
}

// Broadcast delivers ev to every open connection.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	var targets []Conn
	for _, entries := range h.conns {
		for _, e := range entries {
			targets = append(targets, e.conn)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.Deliver(ev)
	}
}

// Connections returns the number of open connections for an identity.
func (h *Hub) Connections(identityID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[identityID])
}

// IsOnline reports whether the identity has at least one open connection.
func (h *Hub) IsOnline(identityID int64) bool {
	return h.Connections(identityID) > 0
}

// Run drives the heartbeat until ctx is cancelled. Every interval it pings
// all connections; any connection that did not answer the previous ping is
// forcibly closed. Closing triggers the transport's close path, which calls
// Unregister.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.beat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

func (h *Hub) sweep() {
	h.mu.Lock()
	var stale []Conn
	for _, entries := range h.conns {
		for _, e := range entries {
			if e.awaitingPong {
				stale = append(stale, e.conn)
				continue
			}
			if err := e.conn.Ping(); err != nil {
				stale = append(stale, e.conn)
				continue
			}
			e.awaitingPong = true
		}
	}
	h.mu.Unlock()

	if len(stale) > 0 {
		h.log.Info().Int("connections", len(stale)).Msg("closing unresponsive connections")
		if h.stale != nil {
			h.stale(len(stale))
		}
	}
	for _, c := range stale {
		c.Close()
	}
}
