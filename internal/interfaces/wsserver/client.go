// Package wsserver is the websocket transport feeding the presence hub:
// connection upgrade, read/write pumps and the opaque relay of typing and
// call-signaling frames.
package wsserver

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/presence"
	"campus-chat/chat-api/internal/infrastructure/metrics"
)

const (
	writeTimeout = 10 * time.Second
	pongWait     = 75 * time.Second
)

// Client adapts one gorilla connection to the hub's Conn contract. All frame
// writes happen on the write pump; Ping uses WriteControl, which gorilla
// allows concurrently.
type Client struct {
	identityID int64
	conn       *websocket.Conn
	send       chan presence.Event
	done       chan struct{}
	closeOnce  sync.Once
	log        zerolog.Logger
}

func newClient(identityID int64, conn *websocket.Conn, buffer int, log zerolog.Logger) *Client {
	return &Client{
		identityID: identityID,
		conn:       conn,
		send:       make(chan presence.Event, buffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Deliver enqueues an event for the write pump. A full buffer drops the
// event; delivery is at-most-once by contract.
func (c *Client) Deliver(ev presence.Event) bool {
	select {
	case c.send <- ev:
		metrics.FanoutEvents.WithLabelValues(ev.Type).Inc()
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Ping sends a heartbeat control frame.
func (c *Client) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// Close tears the connection down. Idempotent; the read pump observes the
// closed socket and runs the unregister path.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.log.Debug().Err(err).Int64("identity_id", c.identityID).Msg("websocket write failed")
				c.Close()
				return
			}
		}
	}
}

// readPump blocks until the connection closes, handing every data frame to
// the relay. Pongs feed the hub's heartbeat bookkeeping.
func (c *Client) readPump(hub *presence.Hub, handle func(raw []byte)) {
	c.conn.SetPongHandler(func(string) error {
		hub.Pong(c.identityID, c)
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		handle(raw)
	}
}
