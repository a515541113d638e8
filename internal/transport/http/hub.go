package http

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"livequiz-service/internal/domain"
)

// client is one websocket connection. A dedicated writer goroutine drains
// send so that no two goroutines ever write to the conn concurrently.
type client struct {
	id   string
	conn *websocket.Conn
	send chan domain.Event
}

func (c *client) writeLoop() {
	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			log.Debug().Err(err).Str("client", c.id).Msg("ws write error")
			return
		}
	}
}

// Hub maps connection identities to clients and implements app.Notifier.
// Room membership stays in the app layer; the hub only delivers to explicit
// identities.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

// remove drops a client and closes its send channel, which stops the writer.
func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if ok {
		close(c.send)
	}
}

// Send queues an event for one client. It never blocks: events are sent
// while room locks are held, so a slow client drops its oldest queued event
// instead of stalling the room.
func (h *Hub) Send(clientID string, event domain.Event) {
	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case c.send <- event:
	default:
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- event:
		default:
		}
	}
}
