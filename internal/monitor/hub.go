package monitor

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pattr-maidachem/uplink-monitor/internal/logger"
)

type client struct {
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

// Subscribe registers a connected dashboard client. The client
// receives the current snapshot immediately and then on every push
// period until it disconnects. One client dropping never affects the
// others or the sampling loop.
func (s *MonitorService) Subscribe(conn *websocket.Conn) {
	c := &client{conn: conn, done: make(chan struct{})}

	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	count := len(s.clients)
	s.clientsMu.Unlock()

	log := logger.WithComponent("broadcaster")
	log.Info().Str("remote", conn.RemoteAddr().String()).Int("clients", count).Msg("Subscriber connected")

	go s.writePump(c)
	go s.readPump(c)
}

// ClientCount reports the number of connected subscribers.
func (s *MonitorService) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// writePump pushes the current snapshot to one client on its personal
// schedule: once on connect, then once per push period.
func (s *MonitorService) writePump(c *client) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if snapshot := s.Current(); snapshot != nil {
		if err := c.conn.WriteJSON(snapshot); err != nil {
			s.unsubscribe(c)
			return
		}
	}

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			snapshot := s.Current()
			if snapshot == nil {
				continue
			}
			if err := c.conn.WriteJSON(snapshot); err != nil {
				s.unsubscribe(c)
				return
			}
		}
	}
}

// readPump drains the connection; delivery is fire-and-forget, so
// inbound frames are discarded. A read error means the client is gone.
func (s *MonitorService) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.unsubscribe(c)
			return
		}
	}
}

func (s *MonitorService) unsubscribe(c *client) {
	c.once.Do(func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		count := len(s.clients)
		s.clientsMu.Unlock()

		close(c.done)
		c.conn.Close()

		log := logger.WithComponent("broadcaster")
		log.Info().Int("clients", count).Msg("Subscriber disconnected")
	})
}

func (s *MonitorService) closeClients() {
	s.clientsMu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.Unlock()

	for _, c := range clients {
		s.unsubscribe(c)
	}
}
