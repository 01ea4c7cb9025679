package handler

import (
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultHeartbeatInterval is the liveness sweep period. A client that
// misses two consecutive sweeps without a pong is reaped.
const DefaultHeartbeatInterval = 30 * time.Second

// Supervisor tracks every live websocket client and sweeps them
// periodically: a client still marked alive gets its flag cleared and a
// ping; one that never ponged back is terminated, which routes it
// through the room leave path when its read loop exits.
type Supervisor struct {
	clients    map[*WSClient]struct{}
	register   chan *WSClient
	unregister chan *WSClient
	quit       chan struct{}
	interval   time.Duration
}

func NewSupervisor(interval time.Duration) *Supervisor {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &Supervisor{
		clients:    make(map[*WSClient]struct{}),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		quit:       make(chan struct{}),
		interval:   interval,
	}
}

func (s *Supervisor) Register(c *WSClient) {
	select {
	case s.register <- c:
	case <-s.quit:
	}
}

func (s *Supervisor) Unregister(c *WSClient) {
	select {
	case s.unregister <- c:
	case <-s.quit:
	}
}

func (s *Supervisor) Stop() {
	close(s.quit)
}

// Run owns the client set. All mutation goes through the channels, the
// sweep runs in the same loop.
func (s *Supervisor) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			for c := range s.clients {
				c.Close("shutdown")
				delete(s.clients, c)
			}
			return

		case c := <-s.register:
			s.clients[c] = struct{}{}
			log.Info().Str("client_id", c.ID()).Int("count", len(s.clients)).Msg("Client registered")

		case c := <-s.unregister:
			delete(s.clients, c)

		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Supervisor) sweep() {
	for c := range s.clients {
		if !c.alive.Load() {
			log.Info().Str("client_id", c.ID()).Msg("Reaping unresponsive client")
			// Best effort: closing the socket makes the read loop run
			// the leave path.
			c.Close("heartbeat timeout")
			delete(s.clients, c)
			continue
		}
		c.alive.Store(false)
		c.ping()
	}
}
