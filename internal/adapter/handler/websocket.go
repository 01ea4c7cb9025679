package handler

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Ivicom76/RoboMeetServer/internal/core/service"
)

const (
	// Time allowed to write a frame or control message to the peer.
	writeWait = 10 * time.Second

	// Read deadline backstop. The heartbeat supervisor is the liveness
	// authority; this only unblocks a read pump whose TCP peer is fully
	// wedged. Must exceed two sweep intervals.
	pongWait = 75 * time.Second

	// Outbound frames queued per client before drops set in.
	sendQueueSize = 256
)

var errSendQueueFull = errors.New("send queue full")
var errClientClosed = errors.New("client closed")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	// TODO: only for dev
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSClient adapts one websocket connection to the core's client port.
// All data writes go through the send queue and the write pump, control
// frames go out directly via WriteControl.
type WSClient struct {
	id   string
	conn *websocket.Conn

	send chan any
	done chan struct{}

	// alive is cleared by each heartbeat sweep and set by pongs.
	alive     atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn) *WSClient {
	c := &WSClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan any, sendQueueSize),
		done: make(chan struct{}),
	}
	c.alive.Store(true)
	return c
}

func (c *WSClient) ID() string {
	return c.id
}

func (c *WSClient) Alive() bool {
	return !c.closed.Load()
}

// Send queues v for the write pump. Never blocks: a full queue drops
// the frame and the supervisor reaps the peer if it is truly gone.
func (c *WSClient) Send(v any) error {
	if c.closed.Load() {
		return errClientClosed
	}
	select {
	case c.send <- v:
		return nil
	default:
		return errSendQueueFull
	}
}

// Close shuts the channel down with a close frame carrying the reason.
// Safe to call more than once and concurrently with the pumps.
func (c *WSClient) Close(reason string) error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		err = c.conn.Close()
		close(c.done)
	})
	return err
}

func (c *WSClient) ping() {
	_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	for {
		select {
		case v := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(v); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// ServeWS upgrades the connection and runs the read loop until the
// client goes away, then routes it through the leave path.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Error while upgrading ws")
		return
	}

	client := newWSClient(conn)

	l := log.With().Str("client_id", client.id).Logger()
	l.Info().Msg("New client connected")

	h.Supervisor.Register(client)
	go client.writePump()

	defer func() {
		l.Info().Msg("Client disconnected")
		h.Supervisor.Unregister(client)
		h.Rooms.Disconnect(client)
		client.Close("")
	}()

	conn.SetReadLimit(service.MaxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		client.alive.Store(true)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l.Error().Err(err).Msg("Unexpected close error")
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		h.Rooms.Handle(client, data)
	}
}
