package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Ivicom76/RoboMeetServer/internal/core/domain"
	"github.com/Ivicom76/RoboMeetServer/internal/core/port"
)

// Ring resend schedule. The product bounds how long a call may sit
// unacknowledged before the server gives up.
const (
	DefaultRingInterval   = 800 * time.Millisecond
	DefaultRingMaxResends = 6
)

type member struct {
	client port.Client
	name   string
}

// room holds the members of one rendezvous scope and its at most one
// active call. All access goes through the owning RoomService lock.
type room struct {
	key     string
	members []*member
	call    *call
}

func (r *room) find(c port.Client) *member {
	for _, m := range r.members {
		if m.client == c {
			return m
		}
	}
	return nil
}

func (r *room) findName(name string) *member {
	for _, m := range r.members {
		if m.name == name {
			return m
		}
	}
	return nil
}

func (r *room) peerNames() []string {
	names := make([]string, 0, len(r.members))
	for _, m := range r.members {
		names = append(names, m.name)
	}
	return names
}

func (r *room) remove(m *member) {
	for i, cur := range r.members {
		if cur == m {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return
		}
	}
}

func (r *room) broadcast(v any) {
	for _, m := range r.members {
		_ = m.client.Send(v)
	}
}

func (r *room) broadcastExcept(c port.Client, v any) {
	for _, m := range r.members {
		if m.client == c {
			continue
		}
		_ = m.client.Send(v)
	}
}

// RoomService owns the room registry and serializes every state
// transition behind one lock, so the single-call and unique-name
// invariants hold without finer locking. Timer fires and disconnects
// enter through the same lock.
type RoomService struct {
	mu     sync.Mutex
	rooms  map[string]*room
	inRoom map[port.Client]*room

	ringInterval time.Duration
	ringMax      int
	log          zerolog.Logger
}

type Options struct {
	RingInterval   time.Duration
	RingMaxResends int
	Logger         *zerolog.Logger
}

func NewRoomService(opts Options) *RoomService {
	s := &RoomService{
		rooms:        make(map[string]*room),
		inRoom:       make(map[port.Client]*room),
		ringInterval: opts.RingInterval,
		ringMax:      opts.RingMaxResends,
		log:          log.Logger,
	}
	if s.ringInterval <= 0 {
		s.ringInterval = DefaultRingInterval
	}
	if s.ringMax <= 0 {
		s.ringMax = DefaultRingMaxResends
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	return s
}

// Join admits c to the named room under the given display name,
// evicting a prior holder of that name. A client already in a room
// leaves it first.
func (s *RoomService) Join(c port.Client, roomKey, name string) {
	if roomKey == "" {
		return
	}
	if name == "" {
		name = domain.DefaultPeerName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inRoom[c]; ok {
		s.leaveLocked(c, prev)
	}

	r := s.rooms[roomKey]
	if r == nil {
		r = &room{key: roomKey}
	}

	// Drop members whose channel already closed, so the name check and
	// the peer list never see corpses.
	for _, m := range append([]*member(nil), r.members...) {
		if !m.client.Alive() {
			s.leaveLocked(m.client, r)
		}
	}

	if m := r.findName(name); m != nil {
		_ = m.client.Close("replaced")
		s.leaveLocked(m.client, r)
		s.log.Info().Str("room", roomKey).Str("name", name).Msg("Evicted prior name holder")
	}

	peers := r.peerNames()
	r.members = append(r.members, &member{client: c, name: name})
	s.inRoom[c] = r
	s.rooms[roomKey] = r

	_ = c.Send(domain.NewRoomState(roomKey, peers))
	r.broadcastExcept(c, domain.NewPeerJoined(name))

	s.log.Info().Str("client_id", c.ID()).Str("room", roomKey).Str("name", name).
		Int("count", len(r.members)).Msg("Client joined room")
}

// LeaveRoom handles an explicit leave-room frame. Safe to send when not
// in a room, the reply is the same.
func (s *RoomService) LeaveRoom(c port.Client) {
	s.mu.Lock()
	if r, ok := s.inRoom[c]; ok {
		s.leaveLocked(c, r)
	}
	s.mu.Unlock()
	_ = c.Send(domain.NewLeft())
}

// Disconnect runs the leave path for a closed channel. Called from the
// transport when a read pump exits, which is also how a heartbeat
// termination reaches it.
func (s *RoomService) Disconnect(c port.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.inRoom[c]; ok {
		s.leaveLocked(c, r)
	}
}

// leaveLocked removes c from r: ends the active call first if c is a
// participant, broadcasts peer-left, and drops the room when it empties.
func (s *RoomService) leaveLocked(c port.Client, r *room) {
	m := r.find(c)
	delete(s.inRoom, c)
	if m == nil {
		return
	}

	if cl := r.call; cl != nil && cl.hasParticipant(m) {
		s.endCallLocked(r, cl, domain.ReasonLeft)
	}

	r.remove(m)
	r.broadcast(domain.NewPeerLeft(m.name))

	if len(r.members) == 0 {
		delete(s.rooms, r.key)
		s.log.Info().Str("room", r.key).Msg("Room deleted")
		return
	}
	s.log.Info().Str("client_id", c.ID()).Str("room", r.key).Str("name", m.name).
		Int("count", len(r.members)).Msg("Client left room")
}
