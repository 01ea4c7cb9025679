package service

import (
	"time"

	"github.com/Ivicom76/RoboMeetServer/internal/core/domain"
	"github.com/Ivicom76/RoboMeetServer/internal/core/port"
)

// pendingSignal is one buffered pre-start frame, tagged with the
// destination resolved at receive time.
type pendingSignal struct {
	to  port.Client
	msg domain.SignalMsg
}

// call is one rendezvous attempt between two room members. Owned by its
// room; discarded once ended.
type call struct {
	id      domain.CallID
	caller  *member
	callee  *member
	status  domain.CallStatus
	acked   bool
	pending []pendingSignal
	resends int
	timer   *time.Timer
}

func (c *call) hasParticipant(m *member) bool {
	return m == c.caller || m == c.callee
}

// peerOf returns the other participant, or nil when cl is not part of
// the call.
func (c *call) peerOf(cl port.Client) *member {
	switch cl {
	case c.caller.client:
		return c.callee
	case c.callee.client:
		return c.caller
	}
	return nil
}

func (c *call) stopRing() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Invite creates the room's call if the slot is free and another member
// exists, then starts ringing the callee.
func (s *RoomService) Invite(c port.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.inRoom[c]
	if r == nil {
		_ = c.Send(domain.NewError("not in room"))
		return
	}
	if r.call != nil {
		_ = c.Send(domain.NewBusy(domain.BusyCallActive))
		return
	}

	caller := r.find(c)
	var callee *member
	for _, m := range r.members {
		if m != caller {
			callee = m
			break
		}
	}
	if callee == nil {
		_ = c.Send(domain.NewBusy(domain.BusyNoPeer))
		return
	}

	cl := &call{
		id:     domain.NewCallID(),
		caller: caller,
		callee: callee,
		status: domain.CallRinging,
	}
	r.call = cl

	// invite-ok to the caller strictly before ring to the callee.
	_ = caller.client.Send(domain.NewInviteOK(cl.id))
	_ = callee.client.Send(domain.NewRing(cl.id, caller.name))
	s.armRingLocked(r.key, cl)

	s.log.Info().Str("room", r.key).Str("call_id", cl.id.String()).
		Str("caller", caller.name).Str("callee", callee.name).Msg("Call ringing")
}

// RingAck stops the resends and tells the caller the callee's device is
// ringing. Repeated acks are no-ops.
func (s *RoomService) RingAck(c port.Client, f domain.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cl, ok := s.activeCallLocked(c, f)
	if !ok {
		return
	}
	if c != cl.callee.client || cl.status != domain.CallRinging || cl.acked {
		return
	}
	cl.acked = true
	cl.stopRing()
	_ = cl.caller.client.Send(domain.NewRinging(cl.id))
}

// Accept moves the call to connecting: both sides get start with their
// role, then the pending queue drains in arrival order.
func (s *RoomService) Accept(c port.Client, f domain.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cl, ok := s.activeCallLocked(c, f)
	if !ok {
		return
	}
	if c != cl.callee.client || cl.status != domain.CallRinging {
		return
	}

	cl.stopRing()
	cl.status = domain.CallConnecting
	_ = cl.caller.client.Send(domain.NewStart(cl.id, domain.RoleInitiator))
	_ = cl.callee.client.Send(domain.NewStart(cl.id, domain.RoleCallee))
	for _, p := range cl.pending {
		_ = p.to.Send(p.msg)
	}
	cl.pending = nil

	s.log.Info().Str("call_id", cl.id.String()).Msg("Call connecting")
}

// Decline ends a not-yet-started call. Either participant may decline,
// the caller's decline cancels the outgoing ring.
func (s *RoomService) Decline(c port.Client, f domain.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, cl, ok := s.activeCallLocked(c, f)
	if !ok {
		return
	}
	if cl.peerOf(c) == nil || cl.status != domain.CallRinging {
		return
	}
	s.endCallLocked(r, cl, domain.ReasonDeclined)
}

// Hangup ends the call from either participant, ringing or connected.
func (s *RoomService) Hangup(c port.Client, f domain.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, cl, ok := s.activeCallLocked(c, f)
	if !ok {
		return
	}
	if cl.peerOf(c) == nil {
		return
	}
	s.endCallLocked(r, cl, domain.ReasonHangup)
}

// Signal relays or buffers an offer, answer or ice frame depending on
// call state. The payload is never inspected.
func (s *RoomService) Signal(c port.Client, f domain.Frame) {
	switch f.Type {
	case domain.TypeOffer, domain.TypeAnswer:
		if len(f.SDP) == 0 {
			return
		}
	case domain.TypeICE:
		if len(f.Candidate) == 0 {
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, cl, ok := s.activeCallLocked(c, f)
	if !ok {
		return
	}
	peer := cl.peerOf(c)
	if peer == nil {
		return
	}

	msg := domain.NewSignal(f, cl.id)
	switch cl.status {
	case domain.CallConnecting:
		_ = peer.client.Send(msg)
	case domain.CallRinging:
		cl.pending = append(cl.pending, pendingSignal{to: peer.client, msg: msg})
	}
}

// activeCallLocked resolves the sender's room and matches the frame's
// call id against the room's active call. ok=false means the frame was
// answered with an error or is stale and must be dropped.
func (s *RoomService) activeCallLocked(c port.Client, f domain.Frame) (*room, *call, bool) {
	r := s.inRoom[c]
	if r == nil {
		_ = c.Send(domain.NewError("not in room"))
		return nil, nil, false
	}
	if f.CallID == "" {
		return nil, nil, false
	}
	cl := r.call
	if cl == nil || cl.id.String() != f.CallID {
		return nil, nil, false
	}
	return r, cl, true
}

// endCallLocked broadcasts end to every room member before clearing the
// call slot, so observers see the termination before a new invite can
// land.
func (s *RoomService) endCallLocked(r *room, cl *call, reason domain.EndReason) {
	cl.stopRing()
	cl.status = domain.CallEnded
	cl.pending = nil
	r.broadcast(domain.NewEnd(cl.id, reason))
	r.call = nil

	s.log.Info().Str("room", r.key).Str("call_id", cl.id.String()).
		Str("reason", string(reason)).Msg("Call ended")
}

func (s *RoomService) armRingLocked(roomKey string, cl *call) {
	id := cl.id
	cl.timer = time.AfterFunc(s.ringInterval, func() {
		s.ringFire(roomKey, id)
	})
}

// ringFire re-delivers ring to the callee until acknowledged or the
// bounded count runs out, at which point the call times out. Each fire
// revalidates against current state, stale timers are no-ops.
func (s *RoomService) ringFire(roomKey string, id domain.CallID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.rooms[roomKey]
	if r == nil {
		return
	}
	cl := r.call
	if cl == nil || cl.id != id || cl.status != domain.CallRinging || cl.acked {
		return
	}
	if cl.resends >= s.ringMax {
		s.endCallLocked(r, cl, domain.ReasonTimeout)
		return
	}
	cl.resends++
	_ = cl.callee.client.Send(domain.NewRing(cl.id, cl.caller.name))
	s.armRingLocked(roomKey, cl)
}
