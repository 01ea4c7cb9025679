package service

import (
	"encoding/json"

	"github.com/Ivicom76/RoboMeetServer/internal/core/domain"
	"github.com/Ivicom76/RoboMeetServer/internal/core/port"
)

// MaxFrameBytes caps one inbound frame. The websocket read limit
// enforces the same bound at the socket.
const MaxFrameBytes = 64 * 1024

// Handle parses one raw inbound frame and dispatches it. Frames that
// are oversized or fail to parse as JSON objects are dropped silently.
func (s *RoomService) Handle(c port.Client, data []byte) {
	if len(data) > MaxFrameBytes {
		return
	}
	var f domain.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return
	}
	s.Dispatch(c, f)
}

// Dispatch routes one frame to its room or call operation. Exactly one
// state transition or relay per frame.
func (s *RoomService) Dispatch(c port.Client, f domain.Frame) {
	switch f.Type {
	case "":
		// missing type, treated as malformed
	case domain.TypeJoin:
		s.Join(c, f.Room, f.Name)
	case domain.TypeLeaveRoom:
		s.LeaveRoom(c)
	case domain.TypeInvite:
		s.Invite(c)
	case domain.TypeRingAck:
		s.RingAck(c, f)
	case domain.TypeAccept:
		s.Accept(c, f)
	case domain.TypeDecline:
		s.Decline(c, f)
	case domain.TypeHangup:
		s.Hangup(c, f)
	case domain.TypeOffer, domain.TypeAnswer, domain.TypeICE:
		s.Signal(c, f)
	default:
		_ = c.Send(domain.NewError("unknown message type"))
	}
}
