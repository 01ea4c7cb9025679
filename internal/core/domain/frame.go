package domain

import "encoding/json"

// Message types on the wire. Client to server.
const (
	TypeJoin      = "join"
	TypeInvite    = "invite"
	TypeRingAck   = "ring-ack"
	TypeAccept    = "accept"
	TypeDecline   = "decline"
	TypeHangup    = "hangup"
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeICE       = "ice"
	TypeLeaveRoom = "leave-room"
)

// Server to client.
const (
	TypeRoomState  = "room-state"
	TypePeerJoined = "peer-joined"
	TypePeerLeft   = "peer-left"
	TypeInviteOK   = "invite-ok"
	TypeRing       = "ring"
	TypeRinging    = "ringing"
	TypeStart      = "start"
	TypeEnd        = "end"
	TypeBusy       = "busy"
	TypeError      = "error"
	TypeLeft       = "left"
)

// DefaultPeerName is used when a join carries no display name.
const DefaultPeerName = "peer"

// Frame is one inbound client message. SDP and candidate payloads stay
// raw, the server relays them without looking inside.
type Frame struct {
	Type      string          `json:"type"`
	Room      string          `json:"room,omitempty"`
	Name      string          `json:"name,omitempty"`
	CallID    string          `json:"call_id,omitempty"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Outbound payloads, one struct per frame shape.

type RoomStateMsg struct {
	Type  string   `json:"type"`
	Room  string   `json:"room"`
	Peers []string `json:"peers"`
}

func NewRoomState(room string, peers []string) RoomStateMsg {
	if peers == nil {
		peers = []string{}
	}
	return RoomStateMsg{Type: TypeRoomState, Room: room, Peers: peers}
}

type PeerMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func NewPeerJoined(name string) PeerMsg { return PeerMsg{Type: TypePeerJoined, Name: name} }
func NewPeerLeft(name string) PeerMsg   { return PeerMsg{Type: TypePeerLeft, Name: name} }

type InviteOKMsg struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
}

func NewInviteOK(id CallID) InviteOKMsg {
	return InviteOKMsg{Type: TypeInviteOK, CallID: id.String()}
}

type RingMsg struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	From   string `json:"from"`
}

func NewRing(id CallID, from string) RingMsg {
	return RingMsg{Type: TypeRing, CallID: id.String(), From: from}
}

type RingingMsg struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
}

func NewRinging(id CallID) RingingMsg {
	return RingingMsg{Type: TypeRinging, CallID: id.String()}
}

type StartMsg struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Role   Role   `json:"role"`
}

func NewStart(id CallID, role Role) StartMsg {
	return StartMsg{Type: TypeStart, CallID: id.String(), Role: role}
}

type EndMsg struct {
	Type   string    `json:"type"`
	CallID string    `json:"call_id"`
	Reason EndReason `json:"reason"`
}

func NewEnd(id CallID, reason EndReason) EndMsg {
	return EndMsg{Type: TypeEnd, CallID: id.String(), Reason: reason}
}

type BusyMsg struct {
	Type   string     `json:"type"`
	Reason BusyReason `json:"reason"`
}

func NewBusy(reason BusyReason) BusyMsg { return BusyMsg{Type: TypeBusy, Reason: reason} }

type ErrorMsg struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

func NewError(msg string) ErrorMsg { return ErrorMsg{Type: TypeError, Msg: msg} }

type LeftMsg struct {
	Type string `json:"type"`
}

func NewLeft() LeftMsg { return LeftMsg{Type: TypeLeft} }

// SignalMsg is a relayed offer, answer or ice frame. The call_id is
// preserved and the payload forwarded byte for byte.
type SignalMsg struct {
	Type      string          `json:"type"`
	CallID    string          `json:"call_id"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

func NewSignal(f Frame, id CallID) SignalMsg {
	return SignalMsg{Type: f.Type, CallID: id.String(), SDP: f.SDP, Candidate: f.Candidate}
}
