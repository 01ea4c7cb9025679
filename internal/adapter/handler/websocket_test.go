package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, v map[string]any) {
	t.Helper()
	conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readWant reads the next frame of the wanted type. Duplicate ring
// frames are skipped, the resend timer races the test on slow runners.
func readWant(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var m map[string]any
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read (want %q): %v", want, err)
		}
		typ, _ := m["type"].(string)
		if typ == want {
			return m
		}
		if typ == "ring" {
			continue
		}
		t.Fatalf("frame type=%q, want %q (frame=%v)", typ, want, m)
	}
}

func TestCallOverWebSocket(t *testing.T) {
	srv := newTestServer(t, time.Minute)

	alice := dialWS(t, srv)
	bob := dialWS(t, srv)

	sendFrame(t, alice, map[string]any{"type": "join", "room": "r1", "name": "alice"})
	readWant(t, alice, "room-state")

	sendFrame(t, bob, map[string]any{"type": "join", "room": "r1", "name": "bob"})
	st := readWant(t, bob, "room-state")
	peers, _ := st["peers"].([]any)
	if len(peers) != 1 || peers[0] != "alice" {
		t.Fatalf("peers=%v, want [alice]", peers)
	}
	readWant(t, alice, "peer-joined")

	sendFrame(t, alice, map[string]any{"type": "invite"})
	inviteOK := readWant(t, alice, "invite-ok")
	callID, _ := inviteOK["call_id"].(string)
	if callID == "" {
		t.Fatalf("invite-ok without call_id: %v", inviteOK)
	}

	ring := readWant(t, bob, "ring")
	if ring["call_id"] != callID || ring["from"] != "alice" {
		t.Fatalf("ring=%v", ring)
	}

	sendFrame(t, bob, map[string]any{"type": "ring-ack", "call_id": callID})
	readWant(t, alice, "ringing")

	// Pre-start signaling is held back until both sides saw start.
	sendFrame(t, alice, map[string]any{"type": "offer", "call_id": callID, "sdp": "blob-S"})

	sendFrame(t, bob, map[string]any{"type": "accept", "call_id": callID})
	start := readWant(t, alice, "start")
	if start["role"] != "initiator" {
		t.Fatalf("caller role=%v, want initiator", start["role"])
	}
	start = readWant(t, bob, "start")
	if start["role"] != "callee" {
		t.Fatalf("callee role=%v, want callee", start["role"])
	}

	offer := readWant(t, bob, "offer")
	if offer["sdp"] != "blob-S" || offer["call_id"] != callID {
		t.Fatalf("offer=%v", offer)
	}

	sendFrame(t, bob, map[string]any{"type": "answer", "call_id": callID, "sdp": "blob-T"})
	sendFrame(t, bob, map[string]any{"type": "ice", "call_id": callID, "candidate": "cand-C"})
	answer := readWant(t, alice, "answer")
	if answer["sdp"] != "blob-T" {
		t.Fatalf("answer=%v", answer)
	}
	ice := readWant(t, alice, "ice")
	if ice["candidate"] != "cand-C" {
		t.Fatalf("ice=%v", ice)
	}

	sendFrame(t, alice, map[string]any{"type": "hangup", "call_id": callID})
	for _, conn := range []*websocket.Conn{alice, bob} {
		end := readWant(t, conn, "end")
		if end["call_id"] != callID || end["reason"] != "hangup" {
			t.Fatalf("end=%v", end)
		}
	}
}

func TestPeerDisconnectEndsCall(t *testing.T) {
	srv := newTestServer(t, time.Minute)

	alice := dialWS(t, srv)
	bob := dialWS(t, srv)

	sendFrame(t, alice, map[string]any{"type": "join", "room": "r1", "name": "alice"})
	readWant(t, alice, "room-state")
	sendFrame(t, bob, map[string]any{"type": "join", "room": "r1", "name": "bob"})
	readWant(t, bob, "room-state")
	readWant(t, alice, "peer-joined")

	sendFrame(t, alice, map[string]any{"type": "invite"})
	inviteOK := readWant(t, alice, "invite-ok")
	callID, _ := inviteOK["call_id"].(string)
	readWant(t, bob, "ring")
	sendFrame(t, bob, map[string]any{"type": "accept", "call_id": callID})
	readWant(t, alice, "start")
	readWant(t, bob, "start")

	bob.Close()

	end := readWant(t, alice, "end")
	if end["reason"] != "left" {
		t.Fatalf("end=%v, want left", end)
	}
	left := readWant(t, alice, "peer-left")
	if left["name"] != "bob" {
		t.Fatalf("peer-left=%v, want bob", left)
	}
}

func TestHeartbeatReapsSilentPeer(t *testing.T) {
	srv := newTestServer(t, 50*time.Millisecond)

	alice := dialWS(t, srv)
	bob := dialWS(t, srv)

	sendFrame(t, alice, map[string]any{"type": "join", "room": "r1", "name": "alice"})
	readWant(t, alice, "room-state")
	sendFrame(t, bob, map[string]any{"type": "join", "room": "r1", "name": "bob"})
	readWant(t, bob, "room-state")
	readWant(t, alice, "peer-joined")

	// Bob never reads again, so his side never answers pings. Two
	// sweeps later the supervisor reaps him and alice sees the leave.
	left := readWant(t, alice, "peer-left")
	if left["name"] != "bob" {
		t.Fatalf("peer-left=%v, want bob", left)
	}
}
