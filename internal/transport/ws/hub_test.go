package ws

import (
	"testing"
	"time"
)

// chattyListener re-enters the hub from inside the presence callback, the
// way GameService broadcasts disconnect and game-finished events.
type chattyListener struct {
	hub  *Hub
	done chan struct{}
}

func (l *chattyListener) PlayerConnected(gameCode, playerID string) {}

func (l *chattyListener) PlayerDisconnected(gameCode, playerID string) {
	for i := 0; i < 300; i++ {
		l.hub.BroadcastToGame(gameCode, "timer_update", map[string]int{"secondsLeft": i})
	}
	close(l.done)
}

func TestPresenceCallbackDoesNotBlockHub(t *testing.T) {
	hub := NewHub()
	listener := &chattyListener{hub: hub, done: make(chan struct{})}
	hub.SetPresenceListener(listener)

	conn := &Connection{
		GameCode: "ABC123",
		PlayerID: "p_01",
		Send:     make(chan []byte, 1),
		Hub:      hub,
	}
	hub.Register(conn)
	hub.Unregister(conn)

	// The callback floods the broadcast channel well past its capacity;
	// the hub must keep draining while the callback runs.
	select {
	case <-listener.done:
	case <-time.After(5 * time.Second):
		t.Fatal("presence callback blocked while filling the broadcast channel")
	}

	// The hub must still route messages afterwards
	host := &Connection{
		GameCode: "ABC123",
		IsHost:   true,
		Send:     make(chan []byte, 16),
		Hub:      hub,
	}
	hub.Register(host)
	hub.BroadcastToGame("ABC123", "score_update", map[string]string{"after": "flood"})

	select {
	case <-host.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped delivering after presence flood")
	}
}

func TestBroadcastRouting(t *testing.T) {
	hub := NewHub()

	host := &Connection{GameCode: "G1", IsHost: true, Send: make(chan []byte, 16), Hub: hub}
	p1 := &Connection{GameCode: "G1", PlayerID: "p_01", Send: make(chan []byte, 16), Hub: hub}
	p2 := &Connection{GameCode: "G1", PlayerID: "p_02", Send: make(chan []byte, 16), Hub: hub}
	hub.Register(host)
	hub.Register(p1)
	hub.Register(p2)

	recv := func(t *testing.T, c *Connection, who string) []byte {
		t.Helper()
		select {
		case msg := <-c.Send:
			return msg
		case <-time.After(2 * time.Second):
			t.Fatalf("%s received nothing", who)
			return nil
		}
	}
	silent := func(t *testing.T, c *Connection, who string) {
		t.Helper()
		select {
		case msg := <-c.Send:
			t.Fatalf("%s unexpectedly received %s", who, msg)
		case <-time.After(100 * time.Millisecond):
		}
	}

	hub.BroadcastToGame("G1", "turn_started", map[string]int{"level": 3})
	recv(t, host, "host")
	recv(t, p1, "p_01")
	recv(t, p2, "p_02")

	hub.BroadcastToPlayer("G1", "p_01", "rank_update", map[string]int{"rank": 1})
	recv(t, p1, "p_01")
	silent(t, host, "host")
	silent(t, p2, "p_02")

	hub.BroadcastToHost("G1", "round_recorded", map[string]string{"playerId": "p_01"})
	recv(t, host, "host")
	silent(t, p1, "p_01")
	silent(t, p2, "p_02")

	// Other games see nothing
	hub.BroadcastToGame("G2", "turn_started", nil)
	silent(t, host, "host")
	silent(t, p1, "p_01")
}
