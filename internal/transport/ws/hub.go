package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PresenceListener is notified when player connections come and go
type PresenceListener interface {
	PlayerConnected(gameCode, playerID string)
	PlayerDisconnected(gameCode, playerID string)
}

// Hub manages WebSocket connections for games
type Hub struct {
	// Game -> connections
	hostConns   map[string]*Connection
	playerConns map[string]map[string]*Connection // gameCode -> playerID -> conn

	mu sync.RWMutex

	presence PresenceListener

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	GameCode string
	PlayerID string // Empty for host connections
	IsHost   bool
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	GameCode string
	ToHost   bool
	ToAll    bool   // Host plus every player
	ToPlayer string // Empty means all players, specific ID means one player
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		hostConns:   make(map[string]*Connection),
		playerConns: make(map[string]map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

// SetPresenceListener wires connection events into the round controller
func (h *Hub) SetPresenceListener(l PresenceListener) {
	h.presence = l
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsHost {
				h.hostConns[conn.GameCode] = conn
				log.Printf("Host connected to game %s", conn.GameCode)
			} else {
				if h.playerConns[conn.GameCode] == nil {
					h.playerConns[conn.GameCode] = make(map[string]*Connection)
				}
				h.playerConns[conn.GameCode][conn.PlayerID] = conn
				log.Printf("Player %s connected to game %s", conn.PlayerID, conn.GameCode)
			}
			h.mu.Unlock()

			// Presence callbacks re-enter the hub through broadcasts, so
			// they must not run on the loop draining the broadcast channel.
			if !conn.IsHost && h.presence != nil {
				go h.presence.PlayerConnected(conn.GameCode, conn.PlayerID)
			}

		case conn := <-h.unregister:
			dropped := false
			h.mu.Lock()
			if conn.IsHost {
				if existing, ok := h.hostConns[conn.GameCode]; ok && existing == conn {
					delete(h.hostConns, conn.GameCode)
					close(conn.Send)
					log.Printf("Host disconnected from game %s", conn.GameCode)
				}
			} else {
				if players, ok := h.playerConns[conn.GameCode]; ok {
					if existing, ok := players[conn.PlayerID]; ok && existing == conn {
						delete(players, conn.PlayerID)
						close(conn.Send)
						dropped = true
						log.Printf("Player %s disconnected from game %s", conn.PlayerID, conn.GameCode)
					}
				}
			}
			h.mu.Unlock()

			if dropped && h.presence != nil {
				go h.presence.PlayerDisconnected(conn.GameCode, conn.PlayerID)
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToHost || msg.ToAll {
				if conn, ok := h.hostConns[msg.GameCode]; ok {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			}
			if !msg.ToHost || msg.ToAll {
				if msg.ToPlayer != "" {
					// Send to specific player
					if players, ok := h.playerConns[msg.GameCode]; ok {
						if conn, ok := players[msg.ToPlayer]; ok {
							select {
							case conn.Send <- data:
							default:
							}
						}
					}
				} else {
					// Broadcast to all players
					if players, ok := h.playerConns[msg.GameCode]; ok {
						for _, conn := range players {
							select {
							case conn.Send <- data:
							default:
							}
						}
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToGame sends a message to the host and every player in a game
// (implements service.Broadcaster)
func (h *Hub) BroadcastToGame(gameCode string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		GameCode: gameCode,
		ToAll:    true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToPlayer sends a message to a specific player (implements
// service.Broadcaster)
func (h *Hub) BroadcastToPlayer(gameCode, playerID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		GameCode: gameCode,
		ToPlayer: playerID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToHost sends a message to the game host (implements
// service.Broadcaster)
func (h *Hub) BroadcastToHost(gameCode string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		GameCode: gameCode,
		ToHost:   true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
