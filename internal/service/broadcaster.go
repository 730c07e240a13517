package service

// Broadcaster pushes realtime events to connected clients. Delivery is
// at-most-once with no acknowledgment.
type Broadcaster interface {
	BroadcastToGame(gameCode string, msgType string, payload interface{})
	BroadcastToPlayer(gameCode, playerID string, msgType string, payload interface{})
	BroadcastToHost(gameCode string, msgType string, payload interface{})
}
