package model

import "time"

// Player represents a participant in a game
type Player struct {
	ID                string    `json:"id" bson:"_id,omitempty"`
	GameCode          string    `json:"gameCode" bson:"gameCode"`
	Name              string    `json:"name" bson:"name"`
	CredibilityPoints int       `json:"credibilityPoints" bson:"credibilityPoints"`
	HasJoker          bool      `json:"hasJoker" bson:"hasJoker"`
	Score             int       `json:"score" bson:"score"`
	Level             int       `json:"level" bson:"level"`
	Connected         bool      `json:"connected" bson:"connected"`
	JoinedAt          time.Time `json:"joinedAt" bson:"joinedAt"`
	LastActiveAt      time.Time `json:"lastActiveAt" bson:"lastActiveAt"`
}

// JoinResponse is returned when a player joins a game
type JoinResponse struct {
	PlayerID string     `json:"playerId"`
	Token    string     `json:"token"`
	Game     *GameState `json:"game"`
}
