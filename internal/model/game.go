package model

import "time"

type GameStatus string

const (
	GameStatusWaiting  GameStatus = "waiting"
	GameStatusPlaying  GameStatus = "playing"
	GameStatusFinished GameStatus = "finished"
)

// GameSettings are host-configurable rules for a game
type GameSettings struct {
	MaxPlayers    int `json:"maxPlayers" bson:"maxPlayers"`
	TurnSeconds   int `json:"turnSeconds" bson:"turnSeconds"`
	MissionRegens int `json:"missionRegens" bson:"missionRegens"`
	ArbiterWeight int `json:"arbiterWeight" bson:"arbiterWeight"`
}

// DefaultGameSettings returns the standard ruleset
func DefaultGameSettings() GameSettings {
	return GameSettings{
		MaxPlayers:    8,
		TurnSeconds:   120,
		MissionRegens: 3,
		ArbiterWeight: 2,
	}
}

// RoundRecord captures one completed turn
type RoundRecord struct {
	PlayerID     string `json:"playerId" bson:"playerId"`
	Task         string `json:"task" bson:"task"`
	Level        int    `json:"level" bson:"level"`
	Votes        int    `json:"votes" bson:"votes"`
	JokerUsed    bool   `json:"jokerUsed" bson:"jokerUsed"`
	TimeSpentSec int    `json:"timeSpentSec" bson:"timeSpentSec"`
	Success      bool   `json:"success" bson:"success"`
}

type Game struct {
	Code            string        `json:"code" bson:"code"`
	Theme           string        `json:"theme" bson:"theme"`
	HostID          string        `json:"hostId" bson:"hostId"`
	Status          GameStatus    `json:"status" bson:"status"`
	PlayerIDs       []string      `json:"playerIds" bson:"playerIds"` // join order
	ArbiterID       string        `json:"arbiterId" bson:"arbiterId"`
	CurrentPlayerID string        `json:"currentPlayerId" bson:"currentPlayerId"`
	CurrentMission  *Mission      `json:"currentMission,omitempty" bson:"currentMission,omitempty"`
	Rounds          []RoundRecord `json:"rounds" bson:"rounds"`
	Settings        GameSettings  `json:"settings" bson:"settings"`
	CreatedAt       time.Time     `json:"createdAt" bson:"createdAt"`
	StartedAt       *time.Time    `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt         *time.Time    `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// GameMeta is the Redis-cached subset of game state
type GameMeta struct {
	Theme     string       `json:"theme"`
	HostID    string       `json:"hostId"`
	Status    GameStatus   `json:"status"`
	Settings  GameSettings `json:"settings"`
	CreatedAt time.Time    `json:"createdAt"`
}

// GameState is the full snapshot sent to a newly joined player
type GameState struct {
	Code            string     `json:"code"`
	Status          GameStatus `json:"status"`
	Players         []*Player  `json:"players"`
	ArbiterID       string     `json:"arbiterId"`
	CurrentPlayerID string     `json:"currentPlayerId"`
	CurrentMission  *Mission   `json:"currentMission,omitempty"`
}
