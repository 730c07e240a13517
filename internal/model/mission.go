package model

import "time"

// Mission is a generated performance prompt
type Mission struct {
	Task              string `json:"task" bson:"task"`
	Suggestion        string `json:"suggestion" bson:"suggestion"`
	Level             int    `json:"level" bson:"level"`
	RegenerationsLeft int    `json:"regenerationsLeft" bson:"regenerationsLeft"`
}

// MissionPerformance is post-hoc feedback recorded after a turn
type MissionPerformance struct {
	Success      bool `json:"success" bson:"success"`
	TimeSpentSec int  `json:"timeSpentSec" bson:"timeSpentSec"`
	JokerUsed    bool `json:"jokerUsed" bson:"jokerUsed"`
}

// MissionRecord is one row of per-player mission history
type MissionRecord struct {
	ID                string              `json:"id" bson:"_id,omitempty"`
	PlayerID          string              `json:"playerId" bson:"playerId"`
	GameCode          string              `json:"gameCode" bson:"gameCode"`
	Level             int                 `json:"level" bson:"level"`
	Theme             string              `json:"theme" bson:"theme"`
	Task              string              `json:"task" bson:"task"`
	Suggestion        string              `json:"suggestion" bson:"suggestion"`
	RegenerationsLeft int                 `json:"regenerationsLeft" bson:"regenerationsLeft"`
	Performance       *MissionPerformance `json:"performance,omitempty" bson:"performance,omitempty"`
	CreatedAt         time.Time           `json:"createdAt" bson:"createdAt"`
}
