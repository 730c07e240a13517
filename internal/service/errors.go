package service

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrGameFinished   = errors.New("game has finished")
	ErrGameActive     = errors.New("game is still active")
	ErrGameFull       = errors.New("game is full")

	ErrTurnInProgress   = errors.New("a turn is already in progress")
	ErrNotCurrentPlayer = errors.New("not the current turn player")
	ErrNoActiveMission  = errors.New("no active mission")
	ErrMissionInFlight  = errors.New("mission generation already in progress")

	ErrNoRegenerationsLeft = errors.New("no regenerations left")
	ErrInsufficientPoints  = errors.New("insufficient credibility points")
	ErrJokerUsed           = errors.New("joker already used")

	ErrProviderFailure  = errors.New("mission provider failure")
	ErrMalformedMission = errors.New("malformed mission response")
)
