package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"sync"
	"time"

	"splenderra/internal/cache"
	"splenderra/internal/model"
	"splenderra/internal/repository"

	"github.com/google/uuid"
)

// Realtime event names
const (
	EventPlayerJoined       = "player_joined"
	EventPlayerReconnected  = "player_reconnected"
	EventPlayerDisconnected = "player_disconnected"
	EventTurnStarted        = "turn_started"
	EventTimerUpdate        = "timer_update"
	EventTimerAlert         = "timer_alert"
	EventTurnEnded          = "turn_ended"
	EventTurnCompleted      = "turn_completed"
	EventMissionRegenerated = "mission_regenerated"
	EventScoreUpdate        = "score_update"
	EventRankUpdate         = "rank_update"
	EventRoundRecorded      = "round_recorded"
	EventJokerUsed          = "joker_used"
	EventGameFinished       = "game_finished"
)

// turnState tracks the live countdown and per-turn tallies for one game.
// Owned by GameService; cancelled when the turn or the game ends.
type turnState struct {
	playerID  string
	startedAt time.Time
	votes     int
	jokerUsed bool
	stop      chan struct{}
	stopOnce  sync.Once
}

func (t *turnState) cancel() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// GameService is the round controller: it owns the game lifecycle state
// machine and serializes all operations against one game code.
type GameService struct {
	gameRepo    repository.GameRepo
	playerRepo  repository.PlayerRepo
	missionRepo repository.MissionRepo
	gameCache   cache.GameCache
	leaderboard cache.LeaderboardCache
	authSvc     *AuthService
	provider    MissionProvider
	broadcaster Broadcaster

	mu         sync.Mutex
	locks      map[string]*sync.Mutex
	turns      map[string]*turnState
	generating map[string]bool

	clock func() time.Time
	newID func() string
}

// NewGameService creates a new game service
func NewGameService(
	gameRepo repository.GameRepo,
	playerRepo repository.PlayerRepo,
	missionRepo repository.MissionRepo,
	gameCache cache.GameCache,
	leaderboard cache.LeaderboardCache,
	authSvc *AuthService,
	provider MissionProvider,
) *GameService {
	return &GameService{
		gameRepo:    gameRepo,
		playerRepo:  playerRepo,
		missionRepo: missionRepo,
		gameCache:   gameCache,
		leaderboard: leaderboard,
		authSvc:     authSvc,
		provider:    provider,
		locks:       make(map[string]*sync.Mutex),
		turns:       make(map[string]*turnState),
		generating:  make(map[string]bool),
		clock:       time.Now,
		newID: func() string {
			return "p_" + uuid.New().String()[:8]
		},
	}
}

// SetBroadcaster sets the broadcaster for realtime events
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// lockFor returns the mutex serializing operations on one game code
func (s *GameService) lockFor(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[code]
	if !ok {
		l = &sync.Mutex{}
		s.locks[code] = l
	}
	return l
}

func (s *GameService) setGenerating(code string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v {
		s.generating[code] = true
	} else {
		delete(s.generating, code)
	}
}

func (s *GameService) isGenerating(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating[code]
}

func (s *GameService) currentTurn(code string) *turnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns[code]
}

// takeTurnState removes and cancels the countdown for a game, if any
func (s *GameService) takeTurnState(code string) *turnState {
	s.mu.Lock()
	ts := s.turns[code]
	delete(s.turns, code)
	s.mu.Unlock()
	if ts != nil {
		ts.cancel()
	}
	return ts
}

func (s *GameService) loadGame(ctx context.Context, code string) (*model.Game, error) {
	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (s *GameService) loadPlayer(ctx context.Context, code, playerID string) (*model.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil || player.GameCode != code {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

func (s *GameService) broadcast(code, event string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToGame(code, event, payload)
}

func (s *GameService) broadcastToPlayer(code, playerID, event string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToPlayer(code, playerID, event, payload)
}

func (s *GameService) broadcastToHost(code, event string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToHost(code, event, payload)
}

// CreateGame creates a new game with a unique join code
func (s *GameService) CreateGame(ctx context.Context, hostID, theme string, settings *model.GameSettings) (*model.Game, error) {
	cfg := model.DefaultGameSettings()
	if settings != nil {
		if settings.MaxPlayers > 0 {
			cfg.MaxPlayers = settings.MaxPlayers
		}
		if settings.TurnSeconds > 0 {
			cfg.TurnSeconds = settings.TurnSeconds
		}
		if settings.MissionRegens > 0 {
			cfg.MissionRegens = settings.MissionRegens
		}
		if settings.ArbiterWeight > 0 {
			cfg.ArbiterWeight = settings.ArbiterWeight
		}
	}

	code, err := s.generateGameCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate game code: %w", err)
	}

	game := &model.Game{
		Code:      code,
		Theme:     theme,
		HostID:    hostID,
		Status:    model.GameStatusWaiting,
		PlayerIDs: []string{},
		Settings:  cfg,
		CreatedAt: s.clock(),
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	meta := &model.GameMeta{
		Theme:     theme,
		HostID:    hostID,
		Status:    model.GameStatusWaiting,
		Settings:  cfg,
		CreatedAt: game.CreatedAt,
	}
	if err := s.gameCache.SetMeta(ctx, code, meta); err != nil {
		return nil, fmt.Errorf("failed to cache game: %w", err)
	}

	return game, nil
}

// GetGame retrieves a game by code
func (s *GameService) GetGame(ctx context.Context, code string) (*model.Game, error) {
	return s.gameRepo.GetByCode(ctx, code)
}

// GetState builds the full snapshot sent to joining clients
func (s *GameService) GetState(ctx context.Context, code string) (*model.GameState, error) {
	game, err := s.loadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	players, err := s.playerRepo.GetByGameCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return &model.GameState{
		Code:            game.Code,
		Status:          game.Status,
		Players:         players,
		ArbiterID:       game.ArbiterID,
		CurrentPlayerID: game.CurrentPlayerID,
		CurrentMission:  game.CurrentMission,
	}, nil
}

// Join adds a player to a game. Players are never removed afterwards, only
// marked disconnected.
func (s *GameService) Join(ctx context.Context, code, name string) (*model.JoinResponse, error) {
	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.loadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.Status == model.GameStatusFinished {
		return nil, ErrGameFinished
	}
	if len(game.PlayerIDs) >= game.Settings.MaxPlayers {
		return nil, ErrGameFull
	}

	playerID := s.newID()
	token, err := s.authSvc.GeneratePlayerToken(code, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.clock()
	player := &model.Player{
		ID:                playerID,
		GameCode:          code,
		Name:              name,
		CredibilityPoints: 1,
		HasJoker:          true,
		Score:             0,
		Level:             1,
		Connected:         true,
		JoinedAt:          now,
		LastActiveAt:      now,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}

	game.PlayerIDs = append(game.PlayerIDs, playerID)
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err := s.leaderboard.UpdateScore(ctx, code, playerID, 0); err != nil {
		return nil, fmt.Errorf("failed to init leaderboard: %w", err)
	}

	s.broadcast(code, EventPlayerJoined, map[string]interface{}{
		"playerId":  player.ID,
		"name":      player.Name,
		"score":     player.Score,
		"hasJoker":  player.HasJoker,
		"connected": true,
	})

	state, err := s.GetState(ctx, code)
	if err != nil {
		return nil, err
	}

	return &model.JoinResponse{
		PlayerID: playerID,
		Token:    token,
		Game:     state,
	}, nil
}

// StartTurn generates a mission and begins the countdown for one player.
// A failed generation leaves the game untouched.
func (s *GameService) StartTurn(ctx context.Context, code, playerID string, level int) (*model.Mission, error) {
	lock := s.lockFor(code)
	lock.Lock()

	game, err := s.loadGame(ctx, code)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if game.Status == model.GameStatusFinished {
		lock.Unlock()
		return nil, ErrGameFinished
	}
	if game.Status == model.GameStatusPlaying {
		lock.Unlock()
		return nil, ErrTurnInProgress
	}
	if !contains(game.PlayerIDs, playerID) {
		lock.Unlock()
		return nil, ErrPlayerNotFound
	}
	if s.isGenerating(code) {
		lock.Unlock()
		return nil, ErrMissionInFlight
	}
	s.setGenerating(code, true)
	theme := game.Theme

	// Generation is the only latent call; release the game lock while the
	// in-flight flag blocks a second request.
	lock.Unlock()
	mission, genErr := s.provider.Generate(ctx, level, theme, 0)
	lock.Lock()
	defer lock.Unlock()
	s.setGenerating(code, false)

	if genErr != nil {
		return nil, genErr
	}

	game, err = s.loadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	// The game may have moved on while the lock was released
	if game.Status == model.GameStatusFinished {
		return nil, ErrGameFinished
	}
	if game.Status != model.GameStatusWaiting {
		return nil, ErrTurnInProgress
	}

	mission.RegenerationsLeft = game.Settings.MissionRegens
	game.CurrentMission = mission
	game.CurrentPlayerID = playerID
	game.Status = model.GameStatusPlaying
	if game.StartedAt == nil {
		now := s.clock()
		game.StartedAt = &now
	}
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	if err := s.gameCache.SetStatus(ctx, code, model.GameStatusPlaying); err != nil {
		log.Printf("game %s: failed to cache status: %v", code, err)
	}

	record := &model.MissionRecord{
		PlayerID:          playerID,
		GameCode:          code,
		Level:             mission.Level,
		Theme:             theme,
		Task:              mission.Task,
		Suggestion:        mission.Suggestion,
		RegenerationsLeft: mission.RegenerationsLeft,
		CreatedAt:         s.clock(),
	}
	if err := s.missionRepo.Create(ctx, record); err != nil {
		log.Printf("game %s: failed to record mission: %v", code, err)
	}

	s.startCountdown(code, playerID, game.Settings.TurnSeconds)

	s.broadcast(code, EventTurnStarted, map[string]interface{}{
		"currentPlayerId": playerID,
		"mission":         mission,
		"level":           mission.Level,
	})

	return mission, nil
}

// RegenerateMission replaces the active mission, spending one regeneration.
// Fails with ErrNoRegenerationsLeft once the budget is exhausted; a provider
// failure consumes no budget and leaves the mission unchanged.
func (s *GameService) RegenerateMission(ctx context.Context, code, playerID string, level int) (*model.Mission, error) {
	lock := s.lockFor(code)
	lock.Lock()

	game, err := s.loadGame(ctx, code)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if game.CurrentMission == nil {
		lock.Unlock()
		return nil, ErrNoActiveMission
	}
	if game.CurrentPlayerID != playerID {
		lock.Unlock()
		return nil, ErrNotCurrentPlayer
	}
	if game.CurrentMission.RegenerationsLeft <= 0 {
		lock.Unlock()
		return nil, ErrNoRegenerationsLeft
	}
	if s.isGenerating(code) {
		lock.Unlock()
		return nil, ErrMissionInFlight
	}
	s.setGenerating(code, true)
	theme := game.Theme
	regenIndex := game.Settings.MissionRegens - game.CurrentMission.RegenerationsLeft + 1

	lock.Unlock()
	mission, genErr := s.provider.Generate(ctx, level, theme, regenIndex)
	lock.Lock()
	defer lock.Unlock()
	s.setGenerating(code, false)

	if genErr != nil {
		return nil, genErr
	}

	game, err = s.loadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.CurrentMission == nil || game.CurrentPlayerID != playerID {
		return nil, ErrNoActiveMission
	}
	if game.CurrentMission.RegenerationsLeft <= 0 {
		return nil, ErrNoRegenerationsLeft
	}

	mission.RegenerationsLeft = game.CurrentMission.RegenerationsLeft - 1
	game.CurrentMission = mission
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	record := &model.MissionRecord{
		PlayerID:          playerID,
		GameCode:          code,
		Level:             mission.Level,
		Theme:             theme,
		Task:              mission.Task,
		Suggestion:        mission.Suggestion,
		RegenerationsLeft: mission.RegenerationsLeft,
		CreatedAt:         s.clock(),
	}
	if err := s.missionRepo.Create(ctx, record); err != nil {
		log.Printf("game %s: failed to record mission: %v", code, err)
	}

	s.broadcast(code, EventMissionRegenerated, map[string]interface{}{
		"currentPlayerId": playerID,
		"mission":         mission,
	})

	return mission, nil
}

// Vote spends one of the voter's credibility points (two for an
// arbiter-weighted vote) and awards the same amount to the target. The
// arbiter is recomputed in the same step.
func (s *GameService) Vote(ctx context.Context, code, voterID, targetID string, arbiterVote bool) error {
	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.loadGame(ctx, code)
	if err != nil {
		return err
	}
	if game.Status == model.GameStatusFinished {
		return ErrGameFinished
	}

	voter, err := s.loadPlayer(ctx, code, voterID)
	if err != nil {
		return err
	}
	target, err := s.loadPlayer(ctx, code, targetID)
	if err != nil {
		return err
	}

	cost := 1
	if arbiterVote {
		cost = game.Settings.ArbiterWeight
	}
	if voter.CredibilityPoints < cost {
		return ErrInsufficientPoints
	}

	now := s.clock()
	voter.CredibilityPoints -= cost
	voter.LastActiveAt = now
	target.Score += cost
	target.LastActiveAt = now
	if target.Score >= target.Level*3 && target.Level < 10 {
		target.Level++
	}

	if err := s.playerRepo.Update(ctx, voter); err != nil {
		return fmt.Errorf("failed to update voter: %w", err)
	}
	if err := s.playerRepo.Update(ctx, target); err != nil {
		return fmt.Errorf("failed to update target: %w", err)
	}

	players, err := s.playerRepo.GetByGameCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	game.ArbiterID = computeArbiter(game.PlayerIDs, players)
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	if ts := s.currentTurn(code); ts != nil && ts.playerID == targetID {
		ts.votes += cost
	}

	if err := s.leaderboard.UpdateScore(ctx, code, targetID, target.Score); err != nil {
		log.Printf("game %s: failed to update leaderboard: %v", code, err)
	} else if rank, err := s.leaderboard.GetRank(ctx, code, targetID); err == nil && rank > 0 {
		s.broadcastToPlayer(code, targetID, EventRankUpdate, map[string]interface{}{
			"playerId": targetID,
			"score":    target.Score,
			"rank":     rank,
		})
	}

	s.broadcast(code, EventScoreUpdate, map[string]interface{}{
		"players":   players,
		"arbiterId": game.ArbiterID,
	})

	return nil
}

// UseJoker consumes the player's one-time joker and announces it. The joker
// carries no further mechanical effect.
func (s *GameService) UseJoker(ctx context.Context, code, playerID, targetID string) error {
	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.loadGame(ctx, code)
	if err != nil {
		return err
	}
	if game.Status == model.GameStatusFinished {
		return ErrGameFinished
	}

	player, err := s.loadPlayer(ctx, code, playerID)
	if err != nil {
		return err
	}
	target, err := s.loadPlayer(ctx, code, targetID)
	if err != nil {
		return err
	}

	if !player.HasJoker {
		return ErrJokerUsed
	}

	player.HasJoker = false
	player.LastActiveAt = s.clock()
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	if ts := s.currentTurn(code); ts != nil && ts.playerID == playerID {
		ts.jokerUsed = true
	}

	s.broadcast(code, EventJokerUsed, map[string]interface{}{
		"playerId":   player.ID,
		"targetId":   target.ID,
		"playerName": player.Name,
		"targetName": target.Name,
	})

	return nil
}

// EndTurn completes the current turn with an explicit success judgment
func (s *GameService) EndTurn(ctx context.Context, code, playerID string, success bool) error {
	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.loadGame(ctx, code)
	if err != nil {
		return err
	}
	if game.Status != model.GameStatusPlaying || game.CurrentMission == nil {
		return ErrNoActiveMission
	}
	if game.CurrentPlayerID != playerID {
		return ErrNotCurrentPlayer
	}

	return s.completeTurn(ctx, game, success, EventTurnCompleted)
}

// expireTurn is invoked by the countdown reaching zero. The turn may have
// ended explicitly in the meantime, so everything is revalidated under the
// game lock.
func (s *GameService) expireTurn(code, playerID string) {
	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	ctx := context.Background()
	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil || game == nil {
		return
	}
	if game.Status != model.GameStatusPlaying || game.CurrentPlayerID != playerID || game.CurrentMission == nil {
		return
	}

	if err := s.completeTurn(ctx, game, false, EventTurnEnded); err != nil {
		log.Printf("game %s: failed to expire turn: %v", code, err)
	}
}

// completeTurn records the round, rotates the current player and returns the
// game to waiting. Caller must hold the game lock.
func (s *GameService) completeTurn(ctx context.Context, game *model.Game, success bool, event string) error {
	ts := s.takeTurnState(game.Code)

	timeSpent := game.Settings.TurnSeconds
	votes := 0
	jokerUsed := false
	if ts != nil {
		elapsed := int(s.clock().Sub(ts.startedAt).Seconds())
		if elapsed >= 0 && elapsed < timeSpent {
			timeSpent = elapsed
		}
		votes = ts.votes
		jokerUsed = ts.jokerUsed
	}

	ended := game.CurrentPlayerID
	round := model.RoundRecord{
		PlayerID:     ended,
		Task:         game.CurrentMission.Task,
		Level:        game.CurrentMission.Level,
		Votes:        votes,
		JokerUsed:    jokerUsed,
		TimeSpentSec: timeSpent,
		Success:      success,
	}
	game.Rounds = append(game.Rounds, round)

	records, err := s.missionRepo.GetByPlayerAndGame(ctx, ended, game.Code)
	if err == nil && len(records) > 0 {
		records[0].Performance = &model.MissionPerformance{
			Success:      success,
			TimeSpentSec: timeSpent,
			JokerUsed:    jokerUsed,
		}
		if err := s.missionRepo.Update(ctx, records[0]); err != nil {
			log.Printf("game %s: failed to record performance: %v", game.Code, err)
		}
	}

	game.CurrentMission = nil
	game.CurrentPlayerID = nextPlayer(game.PlayerIDs, ended)
	game.Status = model.GameStatusWaiting

	if err := s.gameRepo.Update(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	if err := s.gameCache.SetStatus(ctx, game.Code, model.GameStatusWaiting); err != nil {
		log.Printf("game %s: failed to cache status: %v", game.Code, err)
	}

	s.broadcast(game.Code, event, map[string]interface{}{
		"playerId":     ended,
		"success":      success,
		"nextPlayerId": game.CurrentPlayerID,
	})
	s.broadcastToHost(game.Code, EventRoundRecorded, round)

	return nil
}

// Reconnect marks a returning player as connected again
func (s *GameService) Reconnect(ctx context.Context, code, playerID string) error {
	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	player, err := s.loadPlayer(ctx, code, playerID)
	if err != nil {
		return err
	}
	if player.Connected {
		return nil
	}

	player.Connected = true
	player.LastActiveAt = s.clock()
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	s.broadcast(code, EventPlayerReconnected, map[string]interface{}{
		"playerId": player.ID,
		"name":     player.Name,
	})

	return nil
}

// Disconnect soft-removes a player. When the last connected player drops,
// the game transitions to finished exactly once. Disconnecting an already
// disconnected player is a no-op.
func (s *GameService) Disconnect(ctx context.Context, code, playerID string) error {
	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.loadGame(ctx, code)
	if err != nil {
		return err
	}

	player, err := s.loadPlayer(ctx, code, playerID)
	if err != nil {
		return err
	}
	if !player.Connected {
		return nil
	}

	player.Connected = false
	player.LastActiveAt = s.clock()
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	s.broadcast(code, EventPlayerDisconnected, map[string]interface{}{
		"playerId": player.ID,
		"name":     player.Name,
	})

	players, err := s.playerRepo.GetByGameCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	for _, p := range players {
		if p.Connected {
			return nil
		}
	}

	if game.Status == model.GameStatusFinished {
		return nil
	}

	s.takeTurnState(code)
	now := s.clock()
	game.Status = model.GameStatusFinished
	game.EndedAt = &now
	game.CurrentMission = nil
	game.CurrentPlayerID = ""
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	if err := s.gameCache.SetStatus(ctx, code, model.GameStatusFinished); err != nil {
		log.Printf("game %s: failed to cache status: %v", code, err)
	}

	s.broadcast(code, EventGameFinished, map[string]interface{}{
		"endedAt": now,
	})

	return nil
}

// DeleteGame removes a finished game from storage and cache, freeing its
// join code. Active games cannot be deleted.
func (s *GameService) DeleteGame(ctx context.Context, code string) error {
	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.loadGame(ctx, code)
	if err != nil {
		return err
	}
	if game.Status != model.GameStatusFinished {
		return ErrGameActive
	}

	if err := s.gameRepo.Delete(ctx, code); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if err := s.gameCache.Delete(ctx, code); err != nil {
		log.Printf("game %s: failed to delete cache entry: %v", code, err)
	}

	s.mu.Lock()
	delete(s.locks, code)
	delete(s.generating, code)
	s.mu.Unlock()

	return nil
}

// MissionHistory lists a player's generated missions, newest first
func (s *GameService) MissionHistory(ctx context.Context, playerID string, limit int) ([]*model.MissionRecord, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.missionRepo.GetByPlayer(ctx, playerID, limit)
}

// Leaderboard returns the top scorers for a game
func (s *GameService) Leaderboard(ctx context.Context, code string, top int) ([]cache.LeaderboardEntry, error) {
	return s.leaderboard.GetTop(ctx, code, top)
}

// PlayerConnected implements the websocket presence hook
func (s *GameService) PlayerConnected(gameCode, playerID string) {
	if err := s.Reconnect(context.Background(), gameCode, playerID); err != nil {
		log.Printf("game %s: reconnect %s: %v", gameCode, playerID, err)
	}
}

// PlayerDisconnected implements the websocket presence hook
func (s *GameService) PlayerDisconnected(gameCode, playerID string) {
	if err := s.Disconnect(context.Background(), gameCode, playerID); err != nil {
		log.Printf("game %s: disconnect %s: %v", gameCode, playerID, err)
	}
}

// startCountdown begins the turn countdown for a game, replacing any
// previous one
func (s *GameService) startCountdown(code, playerID string, seconds int) {
	ts := &turnState{
		playerID:  playerID,
		startedAt: s.clock(),
		stop:      make(chan struct{}),
	}

	s.mu.Lock()
	if old := s.turns[code]; old != nil {
		old.cancel()
	}
	s.turns[code] = ts
	s.mu.Unlock()

	go s.runCountdown(code, playerID, seconds, ts)
}

func (s *GameService) runCountdown(code, playerID string, seconds int, ts *turnState) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	remaining := seconds
	for {
		select {
		case <-ts.stop:
			return
		case <-ticker.C:
			remaining--
			if remaining <= 0 {
				s.expireTurn(code, playerID)
				return
			}
			s.broadcast(code, EventTimerUpdate, map[string]interface{}{
				"secondsLeft": remaining,
			})
			if remaining == 30 || remaining == 10 {
				s.broadcast(code, EventTimerAlert, map[string]interface{}{
					"secondsLeft": remaining,
				})
			}
		}
	}
}

// generateGameCode creates a unique 6-char alphanumeric join code
func (s *GameService) generateGameCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		exists, err := s.gameCache.Exists(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if !exists {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique game code")
}

// computeArbiter picks the player with the highest score; ties go to the
// earliest player in join order.
func computeArbiter(joinOrder []string, players []*model.Player) string {
	scores := make(map[string]int, len(players))
	for _, p := range players {
		scores[p.ID] = p.Score
	}

	arbiter := ""
	best := -1
	for _, id := range joinOrder {
		score, ok := scores[id]
		if !ok {
			continue
		}
		if score > best {
			best = score
			arbiter = id
		}
	}
	return arbiter
}

func nextPlayer(joinOrder []string, current string) string {
	if len(joinOrder) == 0 {
		return ""
	}
	for i, id := range joinOrder {
		if id == current {
			return joinOrder[(i+1)%len(joinOrder)]
		}
	}
	return joinOrder[0]
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
