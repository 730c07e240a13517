package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"splenderra/internal/model"
	"splenderra/internal/service"
	"splenderra/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// GameHandler handles game endpoints
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Theme    string              `json:"theme"`
	Settings *model.GameSettings `json:"settings,omitempty"`
}

// Create handles POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Theme == "" {
		writeError(w, http.StatusBadRequest, "theme is required")
		return
	}

	game, err := h.gameSvc.CreateGame(r.Context(), hostID, req.Theme, req.Settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"gameCode": game.Code,
	})
}

// Get handles GET /v1/games/{code}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	game, err := h.gameSvc.GetGame(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// Delete handles DELETE /v1/games/{code}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	if err := h.gameSvc.DeleteGame(r.Context(), code); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// JoinRequest is the request body for joining a game
type JoinRequest struct {
	Name string `json:"name"`
}

// Join handles POST /v1/games/{code}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	resp, err := h.gameSvc.Join(r.Context(), code, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Leaderboard handles GET /v1/games/{code}/leaderboard
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	topStr := r.URL.Query().Get("top")
	top := 20
	if topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.gameSvc.Leaderboard(r.Context(), code, top)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// StartTurnRequest is the request body for starting a turn
type StartTurnRequest struct {
	Level int `json:"level"`
}

// StartTurn handles POST /v1/games/{code}/turn/start
func (h *GameHandler) StartTurn(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.playerScope(w, r)
	if !ok {
		return
	}

	var req StartTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mission, err := h.gameSvc.StartTurn(r.Context(), code, playerID, req.Level)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mission)
}

// EndTurnRequest is the request body for ending a turn
type EndTurnRequest struct {
	Success bool `json:"success"`
}

// EndTurn handles POST /v1/games/{code}/turn/end
func (h *GameHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.playerScope(w, r)
	if !ok {
		return
	}

	var req EndTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.EndTurn(r.Context(), code, playerID, req.Success); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegenerateRequest is the request body for regenerating a mission
type RegenerateRequest struct {
	Level int `json:"level"`
}

// Regenerate handles POST /v1/games/{code}/mission/regenerate
func (h *GameHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.playerScope(w, r)
	if !ok {
		return
	}

	var req RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mission, err := h.gameSvc.RegenerateMission(r.Context(), code, playerID, req.Level)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mission)
}

// VoteRequest is the request body for casting a vote
type VoteRequest struct {
	TargetID    string `json:"targetId"`
	ArbiterVote bool   `json:"arbiterVote"`
}

// Vote handles POST /v1/games/{code}/vote
func (h *GameHandler) Vote(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.playerScope(w, r)
	if !ok {
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "targetId is required")
		return
	}

	if err := h.gameSvc.Vote(r.Context(), code, playerID, req.TargetID, req.ArbiterVote); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// JokerRequest is the request body for playing a joker
type JokerRequest struct {
	TargetID string `json:"targetId"`
}

// Joker handles POST /v1/games/{code}/joker
func (h *GameHandler) Joker(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.playerScope(w, r)
	if !ok {
		return
	}

	var req JokerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "targetId is required")
		return
	}

	if err := h.gameSvc.UseJoker(r.Context(), code, playerID, req.TargetID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// playerScope resolves the player identity from the token and checks it
// matches the game in the URL
func (h *GameHandler) playerScope(w http.ResponseWriter, r *http.Request) (code, playerID string, ok bool) {
	code = mux.Vars(r)["code"]
	playerID = middleware.GetPlayerID(r.Context())
	tokenCode := middleware.GetGameCode(r.Context())

	if playerID == "" || tokenCode == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", "", false
	}
	if tokenCode != code {
		writeError(w, http.StatusForbidden, "token not valid for this game")
		return "", "", false
	}
	return code, playerID, true
}
