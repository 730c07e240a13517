package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"splenderra/internal/model"
	"splenderra/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps round controller errors to HTTP statuses so
// precondition failures stay distinguishable from provider failures
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, service.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrGameFinished),
		errors.Is(err, service.ErrGameActive),
		errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrTurnInProgress),
		errors.Is(err, service.ErrNotCurrentPlayer),
		errors.Is(err, service.ErrNoActiveMission),
		errors.Is(err, service.ErrMissionInFlight),
		errors.Is(err, service.ErrNoRegenerationsLeft),
		errors.Is(err, service.ErrInsufficientPoints),
		errors.Is(err, service.ErrJokerUsed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrProviderFailure),
		errors.Is(err, service.ErrMalformedMission):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
