package handler

import (
	"net/http"
	"strconv"

	"splenderra/internal/service"
	"splenderra/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// MissionHandler handles mission history endpoints
type MissionHandler struct {
	gameSvc *service.GameService
}

// NewMissionHandler creates a new mission handler
func NewMissionHandler(gameSvc *service.GameService) *MissionHandler {
	return &MissionHandler{gameSvc: gameSvc}
}

// History handles GET /v1/players/{playerId}/missions
func (h *MissionHandler) History(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	// Players may only read their own history
	if middleware.GetPlayerID(r.Context()) != playerID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.gameSvc.MissionHistory(r.Context(), playerID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"missions": records})
}
