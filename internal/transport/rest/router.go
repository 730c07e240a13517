package rest

import (
	"net/http"
	"os"

	"splenderra/internal/service"
	"splenderra/internal/transport/rest/handler"
	"splenderra/internal/transport/rest/middleware"
	"splenderra/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	GameService *service.GameService
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	gameHandler := handler.NewGameHandler(c.GameService)
	missionHandler := handler.NewMissionHandler(c.GameService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{code}/join", gameHandler.Join).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/games/{code}/host", wsHandler.HostWS).Methods("GET")
	v1.HandleFunc("/ws/games/{code}/player", wsHandler.PlayerWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/games", gameHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/games/{code}", gameHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/games/{code}", gameHandler.Delete).Methods("DELETE")
	hostRoutes.HandleFunc("/games/{code}/leaderboard", gameHandler.Leaderboard).Methods("GET", "OPTIONS")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/games/{code}/turn/start", gameHandler.StartTurn).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{code}/turn/end", gameHandler.EndTurn).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{code}/mission/regenerate", gameHandler.Regenerate).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{code}/vote", gameHandler.Vote).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{code}/joker", gameHandler.Joker).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/players/{playerId}/missions", missionHandler.History).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
