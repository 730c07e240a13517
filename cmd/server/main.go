package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"splenderra/internal/cache"
	"splenderra/internal/config"
	"splenderra/internal/repository"
	"splenderra/internal/service"
	"splenderra/internal/transport/rest"
	"splenderra/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Log mission generator settings
	genConfig := config.DefaultGeneratorConfig()
	log.Printf("Mission generator:")
	log.Printf("  Model:   %s", genConfig.Model)
	if genConfig.IsEnabled() {
		log.Println("  API Key: configured ✓")
	} else {
		log.Println("  API Key: NOT SET (using offline missions)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	gameRepo := repository.NewGameRepo(db)
	playerRepo := repository.NewPlayerRepo(db)
	missionRepo := repository.NewMissionRepo(db)

	// Initialize caches
	gameCache := cache.NewGameCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg)
	missionSvc := service.NewMissionService()
	gameSvc := service.NewGameService(gameRepo, playerRepo, missionRepo, gameCache, leaderboard, authSvc, missionSvc)

	// Inject broadcaster and presence hooks (wsHub implements service.Broadcaster)
	gameSvc.SetBroadcaster(wsHub)
	wsHub.SetPresenceListener(gameSvc)

	// Create router with container
	container := &rest.Container{
		AuthService: authSvc,
		GameService: gameSvc,
		WSHub:       wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Printf("Host auth: username=%s", cfg.HostUsername)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/games")
		log.Println("  GET/DELETE /v1/games/{code}")
		log.Println("  POST /v1/games/{code}/join")
		log.Println("  POST /v1/games/{code}/turn/start")
		log.Println("  POST /v1/games/{code}/turn/end")
		log.Println("  POST /v1/games/{code}/mission/regenerate")
		log.Println("  POST /v1/games/{code}/vote")
		log.Println("  POST /v1/games/{code}/joker")
		log.Println("  GET  /v1/games/{code}/leaderboard")
		log.Println("  GET  /v1/players/{playerId}/missions")
		log.Println("  WS  /v1/ws/games/{code}/host")
		log.Println("  WS  /v1/ws/games/{code}/player")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
