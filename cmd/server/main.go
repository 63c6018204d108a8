// cmd/server/main.go
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	_ "github.com/FermatTheorem/NoShitProxy/docs" // Required for Swagger
	"github.com/FermatTheorem/NoShitProxy/internal/api"
	"github.com/FermatTheorem/NoShitProxy/internal/bridge"
	"github.com/FermatTheorem/NoShitProxy/internal/bus"
	"github.com/FermatTheorem/NoShitProxy/internal/config"
	"github.com/FermatTheorem/NoShitProxy/internal/ratelimit"
	"github.com/FermatTheorem/NoShitProxy/internal/replay"
	"github.com/FermatTheorem/NoShitProxy/internal/scope"
	"github.com/FermatTheorem/NoShitProxy/internal/storage"
	"github.com/FermatTheorem/NoShitProxy/internal/store"

	"github.com/gin-gonic/gin"
)

// @title           NoShitProxy API
// @version         1.0
// @description     Control API for HTTP(S) traffic capture, inspection and replay

// @BasePath  /
func main() {

	gin.SetMode(gin.ReleaseMode)

	f, _ := os.Create("gin.log")
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := storage.NewDB(storage.Config{Path: cfg.Database.Path})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	flowStore := store.NewFlowStore(db, cfg.Capture.MaxRows)

	scopeCfg, err := flowStore.GetScope()
	if err != nil {
		log.Fatalf("Failed to load scope: %v", err)
	}
	scopeEngine := scope.NewEngine(scopeCfg)

	eventBus := bus.New()
	captureBridge := bridge.New(flowStore, scopeEngine, eventBus)
	replays := replay.NewTokenRegistry()
	rateLimiter := ratelimit.NewRateLimiter()

	router := api.SetupRouter(flowStore, scopeEngine, eventBus, captureBridge, replays, rateLimiter)

	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	if cfg.Env == "development" {
		log.Printf("Server starting on http://localhost%s", serverAddr)
		log.Printf("Swagger UI available at http://localhost%s/swagger/index.html", serverAddr)
	}

	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
