package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/naperu/collabmesh/internal/api"
	"github.com/naperu/collabmesh/internal/repository"
	"github.com/naperu/collabmesh/internal/service"
	"github.com/naperu/collabmesh/internal/ws"
	"github.com/naperu/collabmesh/pkg/cache"
	"github.com/naperu/collabmesh/pkg/config"
	"github.com/naperu/collabmesh/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.SeedDevUser(db, cfg); err != nil {
		log.Printf("Warning: Failed to seed dev user: %v", err)
	}

	repos := repository.NewRepositories(db)

	hub := ws.NewHub()
	go hub.Run()

	clock := service.NewSystemClock()
	codes := service.NewInviteCodeGen(repos.InviteCode)
	services := service.NewServices(db, repos, hub, clock, codes, cfg.JWTSecret)

	var redisCache *cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err = cache.New(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis cache: %v (caching disabled)", err)
		} else {
			log.Printf("Redis cache initialized")
		}
	}

	server := api.NewServer(cfg, services, repos, hub, redisCache)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("CollabMesh server starting on port %s", cfg.Port)
	if err := server.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
