package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/nbastats/internal/api/rest"
	"github.com/fortuna/nbastats/internal/api/websocket"
	"github.com/fortuna/nbastats/internal/backfill"
	"github.com/fortuna/nbastats/internal/cache"
	"github.com/fortuna/nbastats/internal/config"
	"github.com/fortuna/nbastats/internal/ingest/bbref"
	"github.com/fortuna/nbastats/internal/ingest/statsnba"
	"github.com/fortuna/nbastats/internal/publisher"
	"github.com/fortuna/nbastats/internal/scheduler"
	"github.com/fortuna/nbastats/internal/service"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/store/repository"
)

const (
	serviceName    = "nbastats"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s", serviceName, serviceVersion)

	if err := config.Init(os.Getenv("NBASTATS_CONFIG")); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := store.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✓ Connected to database")

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Seed data is idempotent
	if err := db.SeedData(); err != nil {
		log.Printf("⚠️  Seed data warning: %v (continuing anyway)", err)
	} else {
		log.Println("✓ Seed data applied")
	}

	// Initialize Redis client with retry logic
	var redisCache *cache.RedisCache
	maxRetries := 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
	}
	defer redisCache.Close()

	log.Println("✓ Connected to Redis")

	streamPublisher := publisher.NewRedisStreamPublisher(redisCache.Client())

	// Ingestion
	seasons := service.NewSeasonService(db, redisCache)
	statsIngester := statsnba.NewIngester(db, statsnba.New(cfg.StatsAPIBase), streamPublisher)

	var standings scheduler.HierarchySyncer
	if cfg.StandingsBase != "" {
		bbrefClient := bbref.NewClient(cfg.StandingsBase)
		defer bbrefClient.Close()
		standings = bbref.NewIngester(db, bbrefClient)
	}

	sched := scheduler.NewOrchestrator(statsIngester, standings, scheduler.ConfigFrom(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Start(ctx)

	log.Println("✓ Scheduler started")

	// Initialize backfill service
	runner := backfill.NewRunner(statsIngester, repository.NewGameRepository(db))
	backfillService := backfill.NewService(db, runner, nil)
	backfillService.Start()

	log.Println("✓ Backfill service started")

	// Initialize REST API server
	restServer := rest.NewServer(cfg.RESTPort, rest.NewDependencies(db, seasons, backfillService))
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	// Initialize WebSocket server
	wsServer := websocket.NewServer(redisCache.Client())
	go func() {
		if err := wsServer.Start(cfg.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s/api/v1", cfg.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s/ws/games", cfg.WSPort)
	log.Printf("  Season: %s", sched.Season())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := backfillService.Shutdown(shutdownCtx); err != nil {
		log.Printf("Backfill service shutdown error: %v", err)
	}
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}
