package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geoclaim/geoclaim/internal/buff"
	"github.com/geoclaim/geoclaim/internal/claim"
	"github.com/geoclaim/geoclaim/internal/config"
	"github.com/geoclaim/geoclaim/internal/database"
	"github.com/geoclaim/geoclaim/internal/database/postgres"
	"github.com/geoclaim/geoclaim/internal/event"
	"github.com/geoclaim/geoclaim/internal/gate"
	"github.com/geoclaim/geoclaim/internal/geo"
	"github.com/geoclaim/geoclaim/internal/loot"
	"github.com/geoclaim/geoclaim/internal/metrics"
	"github.com/geoclaim/geoclaim/internal/player"
	"github.com/geoclaim/geoclaim/internal/scheduler"
	"github.com/geoclaim/geoclaim/internal/server"
	"github.com/geoclaim/geoclaim/internal/spot"
	"github.com/geoclaim/geoclaim/internal/visit"
	"github.com/geoclaim/geoclaim/internal/worker"
)

const (
	dbMaxConns   = 10
	dbMaxIdle    = 5 * time.Minute
	dbMaxLife    = 30 * time.Minute
	shutdownWait = 10 * time.Second

	claimDecayInterval = 10 * time.Minute
	lootSweepInterval  = time.Minute

	publishMaxRetries = 3
	publishRetryDelay = 2 * time.Second
	deadLetterPath    = "events.deadletter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)
	log := slog.Default()

	pool, err := database.NewPool(cfg.GetDBConnString(), dbMaxConns, dbMaxIdle, dbMaxLife)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(context.Background(), pool); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Event bus with retry and dead-letter fallback
	bus, err := event.NewResilientPublisher(event.NewMemoryBus(),
		publishMaxRetries, publishRetryDelay, deadLetterPath)
	if err != nil {
		log.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}

	collector := metrics.NewEventMetricsCollector()
	if err := collector.Register(bus); err != nil {
		log.Error("Failed to register event metrics", "error", err)
		os.Exit(1)
	}

	// Repositories
	playerRepo := postgres.NewPlayerRepository(pool)
	spotRepo := postgres.NewSpotRepository(pool)
	visitRepo := postgres.NewVisitRepository(pool)
	claimRepo := postgres.NewClaimRepository(pool)
	buffRepo := postgres.NewBuffRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	settings := config.NewSettings(settingsRepo)
	dist := geo.Haversine{}

	// Services
	buffService := buff.NewService(buffRepo)
	claimService := claim.NewService(claimRepo, settings, bus)
	visitGate := gate.New(visitRepo, settings, dist)
	spotService := spot.NewService(spotRepo)
	lootService := loot.NewService(spotRepo, playerRepo, settings, dist, bus)
	visitService := visit.NewService(spotRepo, visitRepo, buffService, visitGate, settings, dist, bus)
	playerService := player.NewService(playerRepo, settings, bus)

	// Background maintenance sweeps
	workerPool := worker.NewPool(2, 16)
	workerPool.Start()

	sched := scheduler.New(workerPool)
	sched.Schedule(claimDecayInterval, worker.NewClaimDecayJob(claimService))
	sched.Schedule(lootSweepInterval, worker.NewLootExpiryJob(lootService))

	srv := server.NewServer(cfg.Port, cfg.APIKey, nil, pool, server.Services{
		Player: playerService,
		Spot:   spotService,
		Visit:  visitService,
		Claim:  claimService,
		Loot:   lootService,
		Buff:   buffService,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("Server stopped unexpectedly", "error", err)
	case sig := <-stop:
		log.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}

	sched.Stop()
	workerPool.Stop()

	if err := bus.Shutdown(ctx); err != nil {
		log.Error("Event publisher shutdown failed", "error", err)
	}

	log.Info("Shutdown complete")
}
