package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timeclerk/timesheet-engine/internal/api"
	"github.com/timeclerk/timesheet-engine/internal/core/service"
	"github.com/timeclerk/timesheet-engine/internal/infrastructure/config"
	mongodb "github.com/timeclerk/timesheet-engine/internal/infrastructure/db/mongo"
	redisdb "github.com/timeclerk/timesheet-engine/internal/infrastructure/db/redis"
	"github.com/timeclerk/timesheet-engine/internal/infrastructure/queue"
	"github.com/timeclerk/timesheet-engine/pkg/logger"
)

func main() {
	pretty := flag.Bool("pretty", false, "Enable human-friendly console logging")
	flag.Parse()

	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "timesheet-engine",
		Pretty:  *pretty,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Rounding and rate configuration ---
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.RulesFile).Msg("failed to load rules file")
	}
	rounder, err := service.NewRoundingEngine(rules.Rounding())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid rounding configuration")
	}

	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	entryRepo := mongodb.NewTimesheetRepository(db)
	rateRepo := mongodb.NewRateRuleRepository(db)
	prefRepo := mongodb.NewPreferenceRepository(db)
	userRepo := mongodb.NewUserRepository(db)

	for name, idx := range map[string]interface {
		EnsureIndexes(context.Context) error
	}{
		"time_entries":     entryRepo,
		"rate_rules":       rateRepo,
		"user_preferences": prefRepo,
		"users":            userRepo,
	} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("failed to ensure indexes")
		}
	}

	// --- Core services ---
	prefs := redisdb.NewPreferenceCache(rdb, prefRepo, log)
	resolver := service.NewRateResolver(prefs, rules.Factors(), log)
	lockdown := service.LockdownConfig{
		Start:    cfg.Lockdown.Start,
		End:      cfg.Lockdown.End,
		Grace:    cfg.Lockdown.Grace,
		Timezone: cfg.Lockdown.Timezone,
	}
	timesheets := service.NewTimesheetService(entryRepo, rateRepo, userRepo, resolver, rounder, lockdown, log)

	dedup := redisdb.NewRecalcDedup(rdb)
	recalc := service.NewRecalcService(entryRepo, rateRepo, resolver, dedup, log)
	dispatcher := queue.NewDispatcher(cfg.RecalcWorkers, recalc, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(db, rdb, cfg.JWTSecret, timesheets, dispatcher, log)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
