package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/config"
	"github.com/mcdev12/planningpoker/go/internal/gateway"
	"github.com/mcdev12/planningpoker/go/internal/players"
	"github.com/mcdev12/planningpoker/go/internal/presence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	config.SetupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	rdb, err := presence.NewRedisClient(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure redis")
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to ping redis")
	}

	clock := clockwork.NewRealClock()
	playerApp := players.NewApp(players.NewRepository(pool), clock)
	tracker := presence.NewTracker(presence.NewRedisStore(rdb), playerApp, clock, cfg.PresenceTTL)

	gwCfg := gateway.DefaultConfig()
	gwCfg.JetStreamConfig.URL = cfg.NATSURL
	gwCfg.JetStreamConfig.ConsumerName = cfg.ConsumerID
	// pings must land well inside the presence TTL
	if half := cfg.PresenceTTL / 2; half > 0 && half < gwCfg.ConnectionConfig.PingInterval {
		gwCfg.ConnectionConfig.PingInterval = half
	}

	service, err := gateway.NewService(ctx, gwCfg, clock, tracker)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway service")
	}

	log.Info().
		Str("database", cfg.DB.Database).
		Str("nats_url", cfg.NATSURL).
		Str("port", cfg.GatewayPort).
		Msg("starting poker gateway")

	mux := http.NewServeMux()
	service.RegisterRoutes(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !service.Healthy() {
			http.Error(w, "NATS disconnected", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service":     "poker-gateway",
			"connections": service.Stats().TotalConnections,
		})
	})

	server := &http.Server{
		Addr:              ":" + cfg.GatewayPort,
		Handler:           cors.AllowAll().Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go tracker.Run(ctx, cfg.PresenceTTL/3)
	go func() {
		if err := service.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway service failed")
		}
	}()
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("poker gateway shutdown complete")
}
