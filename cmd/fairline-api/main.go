package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fairline/fairline/internal/config"
	"github.com/fairline/fairline/internal/devig"
	"github.com/fairline/fairline/internal/edgestore"
	"github.com/fairline/fairline/internal/fetcher"
	"github.com/fairline/fairline/internal/handlers"
	"github.com/fairline/fairline/internal/hub"
	"github.com/fairline/fairline/internal/ranking"
	"github.com/fairline/fairline/internal/refresher"
	"github.com/fairline/fairline/internal/snapshot"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "fairline-api").
		Logger()

	cfg := config.Load()
	if cfg.Upstream.APIKey == "" {
		logger.Warn().Msg("ODDS_API_KEY is empty, upstream fetches will fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis snapshot cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.URL).Msg("connected to Redis")

	store := snapshot.NewRedisStore(redisClient)

	// Edge history is optional: no DSN, no persistence.
	var edges *edgestore.Store
	if cfg.PostgresDSN != "" {
		db, err := connectDB(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Postgres")
		}
		defer db.Close()
		edges = edgestore.New(db)
		logger.Info().Msg("edge history enabled")
	}

	// Pipeline
	engine := ranking.NewEngine(devig.NewEstimator())
	client := fetcher.NewClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.APIKey,
		fetcher.WithTimeout(cfg.Upstream.Timeout),
		fetcher.WithMarkets(cfg.Markets),
		fetcher.WithWorkers(cfg.Upstream.Workers),
	)

	broadcastHub := hub.New(logger)
	go broadcastHub.Run(ctx)

	refr := refresher.New(
		client, store, engine, broadcastHub, edges,
		cfg.Sports, cfg.Markets, cfg.RefreshInterval, logger,
	)
	go refr.Run(ctx)

	// Router
	oddsHandler := handlers.NewOddsHandler(store, engine, edges, cfg.Sports, cfg.PageSize, logger)
	wsHandler := handlers.NewWSHandler(broadcastHub, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", wsHandler.Serve)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handlers.Metrics)
		r.Get("/sports", oddsHandler.GetSports)
		r.Get("/odds-data", oddsHandler.GetOddsData)
		r.Get("/rankings", oddsHandler.GetRankings)
		r.Get("/edges", oddsHandler.GetEdges)
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

// connectDB opens and verifies a Postgres connection.
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
