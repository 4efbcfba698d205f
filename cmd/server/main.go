package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/riftprops/prediction-api/internal/config"
	"github.com/riftprops/prediction-api/internal/handlers"
	"github.com/riftprops/prediction-api/internal/logic"
	"github.com/riftprops/prediction-api/internal/scorer"
	"github.com/riftprops/prediction-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("Failed to connect to Postgres", "error", err)
	}
	defer pg.Close()

	// ClickHouse
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("Invalid ClickHouse DSN", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("Failed to connect to ClickHouse", "error", err)
	}
	defer ch.Close()

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("Invalid Redis URL", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// History snapshot: loaded once, immutable, no I/O on the request path.
	loadCtx, cancel := context.WithTimeout(ctx, cfg.SnapshotLoadTimeout)
	snapshot, err := store.NewHistoryLoader(ch, sugar).Load(loadCtx)
	cancel()
	if err != nil {
		sugar.Fatalw("Failed to load history snapshot", "error", err)
	}

	sc, err := buildScorer(cfg)
	if err != nil {
		sugar.Fatalw("Failed to build scorer", "error", err)
	}
	sugar.Infow("Scorer ready", "kind", cfg.ScorerKind)

	tierCfg := logic.DefaultTierConfig()
	tierCfg.MinViableSeries = cfg.MinViableSeries

	prediction := logic.NewPredictionService(
		snapshot,
		sc,
		tierCfg,
		logic.IntervalEstimator{Iterations: cfg.BootstrapIterations},
		sugar,
	)

	h := handlers.New(handlers.Config{
		Postgres:   pg,
		ClickHouse: ch,
		Redis:      rdb,
		Logger:     logger,
		Prediction: prediction,
		Lines:      store.NewLineService(pg),
		Resolver:   store.NewAliasResolver(rdb),
		Snapshot:   snapshot,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predictions", h.Predict)
		r.Post("/predictions/curve", h.PredictCurve)
		r.Get("/lines/{player}/{stat}", h.GetLines)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		sugar.Infow("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Graceful shutdown failed", "error", err)
	}
}

func buildScorer(cfg *config.Config) (logic.Scorer, error) {
	switch cfg.ScorerKind {
	case scorer.KindLogistic:
		return scorer.LoadLogistic(cfg.ScorerWeightsPath)
	case scorer.KindBaseline, "":
		return scorer.NewBaseline(), nil
	default:
		return nil, fmt.Errorf("unknown scorer kind %q", cfg.ScorerKind)
	}
}
