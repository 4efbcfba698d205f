package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/riftprops/prediction-api/internal/logic"
	"github.com/riftprops/prediction-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// LineProvider looks up sportsbook lines posted for player props.
type LineProvider interface {
	LatestLine(ctx context.Context, playerID, stat string, rng models.MapRange) (models.PostedLine, error)
	PlayerLines(ctx context.Context, playerID string) ([]models.PostedLine, error)
}

// PlayerResolver maps player names and aliases to canonical ids.
type PlayerResolver interface {
	Resolve(ctx context.Context, player string) (string, error)
}

// SnapshotInfo exposes load diagnostics for the readiness endpoint.
type SnapshotInfo interface {
	RowCount() int
	Players() []string
}

type Config struct {
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
	// Services
	Prediction logic.PredictionService
	Lines      LineProvider
	Resolver   PlayerResolver
	Snapshot   SnapshotInfo
}

type Handler struct {
	pg         *pgxpool.Pool
	ch         driver.Conn
	redis      *redis.Client
	logger     *zap.SugaredLogger
	validator  *validator.Validate
	prediction logic.PredictionService
	lines      LineProvider
	resolver   PlayerResolver
	snapshot   SnapshotInfo
}

func New(cfg Config) *Handler {
	return &Handler{
		pg:         cfg.Postgres,
		ch:         cfg.ClickHouse,
		redis:      cfg.Redis,
		logger:     cfg.Logger.Sugar(),
		validator:  validator.New(),
		prediction: cfg.Prediction,
		lines:      cfg.Lines,
		resolver:   cfg.Resolver,
		snapshot:   cfg.Snapshot,
	}
}
