package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/riftprops/prediction-api/internal/models"
)

// ErrLineNotFound is returned when no posted line exists for the requested
// player, stat and map range.
var ErrLineNotFound = errors.New("posted line not found")

// PgQuerier abstracts the Postgres pool for line lookups.
type PgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LineService reads sportsbook lines posted for player props out of Postgres.
type LineService struct {
	db PgQuerier
}

func NewLineService(db PgQuerier) *LineService {
	return &LineService{db: db}
}

const latestLineQuery = `
	SELECT player_id, stat, map_from, map_to, line_value, book, posted_at
	FROM posted_lines
	WHERE player_id = $1 AND stat = $2 AND map_from = $3 AND map_to = $4
	ORDER BY posted_at DESC
	LIMIT 1`

// LatestLine returns the most recently posted line for the player, stat and
// map range, or ErrLineNotFound.
func (s *LineService) LatestLine(ctx context.Context, playerID, stat string, rng models.MapRange) (models.PostedLine, error) {
	var line models.PostedLine
	err := s.db.QueryRow(ctx, latestLineQuery, playerID, stat, rng.From, rng.To).Scan(
		&line.PlayerID,
		&line.Stat,
		&line.MapFrom,
		&line.MapTo,
		&line.Line,
		&line.Bookmaker,
		&line.PostedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.PostedLine{}, ErrLineNotFound
	}
	if err != nil {
		return models.PostedLine{}, fmt.Errorf("querying posted line: %w", err)
	}
	return line, nil
}

const playerLinesQuery = `
	SELECT DISTINCT ON (stat, map_from, map_to)
		player_id, stat, map_from, map_to, line_value, book, posted_at
	FROM posted_lines
	WHERE player_id = $1
	ORDER BY stat, map_from, map_to, posted_at DESC`

// PlayerLines returns the latest posted line per (stat, map range) for the
// player. An empty slice means nothing is currently posted.
func (s *LineService) PlayerLines(ctx context.Context, playerID string) ([]models.PostedLine, error) {
	rows, err := s.db.Query(ctx, playerLinesQuery, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying player lines: %w", err)
	}
	defer rows.Close()

	var lines []models.PostedLine
	for rows.Next() {
		var line models.PostedLine
		if err := rows.Scan(
			&line.PlayerID,
			&line.Stat,
			&line.MapFrom,
			&line.MapTo,
			&line.Line,
			&line.Bookmaker,
			&line.PostedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning posted line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
