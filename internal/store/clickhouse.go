package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riftprops/prediction-api/internal/models"
)

// HistoryLoader reads player map history from ClickHouse and materializes it
// into a Snapshot. Loading happens once at startup; the request path never
// touches ClickHouse.
type HistoryLoader struct {
	db     driver.Conn
	logger *zap.SugaredLogger
}

func NewHistoryLoader(db driver.Conn, logger *zap.SugaredLogger) *HistoryLoader {
	return &HistoryLoader{db: db, logger: logger}
}

const regionsQuery = `
	SELECT DISTINCT region
	FROM esports_stats.player_maps
	WHERE region != ''`

const matchRowsQuery = `
	SELECT
		player_id,
		player_name,
		series_id,
		map_index,
		team,
		opponent,
		tournament,
		league,
		region,
		season,
		match_date,
		kills,
		deaths,
		assists,
		damage_dealt,
		vision_score,
		creep_score,
		gold_diff_15,
		xp_diff_15
	FROM esports_stats.player_maps
	WHERE region = ?
	ORDER BY match_date, series_id, map_index`

// Load fetches the full dataset, fanning out one query per region, and
// returns the indexed snapshot.
func (l *HistoryLoader) Load(ctx context.Context) (*Snapshot, error) {
	started := time.Now()

	regions, err := l.regions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing regions: %w", err)
	}
	if len(regions) == 0 {
		l.logger.Warnw("no regions found in history table, snapshot will be empty")
		return NewSnapshot(nil), nil
	}

	var mu sync.Mutex
	var all []models.MatchRow

	g, gctx := errgroup.WithContext(ctx)
	for _, region := range regions {
		region := region
		g.Go(func() error {
			rows, err := l.regionRows(gctx, region)
			if err != nil {
				return fmt.Errorf("loading region %s: %w", region, err)
			}
			mu.Lock()
			all = append(all, rows...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := NewSnapshot(all)
	l.logger.Infow("history snapshot loaded",
		"rows", snapshot.RowCount(),
		"players", len(snapshot.Players()),
		"regions", len(regions),
		"duration", time.Since(started).String(),
	)
	return snapshot, nil
}

func (l *HistoryLoader) regions(ctx context.Context) ([]string, error) {
	rows, err := l.db.Query(ctx, regionsQuery)
	if err != nil {
		return nil, fmt.Errorf("querying regions: %w", err)
	}
	defer rows.Close()

	var regions []string
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return nil, fmt.Errorf("scanning region: %w", err)
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

func (l *HistoryLoader) regionRows(ctx context.Context, region string) ([]models.MatchRow, error) {
	rows, err := l.db.Query(ctx, matchRowsQuery, region)
	if err != nil {
		return nil, fmt.Errorf("querying match rows: %w", err)
	}
	defer rows.Close()

	var out []models.MatchRow
	for rows.Next() {
		var r models.MatchRow
		var mapIndex, season int32
		if err := rows.Scan(
			&r.PlayerID,
			&r.PlayerName,
			&r.SeriesID,
			&mapIndex,
			&r.Team,
			&r.Opponent,
			&r.Tournament,
			&r.League,
			&r.Region,
			&season,
			&r.Date,
			&r.Kills,
			&r.Deaths,
			&r.Assists,
			&r.Damage,
			&r.VisionScore,
			&r.CreepScore,
			&r.GoldDiff15,
			&r.XPDiff15,
		); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		r.MapIndex = int(mapIndex)
		r.Season = int(season)
		out = append(out, r)
	}
	return out, rows.Err()
}
