// labelgen exports walk-forward training rows for the scorer: for every
// posted line it builds the feature vector from history strictly before the
// posting time and labels it with the outcome of the series that followed.
// Features go through the same aggregation the serving path uses, so a model
// trained on this file sees exactly what the engine computes at request time.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/riftprops/prediction-api/internal/logic"
	"github.com/riftprops/prediction-api/internal/models"
	"github.com/riftprops/prediction-api/internal/store"
)

// recentSeriesWindow bounds the feature sample the same way tier selection
// bounds the serving sample to recent, relevant series.
const recentSeriesWindow = 10

func main() {
	var (
		pgDSN     = flag.String("postgres", os.Getenv("POSTGRES_URL"), "Postgres DSN for posted lines")
		chDSN     = flag.String("clickhouse", os.Getenv("CLICKHOUSE_URL"), "ClickHouse DSN for match history")
		stat      = flag.String("stat", "kills", "stat to export (kills, deaths, assists)")
		minSeries = flag.Int("min-series", 5, "minimum prior series required to emit a row")
		outPath   = flag.String("out", "training.csv", "output CSV path")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if *pgDSN == "" || *chDSN == "" {
		sugar.Fatalw("Both -postgres and -clickhouse are required")
	}

	ctx := context.Background()

	pg, err := sql.Open("postgres", *pgDSN)
	if err != nil {
		sugar.Fatalw("Failed to open Postgres", "error", err)
	}
	defer pg.Close()

	chOpts, err := clickhouse.ParseDSN(*chDSN)
	if err != nil {
		sugar.Fatalw("Invalid ClickHouse DSN", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("Failed to connect to ClickHouse", "error", err)
	}
	defer ch.Close()

	snapshot, err := store.NewHistoryLoader(ch, sugar).Load(ctx)
	if err != nil {
		sugar.Fatalw("Failed to load history", "error", err)
	}

	lines, err := loadLines(ctx, pg, *stat)
	if err != nil {
		sugar.Fatalw("Failed to load posted lines", "error", err)
	}
	sugar.Infow("Posted lines loaded", "count", len(lines), "stat", *stat)

	out, err := os.Create(*outPath)
	if err != nil {
		sugar.Fatalw("Failed to create output file", "error", err)
	}
	defer out.Close()

	written, skipped, err := export(snapshot, lines, *stat, *minSeries, out)
	if err != nil {
		sugar.Fatalw("Export failed", "error", err)
	}
	sugar.Infow("Export complete", "rows", written, "skipped", skipped, "path", *outPath)
}

func loadLines(ctx context.Context, pg *sql.DB, stat string) ([]models.PostedLine, error) {
	rows, err := pg.QueryContext(ctx, `
		SELECT player_id, stat, map_from, map_to, line_value, book, posted_at
		FROM posted_lines
		WHERE stat = $1
		ORDER BY posted_at`, stat)
	if err != nil {
		return nil, fmt.Errorf("querying posted lines: %w", err)
	}
	defer rows.Close()

	var lines []models.PostedLine
	for rows.Next() {
		var line models.PostedLine
		if err := rows.Scan(&line.PlayerID, &line.Stat, &line.MapFrom, &line.MapTo,
			&line.Line, &line.Bookmaker, &line.PostedAt); err != nil {
			return nil, fmt.Errorf("scanning posted line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// export writes one CSV row per posted line that has enough prior history
// and a settled outcome. Returns rows written and rows skipped.
func export(snapshot *store.Snapshot, lines []models.PostedLine, stat string, minSeries int, out *os.File) (int, int, error) {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := append([]string{"player_id", "posted_at", "line"}, logic.FeatureNames()...)
	header = append(header, "label")
	if err := w.Write(header); err != nil {
		return 0, 0, fmt.Errorf("writing header: %w", err)
	}

	written, skipped := 0, 0
	for _, line := range lines {
		rng := models.MapRange{From: line.MapFrom, To: line.MapTo}
		rows, _ := snapshot.PlayerRows(context.Background(), line.PlayerID)

		var prior []models.MatchRow
		for i := range rows {
			if rows[i].Date.Before(line.PostedAt) {
				prior = append(prior, rows[i])
			}
		}

		totals := logic.AggregateSeries(prior, stat, rng)
		if len(totals) < minSeries {
			skipped++
			continue
		}

		outcome, ok := settledOutcome(rows, line.PostedAt, stat, rng)
		if !ok {
			skipped++
			continue
		}

		// Recent window against the full prior history, mirroring the tier
		// sample vs long-term baseline split on the serving path.
		recent := totals
		if len(recent) > recentSeriesWindow {
			recent = recent[len(recent)-recentSeriesWindow:]
		}
		fv := logic.BuildFeatures(recent, totals, line.Line)
		label := models.LabelUnder
		if outcome > line.Line {
			label = models.LabelOver
		}

		record := []string{
			line.PlayerID,
			line.PostedAt.Format(time.RFC3339),
			formatFloat(line.Line),
		}
		for _, v := range fv.Values() {
			record = append(record, formatFloat(v))
		}
		record = append(record, label)
		if err := w.Write(record); err != nil {
			return written, skipped, fmt.Errorf("writing record: %w", err)
		}
		written++
	}
	return written, skipped, nil
}

// settledOutcome is the combined stat of the first series played at or after
// the posting time, aggregated over the same map range as the line.
func settledOutcome(rows []models.MatchRow, postedAt time.Time, stat string, rng models.MapRange) (float64, bool) {
	var after []models.MatchRow
	for i := range rows {
		if !rows[i].Date.Before(postedAt) {
			after = append(after, rows[i])
		}
	}
	totals := logic.AggregateSeries(after, stat, rng)
	if len(totals) == 0 {
		return 0, false
	}
	return totals[0].Total, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
