package store

import (
	"context"
	"sort"
	"time"

	"github.com/riftprops/prediction-api/internal/models"
)

// Snapshot is the immutable, in-memory view of the historical dataset,
// indexed by player. It is built once at startup and only ever read after
// that, so concurrent requests need no locking.
type Snapshot struct {
	byPlayer map[string][]models.MatchRow
	rowCount int
	loadedAt time.Time
}

// NewSnapshot indexes the rows by player. Rows are copied and sorted
// (date, series, map index) so downstream consumers see a stable order.
func NewSnapshot(rows []models.MatchRow) *Snapshot {
	byPlayer := make(map[string][]models.MatchRow)
	for i := range rows {
		byPlayer[rows[i].PlayerID] = append(byPlayer[rows[i].PlayerID], rows[i])
	}
	for _, playerRows := range byPlayer {
		sort.SliceStable(playerRows, func(a, b int) bool {
			if !playerRows[a].Date.Equal(playerRows[b].Date) {
				return playerRows[a].Date.Before(playerRows[b].Date)
			}
			if playerRows[a].SeriesID != playerRows[b].SeriesID {
				return playerRows[a].SeriesID < playerRows[b].SeriesID
			}
			return playerRows[a].MapIndex < playerRows[b].MapIndex
		})
	}
	return &Snapshot{
		byPlayer: byPlayer,
		rowCount: len(rows),
		loadedAt: time.Now().UTC(),
	}
}

// PlayerRows returns the player's full history. The returned slice is shared
// snapshot state: callers must treat it as read-only. Unknown players get an
// empty slice, never an error; data-poor is a signal, not a failure.
func (s *Snapshot) PlayerRows(ctx context.Context, playerID string) ([]models.MatchRow, error) {
	return s.byPlayer[playerID], nil
}

// Players returns the sorted ids of every player in the snapshot.
func (s *Snapshot) Players() []string {
	ids := make([]string, 0, len(s.byPlayer))
	for id := range s.byPlayer {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RowCount is the total number of map rows loaded.
func (s *Snapshot) RowCount() int {
	return s.rowCount
}

// LoadedAt is when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}
