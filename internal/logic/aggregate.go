package logic

import (
	"sort"

	"github.com/riftprops/prediction-api/internal/models"
)

// AggregateSeries groups match rows by (player, series) and sums the target
// statistic across the maps inside the requested range. "Maps 1-2" means the
// total over both maps, never their average; this is the sportsbook convention
// every line settles against.
//
// This exact function is shared by the live prediction path and the offline
// training-label export (cmd/labelgen). Do not fork it: any divergence between
// the two paths is a train/serve skew bug.
func AggregateSeries(rows []models.MatchRow, stat string, rng models.MapRange) []models.SeriesTotal {
	type key struct {
		player string
		series string
	}

	acc := make(map[key]*models.SeriesTotal)
	for i := range rows {
		row := &rows[i]
		if !rng.Contains(row.MapIndex) {
			continue
		}

		k := key{player: row.PlayerID, series: row.SeriesID}
		st, ok := acc[k]
		if !ok {
			st = &models.SeriesTotal{
				SeriesID: row.SeriesID,
				PlayerID: row.PlayerID,
				Date:     row.Date,
			}
			acc[k] = st
		}
		if row.Date.Before(st.Date) {
			st.Date = row.Date
		}

		st.MapCount++
		st.Total += row.Stat(stat)
		st.AvgDeaths += row.Deaths
		st.AvgAssists += row.Assists
		st.AvgDamage += row.Damage
		st.AvgVision += row.VisionScore
		st.AvgCreepScore += row.CreepScore
		st.AvgGoldDiff15 += row.GoldDiff15
		st.AvgXPDiff15 += row.XPDiff15
	}

	totals := make([]models.SeriesTotal, 0, len(acc))
	for _, st := range acc {
		n := float64(st.MapCount)
		st.AvgDeaths /= n
		st.AvgAssists /= n
		st.AvgDamage /= n
		st.AvgVision /= n
		st.AvgCreepScore /= n
		st.AvgGoldDiff15 /= n
		st.AvgXPDiff15 /= n
		totals = append(totals, *st)
	}

	// Oldest first, series id as tiebreak. Map iteration order must never
	// leak into the output.
	sort.SliceStable(totals, func(a, b int) bool {
		if !totals[a].Date.Equal(totals[b].Date) {
			return totals[a].Date.Before(totals[b].Date)
		}
		return totals[a].SeriesID < totals[b].SeriesID
	})

	return totals
}
