package logic

import (
	"fmt"
	"sort"

	"github.com/riftprops/prediction-api/internal/models"
)

// Tier quality labels surfaced to the API.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityLimited   = "limited"
	QualityNoData    = "no_data"
)

// TierDef is one relevance level of the graduated fallback scheme.
type TierDef struct {
	Index   int
	Name    string
	Quality string
	Weight  float64
}

// TierConfig is the process-wide, immutable tier configuration. It is
// constructed explicitly and injected; nothing mutates it after startup.
type TierConfig struct {
	MinViableSeries    int
	RecentSeasonWindow int
	Tiers              []TierDef
}

// DefaultTierConfig returns the standard five-tier fallback ladder,
// ordered from most to least relevant. Weights decrease 1.0 -> 0.3.
func DefaultTierConfig() TierConfig {
	return TierConfig{
		MinViableSeries:    5,
		RecentSeasonWindow: 2,
		Tiers: []TierDef{
			{Index: 1, Name: "exact_tournament", Quality: QualityExcellent, Weight: 1.0},
			{Index: 2, Name: "region_season", Quality: QualityGood, Weight: 0.85},
			{Index: 3, Name: "team_season", Quality: QualityGood, Weight: 0.7},
			{Index: 4, Name: "recent_seasons", Quality: QualityFair, Weight: 0.5},
			{Index: 5, Name: "any_data", Quality: QualityLimited, Weight: 0.3},
		},
	}
}

// TierQuery carries the request context tier filters match against.
type TierQuery struct {
	PlayerID   string
	Tournament string
	Team       string
	Opponent   string
	Region     string
	Season     int
	Range      models.MapRange
	Strict     bool
}

// TierSelector picks the most relevant historical slice for a query.
type TierSelector struct {
	cfg TierConfig
}

func NewTierSelector(cfg TierConfig) *TierSelector {
	if cfg.MinViableSeries <= 0 {
		cfg.MinViableSeries = 5
	}
	if cfg.RecentSeasonWindow <= 0 {
		cfg.RecentSeasonWindow = 2
	}
	if len(cfg.Tiers) == 0 {
		cfg = DefaultTierConfig()
	}
	return &TierSelector{cfg: cfg}
}

// admits reports whether a row belongs to the given tier. Each tier's
// criteria include every higher tier's matches, so consecutive tiers always
// admit supersets and fallback only ever widens the sample.
func (s *TierSelector) admits(tier TierDef, q TierQuery, row *models.MatchRow) bool {
	exact := q.Tournament != "" && row.Tournament == q.Tournament
	if tier.Index == 1 {
		return exact
	}
	regionSeason := exact || (row.Region == q.Region && row.Season == q.Season)
	if tier.Index == 2 {
		return regionSeason
	}
	teamSeason := regionSeason || (q.Team != "" && row.Team == q.Team && row.Season == q.Season)
	if tier.Index == 3 {
		return teamSeason
	}
	recent := teamSeason || row.Season >= q.Season-s.cfg.RecentSeasonWindow
	if tier.Index == 4 {
		return recent
	}
	return true
}

// Select iterates the tier ladder and returns the first tier whose filtered
// rows cover at least MinViableSeries distinct series, together with the
// annotated tier descriptor. Every tier applies the map-range filter. The
// sample size is counted in series, never in maps.
//
// When strict mode is set only tier 1 is attempted. When no tier reaches the
// minimum, an explicit zero-weight no-data descriptor and an empty row set
// are returned; this is a signal for the caller, not an error.
func (s *TierSelector) Select(rows []models.MatchRow, q TierQuery) ([]models.MatchRow, models.TierInfo) {
	tiers := s.cfg.Tiers
	if q.Strict {
		tiers = tiers[:1]
	}

	for i, tier := range tiers {
		var matched []models.MatchRow
		series := make(map[string]bool)
		sources := make(map[string]map[string]bool)

		for j := range rows {
			row := &rows[j]
			if row.PlayerID != q.PlayerID || !q.Range.Contains(row.MapIndex) {
				continue
			}
			if !s.admits(tier, q, row) {
				continue
			}
			matched = append(matched, *row)
			series[row.SeriesID] = true

			key := fmt.Sprintf("%s/%d", row.League, row.Season)
			if sources[key] == nil {
				sources[key] = make(map[string]bool)
			}
			sources[key][row.SeriesID] = true
		}

		if len(series) >= s.cfg.MinViableSeries {
			breakdown := make(map[string]int, len(sources))
			for key, ids := range sources {
				breakdown[key] = len(ids)
			}
			sort.SliceStable(matched, func(a, b int) bool {
				if !matched[a].Date.Equal(matched[b].Date) {
					return matched[a].Date.Before(matched[b].Date)
				}
				if matched[a].SeriesID != matched[b].SeriesID {
					return matched[a].SeriesID < matched[b].SeriesID
				}
				return matched[a].MapIndex < matched[b].MapIndex
			})
			return matched, models.TierInfo{
				Index:       tier.Index,
				Name:        tier.Name,
				Quality:     tier.Quality,
				Weight:      tier.Weight,
				SeriesCount: len(series),
				Fallback:    i > 0,
				Sources:     breakdown,
			}
		}
	}

	return nil, models.TierInfo{
		Index:   0,
		Name:    "no_data",
		Quality: QualityNoData,
		Weight:  0,
		NoData:  true,
		Sources: map[string]int{},
	}
}

// Config returns the selector's immutable configuration.
func (s *TierSelector) Config() TierConfig {
	return s.cfg
}
