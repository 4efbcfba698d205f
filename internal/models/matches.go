package models

import "time"

// Stat names accepted by the prediction engine. Each maps to one numeric
// column on MatchRow.
const (
	StatKills   = "kills"
	StatDeaths  = "deaths"
	StatAssists = "assists"
)

// MatchRow is one player's stat line for a single map within a series.
// Rows are loaded once at startup and never mutated.
type MatchRow struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	SeriesID   string    `json:"series_id"`
	MapIndex   int       `json:"map_index"` // 1-based position within the series
	Team       string    `json:"team"`
	Opponent   string    `json:"opponent"`
	Tournament string    `json:"tournament"`
	League     string    `json:"league"`
	Region     string    `json:"region"`
	Season     int       `json:"season"`
	Date       time.Time `json:"date"`

	Kills       float64 `json:"kills"`
	Deaths      float64 `json:"deaths"`
	Assists     float64 `json:"assists"`
	Damage      float64 `json:"damage"`
	VisionScore float64 `json:"vision_score"`
	CreepScore  float64 `json:"creep_score"`
	GoldDiff15  float64 `json:"gold_diff_15"`
	XPDiff15    float64 `json:"xp_diff_15"`
}

// Stat returns the named target statistic for this row. Unknown names
// return 0 so a bad stat degrades to a zero-total series rather than a crash.
func (r *MatchRow) Stat(name string) float64 {
	switch name {
	case StatKills:
		return r.Kills
	case StatDeaths:
		return r.Deaths
	case StatAssists:
		return r.Assists
	default:
		return 0
	}
}

// MapRange selects a contiguous, inclusive, 1-based sub-sequence of map
// indices within a series ("Maps 1-2" = {1, 2}).
type MapRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether the map index falls inside the range.
func (mr MapRange) Contains(mapIndex int) bool {
	return mapIndex >= mr.From && mapIndex <= mr.To
}

// Valid reports whether the range is structurally well-formed.
func (mr MapRange) Valid() bool {
	return mr.From >= 1 && mr.To >= mr.From
}

// Span is the number of maps the range covers.
func (mr MapRange) Span() int {
	if !mr.Valid() {
		return 0
	}
	return mr.To - mr.From + 1
}

// SeriesTotal is one series' combined statistic over a requested map range,
// plus the per-map auxiliary averages the feature builder consumes.
type SeriesTotal struct {
	SeriesID string    `json:"series_id"`
	PlayerID string    `json:"player_id"`
	Date     time.Time `json:"date"`
	MapCount int       `json:"map_count"` // maps actually present in the range
	Total    float64   `json:"total"`     // combined stat, summed not averaged

	AvgDeaths     float64 `json:"avg_deaths"`
	AvgAssists    float64 `json:"avg_assists"`
	AvgDamage     float64 `json:"avg_damage"`
	AvgVision     float64 `json:"avg_vision"`
	AvgCreepScore float64 `json:"avg_creep_score"`
	AvgGoldDiff15 float64 `json:"avg_gold_diff_15"`
	AvgXPDiff15   float64 `json:"avg_xp_diff_15"`
}
