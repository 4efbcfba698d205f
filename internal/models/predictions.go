package models

import "time"

// Prediction labels.
const (
	LabelOver  = "OVER"
	LabelUnder = "UNDER"
)

// Interval estimation methods, recorded on every result for auditability.
const (
	IntervalMethodBootstrap = "bootstrap"
	IntervalMethodIQR       = "iqr"
	IntervalMethodStdMargin = "std_margin"
	IntervalMethodNone      = "none"
)

// TierInfo describes which relevance tier produced a prediction.
type TierInfo struct {
	Index       int            `json:"index"`
	Name        string         `json:"name"`
	Quality     string         `json:"quality"`
	Weight      float64        `json:"weight"`
	SeriesCount int            `json:"series_count"`
	Fallback    bool           `json:"fallback"`  // true when tier 1 was not usable
	Sources     map[string]int `json:"sources"`   // series per league/season, for transparency
	NoData      bool           `json:"no_data"`   // no tier reached the minimum sample
}

// Interval is a confidence interval around the expected value.
type Interval struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Method string  `json:"method"`
}

// SampleDiagnostics exposes the sample the prediction was computed from.
type SampleDiagnostics struct {
	SeriesCount  int     `json:"series_count"` // distinct series, never maps
	MapCount     int     `json:"map_count"`
	CombinedMean float64 `json:"combined_mean"`
	CombinedStd  float64 `json:"combined_std"`
	LongTermMean float64 `json:"long_term_mean"`
	FormZScore   float64 `json:"form_z_score"`
	Volatility   float64 `json:"volatility"`
}

// CurvePoint is one swept line value and its re-evaluated prediction.
type CurvePoint struct {
	Line       float64 `json:"line"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // percent, [10, 95]
	Requested  bool    `json:"requested"`  // marks the originally requested line
}

// PredictionResult is the engine's full answer for one player/stat/line.
//
// Confidence fields are percentages. FinalConfidence blends the scorer's
// probability with a gap heuristic and tier weight; it is intentionally NOT a
// calibrated probability and should be presented as a relative strength score.
type PredictionResult struct {
	RequestID  string    `json:"request_id"`
	PlayerID   string    `json:"player_id"`
	Stat       string    `json:"stat"`
	MapRange   MapRange  `json:"map_range"`
	LineValue  float64   `json:"line_value"`
	Label      string    `json:"label"`

	BaseConfidence     float64 `json:"base_confidence"`
	AdjustedConfidence float64 `json:"adjusted_confidence"`
	FinalConfidence    float64 `json:"final_confidence"` // [10, 95]

	ExpectedValue float64           `json:"expected_value"`
	Interval      Interval          `json:"interval"`
	Tier          TierInfo          `json:"tier"`
	Sample        SampleDiagnostics `json:"sample"`
	Curve         []CurvePoint      `json:"curve,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// PostedLine is a bookmaker line stored in Postgres.
type PostedLine struct {
	PlayerID  string    `json:"player_id"`
	Stat      string    `json:"stat"`
	MapFrom   int       `json:"map_from"`
	MapTo     int       `json:"map_to"`
	Line      float64   `json:"line"`
	Bookmaker string    `json:"bookmaker"`
	PostedAt  time.Time `json:"posted_at"`
}
