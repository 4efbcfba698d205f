package logic

import (
	"math"

	"github.com/riftprops/prediction-api/internal/models"
)

// FeatureSchemaVersion changes whenever the field list below changes.
// Scorer weight files carry this version and are rejected on mismatch.
const FeatureSchemaVersion = 1

const (
	// epsilon floors every divisor; no statistic here may divide by zero.
	epsilon = 1e-9

	// sampleSaturationCount is the series count at which the sample-size
	// score reaches 1.0.
	sampleSaturationCount = 10
)

// featureNames is the canonical field order. Values() must emit in exactly
// this order; the training pipeline and the serving path both key off it.
var featureNames = []string{
	"combined_mean",
	"combined_std",
	"long_term_mean",
	"form_z",
	"deviation_ratio",
	"volatility_index",
	"sample_score",
	"series_count",
	"line_value",
	"avg_deaths",
	"avg_assists",
	"avg_damage",
	"avg_vision",
	"avg_cs",
	"avg_gold_diff15",
	"avg_xp_diff15",
}

// FeatureNames returns the canonical, ordered feature field list.
func FeatureNames() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// FeatureVector is the fixed-schema input to the scorer. Field order and
// count never vary at runtime; missing inputs take the documented neutral
// defaults (0 for counts and diffs, 1.0 for multiplicative factors).
type FeatureVector struct {
	CombinedMean    float64 `json:"combined_mean"`
	CombinedStd     float64 `json:"combined_std"`
	LongTermMean    float64 `json:"long_term_mean"`
	FormZ           float64 `json:"form_z"`
	DeviationRatio  float64 `json:"deviation_ratio"`
	VolatilityIndex float64 `json:"volatility_index"`
	SampleScore     float64 `json:"sample_score"`
	SeriesCount     float64 `json:"series_count"`
	LineValue       float64 `json:"line_value"`
	AvgDeaths       float64 `json:"avg_deaths"`
	AvgAssists      float64 `json:"avg_assists"`
	AvgDamage       float64 `json:"avg_damage"`
	AvgVision       float64 `json:"avg_vision"`
	AvgCreepScore   float64 `json:"avg_cs"`
	AvgGoldDiff15   float64 `json:"avg_gold_diff15"`
	AvgXPDiff15     float64 `json:"avg_xp_diff15"`
}

// Values returns the vector in canonical field order.
func (fv FeatureVector) Values() []float64 {
	return []float64{
		fv.CombinedMean,
		fv.CombinedStd,
		fv.LongTermMean,
		fv.FormZ,
		fv.DeviationRatio,
		fv.VolatilityIndex,
		fv.SampleScore,
		fv.SeriesCount,
		fv.LineValue,
		fv.AvgDeaths,
		fv.AvgAssists,
		fv.AvgDamage,
		fv.AvgVision,
		fv.AvgCreepScore,
		fv.AvgGoldDiff15,
		fv.AvgXPDiff15,
	}
}

// BuildFeatures computes the canonical feature vector from the tier-filtered
// series totals and the player's full-history totals (same stat and map
// range, but all data, never the tier slice). Pure function: identical inputs
// always produce an identical vector.
func BuildFeatures(tierTotals, longTermTotals []models.SeriesTotal, line float64) FeatureVector {
	fv := FeatureVector{
		DeviationRatio: 1.0, // neutral multiplicative default
		LineValue:      line,
	}

	n := len(tierTotals)
	fv.SeriesCount = float64(n)
	if n == 0 {
		fv.LongTermMean = meanTotal(longTermTotals)
		return fv
	}

	fv.CombinedMean, fv.CombinedStd = meanStd(tierTotals)
	fv.LongTermMean = meanTotal(longTermTotals)

	// Form z-score: how far the tier sample sits from the player's own
	// long-run level, in units of the tier sample's spread.
	fv.FormZ = (fv.CombinedMean - fv.LongTermMean) / math.Max(fv.CombinedStd, epsilon)

	if fv.LongTermMean > epsilon {
		fv.DeviationRatio = fv.CombinedMean / fv.LongTermMean
	}

	fv.SampleScore = math.Min(float64(n)/float64(sampleSaturationCount), 1.0)
	fv.VolatilityIndex = volatilityIndex(fv.CombinedMean, fv.CombinedStd, fv.FormZ, n)

	// Secondary per-map averages, equally weighted across series.
	for i := range tierTotals {
		fv.AvgDeaths += tierTotals[i].AvgDeaths
		fv.AvgAssists += tierTotals[i].AvgAssists
		fv.AvgDamage += tierTotals[i].AvgDamage
		fv.AvgVision += tierTotals[i].AvgVision
		fv.AvgCreepScore += tierTotals[i].AvgCreepScore
		fv.AvgGoldDiff15 += tierTotals[i].AvgGoldDiff15
		fv.AvgXPDiff15 += tierTotals[i].AvgXPDiff15
	}
	fv.AvgDeaths /= float64(n)
	fv.AvgAssists /= float64(n)
	fv.AvgDamage /= float64(n)
	fv.AvgVision /= float64(n)
	fv.AvgCreepScore /= float64(n)
	fv.AvgGoldDiff15 /= float64(n)
	fv.AvgXPDiff15 /= float64(n)

	return fv
}

// ExpectedValue derives the point estimate from the feature vector: a
// shrinkage blend that trusts the tier mean in proportion to its sample score
// and otherwise leans on the long-run mean. Deterministic by construction.
func ExpectedValue(fv FeatureVector) float64 {
	if fv.SeriesCount == 0 {
		return fv.LongTermMean
	}
	if fv.LongTermMean <= epsilon {
		return fv.CombinedMean
	}
	return fv.SampleScore*fv.CombinedMean + (1-fv.SampleScore)*fv.LongTermMean
}

// volatilityIndex blends coefficient of variation, absolute recent-form
// deviation, and a small-sample penalty that decreases in series count.
func volatilityIndex(mean, std, formZ float64, count int) float64 {
	cv := std / math.Max(mean, epsilon)
	zTerm := math.Min(math.Abs(formZ), 3.0) / 3.0
	penalty := 1.0 - math.Min(float64(count), float64(sampleSaturationCount))/float64(sampleSaturationCount)
	return 0.5*cv + 0.3*zTerm + 0.2*penalty
}

func meanTotal(totals []models.SeriesTotal) float64 {
	if len(totals) == 0 {
		return 0
	}
	var sum float64
	for i := range totals {
		sum += totals[i].Total
	}
	return sum / float64(len(totals))
}

// meanStd returns the mean and population standard deviation of the totals.
func meanStd(totals []models.SeriesTotal) (float64, float64) {
	mean := meanTotal(totals)
	if len(totals) < 2 {
		return mean, 0
	}
	var ss float64
	for i := range totals {
		d := totals[i].Total - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(totals)))
}
