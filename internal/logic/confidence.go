package logic

import (
	"math"

	"github.com/riftprops/prediction-api/internal/models"
)

// Confidence bounds and thresholds. The final confidence is always clamped to
// [minConfidence, maxConfidence]; below criticalSeriesCount the conservative
// fallback forces UNDER and caps at conservativeCap.
const (
	minConfidence = 0.10
	maxConfidence = 0.95

	criticalSeriesCount = 5
	conservativeCap     = 0.60

	gapAdjustmentScale = 2.0
	gapAdjustmentCap   = 0.5
)

// ConfidenceInput is everything the confidence computation reads. Expected
// must be a deterministic function of Features (see ExpectedValue);
// BaseProbability is the external scorer's P(OVER) in [0, 1].
type ConfidenceInput struct {
	Features        FeatureVector
	Line            float64
	Expected        float64
	TierWeight      float64
	BaseProbability float64
	SeriesCount     int
}

// Confidence is the engine's bounded, explainable output. All three values
// are fractions; the API layer converts to percent.
type Confidence struct {
	Label    string
	Base     float64 // directional scorer probability, before gap adjustment
	Adjusted float64 // base + gap adjustment
	Final    float64 // clamp(adjusted * tier weight), [0.10, 0.95]
}

// ComputeConfidence turns the scorer probability, expected value and tier
// weight into a bounded OVER/UNDER confidence. Pure computation with no side
// effects; calling it twice with identical inputs yields identical results.
//
// Note: the result blends a gap heuristic with the scorer output and is not
// itself a calibrated probability. The formula is a product decision and is
// preserved exactly; see PredictionResult's doc comment.
func ComputeConfidence(in ConfidenceInput) Confidence {
	gap := math.Abs(in.Expected - in.Line)
	gapRatio := gap / math.Max(in.Line, 1)
	gapAdjustment := math.Min(gapRatio*gapAdjustmentScale, gapAdjustmentCap)

	label := models.LabelUnder
	base := 1 - in.BaseProbability
	if in.Expected > in.Line {
		label = models.LabelOver
		base = in.BaseProbability
	}

	// Insufficient evidence: force the conservative side and cap the result,
	// regardless of what the gap heuristic would have said.
	if in.SeriesCount < criticalSeriesCount {
		label = models.LabelUnder
		base = 1 - in.BaseProbability
		adjusted := base + gapAdjustment
		final := math.Min(clampConfidence(adjusted*in.TierWeight), conservativeCap)
		return Confidence{Label: label, Base: base, Adjusted: adjusted, Final: final}
	}

	adjusted := base + gapAdjustment
	return Confidence{
		Label:    label,
		Base:     base,
		Adjusted: adjusted,
		Final:    clampConfidence(adjusted * in.TierWeight),
	}
}

func clampConfidence(v float64) float64 {
	if v < minConfidence {
		return minConfidence
	}
	if v > maxConfidence {
		return maxConfidence
	}
	return v
}
