package logic

import "github.com/riftprops/prediction-api/internal/models"

// Curve sweep defaults when the request leaves them unset.
const (
	defaultCurveStep  = 0.5
	defaultCurveSteps = 3
)

// CurveParams describes a symmetric line sweep around the requested line.
type CurveParams struct {
	Step  float64
	Steps int // points on each side of the center
}

func (p CurveParams) withDefaults() CurveParams {
	if p.Step <= 0 {
		p.Step = defaultCurveStep
	}
	if p.Steps <= 0 {
		p.Steps = defaultCurveSteps
	}
	return p
}

// GenerateCurve re-evaluates the confidence engine at each swept line value,
// holding the feature vector, expected value, base probability and tier
// weight fixed. The center point is marked as the requested line. Pure
// function; recomputing it yields the identical sequence.
//
// Because the label depends only on whether the swept line sits below or
// above the fixed expected value, the sequence flips label at most once.
func GenerateCurve(in ConfidenceInput, params CurveParams) []models.CurvePoint {
	p := params.withDefaults()

	points := make([]models.CurvePoint, 0, 2*p.Steps+1)
	for i := -p.Steps; i <= p.Steps; i++ {
		swept := in
		swept.Line = in.Line + float64(i)*p.Step
		if swept.Line <= 0 {
			continue
		}
		conf := ComputeConfidence(swept)
		points = append(points, models.CurvePoint{
			Line:       swept.Line,
			Label:      conf.Label,
			Confidence: conf.Final * 100,
			Requested:  i == 0,
		})
	}
	return points
}
