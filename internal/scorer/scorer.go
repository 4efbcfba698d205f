// Package scorer provides the probability-of-OVER capability the prediction
// engine consumes. Model training, hyperparameter search and calibration all
// happen offline; this package only loads trained artifacts and scores.
package scorer

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/riftprops/prediction-api/internal/logic"
)

// Scorer kinds selectable via configuration.
const (
	KindLogistic = "logistic"
	KindBaseline = "baseline"
)

// WeightsFile is the on-disk format of a trained logistic model. Weights are
// keyed by canonical feature name so a reordered file still loads correctly;
// completeness is validated at load time.
type WeightsFile struct {
	SchemaVersion int                `json:"schema_version"`
	Bias          float64            `json:"bias"`
	Weights       map[string]float64 `json:"weights"`
}

// LogisticScorer scores a feature vector with a trained logistic model.
type LogisticScorer struct {
	bias    float64
	weights []float64 // canonical feature order
}

// LoadLogistic reads and validates a weights file. The file must carry the
// current feature schema version and exactly one weight per canonical
// feature; anything else is a deployment error, not a runtime condition.
func LoadLogistic(path string) (*LogisticScorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights file: %w", err)
	}

	var wf WeightsFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse weights file: %w", err)
	}
	return NewLogistic(wf)
}

// NewLogistic builds a scorer from an already-parsed weights file.
func NewLogistic(wf WeightsFile) (*LogisticScorer, error) {
	if wf.SchemaVersion != logic.FeatureSchemaVersion {
		return nil, fmt.Errorf("weights schema version %d, want %d", wf.SchemaVersion, logic.FeatureSchemaVersion)
	}

	names := logic.FeatureNames()
	if len(wf.Weights) != len(names) {
		return nil, fmt.Errorf("weights file has %d features, want %d", len(wf.Weights), len(names))
	}

	ordered := make([]float64, len(names))
	for i, name := range names {
		w, ok := wf.Weights[name]
		if !ok {
			return nil, fmt.Errorf("weights file missing feature %q", name)
		}
		ordered[i] = w
	}

	return &LogisticScorer{bias: wf.Bias, weights: ordered}, nil
}

// PredictProbability returns sigmoid(bias + w . features), always in (0, 1).
func (s *LogisticScorer) PredictProbability(fv logic.FeatureVector) float64 {
	z := s.bias
	for i, v := range fv.Values() {
		z += s.weights[i] * v
	}
	return 1 / (1 + math.Exp(-z))
}

// BaselineScorer is the dependency-free fallback: a normal approximation of
// P(total > line) from the sample mean and spread already in the vector.
// Useful before a trained model ships and as a sanity reference beside one.
type BaselineScorer struct{}

func NewBaseline() *BaselineScorer {
	return &BaselineScorer{}
}

// PredictProbability returns Phi((mean - line) / std). With a degenerate
// spread it falls back to a fixed 0.75/0.25/0.5 split on the side of the
// line the mean is on.
func (s *BaselineScorer) PredictProbability(fv logic.FeatureVector) float64 {
	diff := fv.CombinedMean - fv.LineValue
	if fv.CombinedStd < 1e-9 {
		switch {
		case diff > 0:
			return 0.75
		case diff < 0:
			return 0.25
		default:
			return 0.5
		}
	}
	return 0.5 * (1 + math.Erf(diff/(fv.CombinedStd*math.Sqrt2)))
}
