package scorer

import (
	"math"
	"testing"

	"github.com/riftprops/prediction-api/internal/logic"
)

func validWeights() WeightsFile {
	weights := make(map[string]float64)
	for _, name := range logic.FeatureNames() {
		weights[name] = 0.01
	}
	return WeightsFile{
		SchemaVersion: logic.FeatureSchemaVersion,
		Bias:          -0.2,
		Weights:       weights,
	}
}

func TestNewLogisticValidation(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*WeightsFile)
		wantErr bool
	}{
		{"Valid", func(wf *WeightsFile) {}, false},
		{"WrongSchemaVersion", func(wf *WeightsFile) { wf.SchemaVersion = 99 }, true},
		{"MissingFeature", func(wf *WeightsFile) { delete(wf.Weights, "combined_mean") }, true},
		{"ExtraFeature", func(wf *WeightsFile) { wf.Weights["mystery"] = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := validWeights()
			tt.edit(&wf)
			_, err := NewLogistic(wf)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLogistic() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogisticProbabilityRange(t *testing.T) {
	s, err := NewLogistic(validWeights())
	if err != nil {
		t.Fatalf("NewLogistic() error = %v", err)
	}

	vectors := []logic.FeatureVector{
		{},
		{CombinedMean: 6, CombinedStd: 2, LongTermMean: 5, SampleScore: 1, SeriesCount: 10, LineValue: 5.5},
		{CombinedMean: 1000, AvgDamage: 1e6, LineValue: 900},
		{FormZ: -50, AvgGoldDiff15: -1e5},
	}
	for i, fv := range vectors {
		p := s.PredictProbability(fv)
		if p <= 0 || p >= 1 || math.IsNaN(p) {
			t.Errorf("vector %d: probability %v out of (0, 1)", i, p)
		}
	}
}

func TestLogisticDeterministic(t *testing.T) {
	s, err := NewLogistic(validWeights())
	if err != nil {
		t.Fatalf("NewLogistic() error = %v", err)
	}
	fv := logic.FeatureVector{CombinedMean: 6, CombinedStd: 2, LongTermMean: 5, LineValue: 5.5}
	first := s.PredictProbability(fv)
	for i := 0; i < 10; i++ {
		if s.PredictProbability(fv) != first {
			t.Fatal("logistic scorer is not deterministic")
		}
	}
}

func TestBaselineScorer(t *testing.T) {
	s := NewBaseline()

	tests := []struct {
		name string
		fv   logic.FeatureVector
		want func(p float64) bool
	}{
		{
			"MeanAboveLine",
			logic.FeatureVector{CombinedMean: 8, CombinedStd: 2, LineValue: 6},
			func(p float64) bool { return p > 0.5 && p < 1 },
		},
		{
			"MeanBelowLine",
			logic.FeatureVector{CombinedMean: 4, CombinedStd: 2, LineValue: 6},
			func(p float64) bool { return p < 0.5 && p > 0 },
		},
		{
			"MeanAtLine",
			logic.FeatureVector{CombinedMean: 6, CombinedStd: 2, LineValue: 6},
			func(p float64) bool { return math.Abs(p-0.5) < 1e-9 },
		},
		{
			"ZeroStdAbove",
			logic.FeatureVector{CombinedMean: 8, CombinedStd: 0, LineValue: 6},
			func(p float64) bool { return p == 0.75 },
		},
		{
			"ZeroStdBelow",
			logic.FeatureVector{CombinedMean: 4, CombinedStd: 0, LineValue: 6},
			func(p float64) bool { return p == 0.25 },
		},
		{
			"ZeroStdAt",
			logic.FeatureVector{CombinedMean: 6, CombinedStd: 0, LineValue: 6},
			func(p float64) bool { return p == 0.5 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p := s.PredictProbability(tt.fv); !tt.want(p) {
				t.Errorf("probability = %v fails the bound check", p)
			}
		})
	}
}
