package logic

import (
	"math"
	"reflect"
	"testing"

	"github.com/riftprops/prediction-api/internal/models"
)

func totalsFixture(values ...float64) []models.SeriesTotal {
	out := make([]models.SeriesTotal, len(values))
	for i, v := range values {
		out[i] = models.SeriesTotal{SeriesID: string(rune('a' + i)), PlayerID: "p1", MapCount: 2, Total: v}
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFeatureNamesMatchValues(t *testing.T) {
	names := FeatureNames()
	values := FeatureVector{}.Values()
	if len(names) != len(values) {
		t.Fatalf("schema drift: %d names vs %d values", len(names), len(values))
	}
}

func TestBuildFeaturesDeterministic(t *testing.T) {
	tier := totalsFixture(4, 5, 6, 7, 8)
	long := totalsFixture(3, 4, 5, 6, 7, 8, 9)

	first := BuildFeatures(tier, long, 6.5)
	for i := 0; i < 20; i++ {
		again := BuildFeatures(tier, long, 6.5)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("identical inputs produced different vectors: %+v vs %+v", first, again)
		}
	}
}

func TestBuildFeaturesStatistics(t *testing.T) {
	tier := totalsFixture(4, 6) // mean 5, population std 1
	long := totalsFixture(2, 4) // long-term mean 3

	fv := BuildFeatures(tier, long, 5.5)

	if !almostEqual(fv.CombinedMean, 5) {
		t.Errorf("combined mean = %v, want 5", fv.CombinedMean)
	}
	if !almostEqual(fv.CombinedStd, 1) {
		t.Errorf("combined std = %v, want 1", fv.CombinedStd)
	}
	if !almostEqual(fv.LongTermMean, 3) {
		t.Errorf("long-term mean = %v, want 3", fv.LongTermMean)
	}
	// form z = (5 - 3) / 1
	if !almostEqual(fv.FormZ, 2) {
		t.Errorf("form z = %v, want 2", fv.FormZ)
	}
	// deviation ratio = 5 / 3
	if !almostEqual(fv.DeviationRatio, 5.0/3.0) {
		t.Errorf("deviation ratio = %v, want %v", fv.DeviationRatio, 5.0/3.0)
	}
	if fv.SeriesCount != 2 {
		t.Errorf("series count = %v, want 2", fv.SeriesCount)
	}
	if fv.LineValue != 5.5 {
		t.Errorf("line value = %v, want 5.5", fv.LineValue)
	}
}

func TestBuildFeaturesNeutralDefaults(t *testing.T) {
	fv := BuildFeatures(nil, nil, 4.5)

	if fv.CombinedMean != 0 || fv.CombinedStd != 0 || fv.LongTermMean != 0 {
		t.Errorf("empty sample must default counts to 0, got %+v", fv)
	}
	if fv.DeviationRatio != 1.0 {
		t.Errorf("deviation ratio default = %v, want 1.0 (multiplicative neutral)", fv.DeviationRatio)
	}
	if fv.SampleScore != 0 {
		t.Errorf("sample score = %v, want 0", fv.SampleScore)
	}
}

func TestBuildFeaturesZeroStdGuarded(t *testing.T) {
	tier := totalsFixture(5, 5, 5, 5, 5) // std exactly 0
	long := totalsFixture(4, 4)

	fv := BuildFeatures(tier, long, 5.0)

	if math.IsInf(fv.FormZ, 0) || math.IsNaN(fv.FormZ) {
		t.Fatalf("form z must stay finite under zero std, got %v", fv.FormZ)
	}
	if math.IsInf(fv.VolatilityIndex, 0) || math.IsNaN(fv.VolatilityIndex) {
		t.Fatalf("volatility must stay finite under zero std, got %v", fv.VolatilityIndex)
	}
}

func TestSampleScoreSaturates(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  float64
	}{
		{"Empty", 0, 0},
		{"Half", 5, 0.5},
		{"AtThreshold", 10, 1.0},
		{"PastThreshold", 25, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := make([]float64, tt.count)
			for i := range vals {
				vals[i] = float64(3 + i%4)
			}
			fv := BuildFeatures(totalsFixture(vals...), nil, 5)
			if !almostEqual(fv.SampleScore, tt.want) {
				t.Errorf("sample score for %d series = %v, want %v", tt.count, fv.SampleScore, tt.want)
			}
		})
	}
}

func TestVolatilityPenaltyDecreasesWithCount(t *testing.T) {
	small := BuildFeatures(totalsFixture(4, 6), totalsFixture(5), 5)
	large := BuildFeatures(totalsFixture(4, 6, 4, 6, 4, 6, 4, 6, 4, 6), totalsFixture(5), 5)

	if small.VolatilityIndex <= large.VolatilityIndex {
		t.Errorf("small-sample volatility %v should exceed large-sample %v", small.VolatilityIndex, large.VolatilityIndex)
	}
}

func TestExpectedValueShrinksTowardLongTerm(t *testing.T) {
	// 2 of 10 series: sample score 0.2 -> ev = 0.2*8 + 0.8*4 = 4.8
	fv := BuildFeatures(totalsFixture(7, 9), totalsFixture(4, 4, 4, 4), 6)
	ev := ExpectedValue(fv)
	if !almostEqual(ev, 4.8) {
		t.Errorf("expected value = %v, want 4.8", ev)
	}

	// Saturated sample trusts the tier mean fully.
	full := BuildFeatures(totalsFixture(7, 9, 7, 9, 7, 9, 7, 9, 7, 9), totalsFixture(4), 6)
	if !almostEqual(ExpectedValue(full), 8) {
		t.Errorf("saturated expected value = %v, want 8", ExpectedValue(full))
	}
}

func TestExpectedValueDeterministic(t *testing.T) {
	fv := BuildFeatures(totalsFixture(4, 5, 6), totalsFixture(3, 4, 5, 6), 5)
	first := ExpectedValue(fv)
	for i := 0; i < 10; i++ {
		if ExpectedValue(fv) != first {
			t.Fatal("expected value is not a pure function of the feature vector")
		}
	}
}
