package logic

import (
	"reflect"
	"testing"

	"github.com/riftprops/prediction-api/internal/models"
)

func curveInput() ConfidenceInput {
	return ConfidenceInput{
		Line:            6.5,
		Expected:        7.2,
		TierWeight:      0.85,
		BaseProbability: 0.6,
		SeriesCount:     8,
	}
}

func TestGenerateCurvePointCount(t *testing.T) {
	points := GenerateCurve(curveInput(), CurveParams{Step: 0.5, Steps: 3})
	if len(points) != 7 {
		t.Fatalf("point count = %d, want 7 (3 each side + center)", len(points))
	}
}

func TestGenerateCurveMarksRequestedLine(t *testing.T) {
	points := GenerateCurve(curveInput(), CurveParams{Step: 0.5, Steps: 3})

	var marked int
	for _, p := range points {
		if p.Requested {
			marked++
			if p.Line != 6.5 {
				t.Errorf("requested mark on line %v, want 6.5", p.Line)
			}
		}
	}
	if marked != 1 {
		t.Errorf("requested marks = %d, want exactly 1", marked)
	}
}

// Sweeping the line across the expected value must flip the label exactly
// once, at the crossing, and never oscillate.
func TestGenerateCurveMonotonicLabelCrossing(t *testing.T) {
	points := GenerateCurve(curveInput(), CurveParams{Step: 0.5, Steps: 5})

	flips := 0
	for i := 1; i < len(points); i++ {
		if points[i].Label != points[i-1].Label {
			flips++
			// The flip must happen where the line crosses the expected value.
			if points[i-1].Line > 7.2 || points[i].Line < 7.2 {
				t.Errorf("label flipped between lines %v and %v, expected value is 7.2",
					points[i-1].Line, points[i].Line)
			}
		}
	}
	if flips > 1 {
		t.Errorf("label flipped %d times, want at most 1", flips)
	}

	// Below the expected value the pick is OVER, above it UNDER.
	for _, p := range points {
		want := models.LabelUnder
		if p.Line < 7.2 {
			want = models.LabelOver
		}
		if p.Label != want {
			t.Errorf("line %v label = %s, want %s", p.Line, p.Label, want)
		}
	}
}

func TestGenerateCurveRestartable(t *testing.T) {
	first := GenerateCurve(curveInput(), CurveParams{Step: 0.25, Steps: 4})
	for i := 0; i < 10; i++ {
		if again := GenerateCurve(curveInput(), CurveParams{Step: 0.25, Steps: 4}); !reflect.DeepEqual(first, again) {
			t.Fatal("curve generation is not restartable")
		}
	}
}

func TestGenerateCurveSkipsNonPositiveLines(t *testing.T) {
	in := curveInput()
	in.Line = 1.0
	points := GenerateCurve(in, CurveParams{Step: 0.5, Steps: 3})

	for _, p := range points {
		if p.Line <= 0 {
			t.Errorf("curve emitted non-positive line %v", p.Line)
		}
	}
	if len(points) >= 7 {
		t.Errorf("point count = %d, want fewer than 7 after dropping non-positive lines", len(points))
	}
}

func TestGenerateCurveConfidenceBounds(t *testing.T) {
	points := GenerateCurve(curveInput(), CurveParams{Step: 1.0, Steps: 10})
	for _, p := range points {
		if p.Confidence < 10 || p.Confidence > 95 {
			t.Errorf("line %v confidence %v out of [10, 95]", p.Line, p.Confidence)
		}
	}
}

func TestGenerateCurveDefaults(t *testing.T) {
	points := GenerateCurve(curveInput(), CurveParams{})
	if len(points) != 7 {
		t.Errorf("default sweep produced %d points, want 7", len(points))
	}
}
