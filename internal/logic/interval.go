package logic

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/riftprops/prediction-api/internal/models"
)

// Interval estimation parameters.
const (
	defaultBootstrapIterations = 1000

	// adequateSeriesCount gates the bootstrap branch; below it (or with a
	// degenerate spread) the quantile fallback runs instead.
	adequateSeriesCount = 5

	// verySmallSampleCount switches the fallback from the plain std margin
	// to the 1.5xIQR rule.
	verySmallSampleCount = 3

	quartileZ = 0.675 // standard normal z at the 25th/75th percentile
	iqrFence  = 1.5

	// formNoiseScale sizes the independent noise term added per draw,
	// proportional to |form z-score|.
	formNoiseScale = 0.15
)

// IntervalEstimator produces a 95% interval around the expected value.
//
// Seed == 0 draws a fresh random stream per Estimate call, which is the
// production requirement (no shared mutable RNG state between requests).
// A non-zero Seed pins the stream for tests.
type IntervalEstimator struct {
	Iterations int
	Seed       int64
}

// Estimate selects between two branches on sample adequacy:
//
//   - count >= 5 and std > 0: bootstrap. Draws from a normal centered at the
//     expected value with std scaled by the volatility factor, adds an
//     independent noise term scaled by |form z|, clips negatives to zero, and
//     takes the 2.5th/97.5th percentiles.
//   - otherwise: quantile fallback. Approximates quartiles from
//     mean +/- 0.675*std, applies the 1.5xIQR fences for very small samples,
//     or a plain +/-1.5*std margin otherwise.
//
// The returned interval always records which branch ran, and always satisfies
// lower <= upper and lower >= 0.
func (e IntervalEstimator) Estimate(expected, std, formZ, volatility float64, seriesCount int) models.Interval {
	if seriesCount >= adequateSeriesCount && std > epsilon {
		return e.bootstrap(expected, std, formZ, volatility)
	}
	return quantileFallback(expected, std, seriesCount)
}

func (e IntervalEstimator) bootstrap(expected, std, formZ, volatility float64) models.Interval {
	iterations := e.Iterations
	if iterations <= 0 {
		iterations = defaultBootstrapIterations
	}

	seed := e.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	scaledStd := std * (1 + volatility)
	noise := math.Abs(formZ) * formNoiseScale * std

	samples := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		v := expected + rng.NormFloat64()*scaledStd
		if noise > 0 {
			v += rng.NormFloat64() * noise
		}
		if v < 0 {
			v = 0
		}
		samples[i] = v
	}
	sort.Float64s(samples)

	return models.Interval{
		Lower:  percentile(samples, 2.5),
		Upper:  percentile(samples, 97.5),
		Method: models.IntervalMethodBootstrap,
	}
}

func quantileFallback(expected, std float64, seriesCount int) models.Interval {
	q1 := expected - quartileZ*std
	q3 := expected + quartileZ*std

	var lower, upper float64
	method := models.IntervalMethodStdMargin
	if seriesCount < verySmallSampleCount {
		iqr := q3 - q1
		lower = q1 - iqrFence*iqr
		upper = q3 + iqrFence*iqr
		method = models.IntervalMethodIQR
	} else {
		lower = expected - 1.5*std
		upper = expected + 1.5*std
	}

	if lower < 0 {
		lower = 0
	}
	if upper < lower {
		upper = lower
	}
	return models.Interval{Lower: lower, Upper: upper, Method: method}
}

// percentile returns the p-th percentile of sorted samples by linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
