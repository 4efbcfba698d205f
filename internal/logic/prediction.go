package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riftprops/prediction-api/internal/models"
)

// PredictionQuery is one well-formed prediction request after API-level
// validation. Structural validity (non-empty player, sane map range, positive
// line) is still re-checked here; data-poor queries are never an error.
type PredictionQuery struct {
	PlayerID   string
	Stat       string
	Range      models.MapRange
	Line       float64
	Tournament string
	Team       string
	Opponent   string
	Region     string
	Season     int
	Strict     bool
}

func (q PredictionQuery) validate() error {
	if q.PlayerID == "" {
		return fmt.Errorf("player id is required")
	}
	if q.Stat == "" {
		return fmt.Errorf("stat is required")
	}
	if !q.Range.Valid() {
		return fmt.Errorf("malformed map range %d-%d", q.Range.From, q.Range.To)
	}
	if q.Line <= 0 {
		return fmt.Errorf("line value must be positive")
	}
	return nil
}

type predictionService struct {
	history  HistoryProvider
	scorer   Scorer
	selector *TierSelector
	interval IntervalEstimator
	logger   *zap.SugaredLogger
}

// NewPredictionService wires the engine: tier selection over the injected
// history, shared series aggregation, feature building, the external scorer,
// and the two-branch interval estimator.
func NewPredictionService(history HistoryProvider, sc Scorer, cfg TierConfig, est IntervalEstimator, logger *zap.SugaredLogger) PredictionService {
	return &predictionService{
		history:  history,
		scorer:   sc,
		selector: NewTierSelector(cfg),
		interval: est,
		logger:   logger,
	}
}

// Predict runs the full pipeline for a single line value.
func (s *predictionService) Predict(ctx context.Context, q PredictionQuery) (*models.PredictionResult, error) {
	return s.predict(ctx, q, nil)
}

// PredictCurve runs Predict and additionally sweeps the confidence engine
// across nearby line values.
func (s *predictionService) PredictCurve(ctx context.Context, q PredictionQuery, params CurveParams) (*models.PredictionResult, error) {
	return s.predict(ctx, q, &params)
}

func (s *predictionService) predict(ctx context.Context, q PredictionQuery, curve *CurveParams) (*models.PredictionResult, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	rows, err := s.history.PlayerRows(ctx, q.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("history lookup: %w", err)
	}

	// API requests do not carry region or season; the player's most recent
	// appearance defines their current context.
	if q.Region == "" || q.Season == 0 {
		if latest := latestRow(rows); latest != nil {
			if q.Region == "" {
				q.Region = latest.Region
			}
			if q.Season == 0 {
				q.Season = latest.Season
			}
		}
	}

	tierRows, tier := s.selector.Select(rows, TierQuery{
		PlayerID:   q.PlayerID,
		Tournament: q.Tournament,
		Team:       q.Team,
		Opponent:   q.Opponent,
		Region:     q.Region,
		Season:     q.Season,
		Range:      q.Range,
		Strict:     q.Strict,
	})

	// Long-horizon baseline over the player's full history, never the tier
	// slice. Same aggregation as the serving sample by construction.
	longTerm := AggregateSeries(rows, q.Stat, q.Range)

	if tier.NoData {
		s.logger.Warnw("No viable tier for prediction",
			"player", q.PlayerID, "stat", q.Stat, "tournament", q.Tournament)
		return s.noDataResult(q, tier, longTerm), nil
	}

	tierTotals := AggregateSeries(tierRows, q.Stat, q.Range)
	fv := BuildFeatures(tierTotals, longTerm, q.Line)
	expected := ExpectedValue(fv)
	baseProb := s.scorer.PredictProbability(fv)

	in := ConfidenceInput{
		Features:        fv,
		Line:            q.Line,
		Expected:        expected,
		TierWeight:      tier.Weight,
		BaseProbability: baseProb,
		SeriesCount:     len(tierTotals),
	}
	conf := ComputeConfidence(in)
	interval := s.interval.Estimate(expected, fv.CombinedStd, fv.FormZ, fv.VolatilityIndex, len(tierTotals))

	mapCount := 0
	for i := range tierTotals {
		mapCount += tierTotals[i].MapCount
	}

	result := &models.PredictionResult{
		RequestID: uuid.NewString(),
		PlayerID:  q.PlayerID,
		Stat:      q.Stat,
		MapRange:  q.Range,
		LineValue: q.Line,
		Label:     conf.Label,

		BaseConfidence:     conf.Base * 100,
		AdjustedConfidence: conf.Adjusted * 100,
		FinalConfidence:    conf.Final * 100,

		ExpectedValue: expected,
		Interval:      interval,
		Tier:          tier,
		Sample: models.SampleDiagnostics{
			SeriesCount:  len(tierTotals),
			MapCount:     mapCount,
			CombinedMean: fv.CombinedMean,
			CombinedStd:  fv.CombinedStd,
			LongTermMean: fv.LongTermMean,
			FormZScore:   fv.FormZ,
			Volatility:   fv.VolatilityIndex,
		},
		GeneratedAt: time.Now().UTC(),
	}

	if curve != nil {
		result.Curve = GenerateCurve(in, *curve)
	}

	return result, nil
}

func latestRow(rows []models.MatchRow) *models.MatchRow {
	var latest *models.MatchRow
	for i := range rows {
		if latest == nil || rows[i].Date.After(latest.Date) {
			latest = &rows[i]
		}
	}
	return latest
}

// noDataResult is the explicit zero-weight answer when every tier is too
// sparse. Deterministic conservative floor; callers decide how to surface it.
func (s *predictionService) noDataResult(q PredictionQuery, tier models.TierInfo, longTerm []models.SeriesTotal) *models.PredictionResult {
	fv := BuildFeatures(nil, longTerm, q.Line)
	return &models.PredictionResult{
		RequestID: uuid.NewString(),
		PlayerID:  q.PlayerID,
		Stat:      q.Stat,
		MapRange:  q.Range,
		LineValue: q.Line,
		Label:     models.LabelUnder,

		BaseConfidence:     minConfidence * 100,
		AdjustedConfidence: minConfidence * 100,
		FinalConfidence:    minConfidence * 100,

		ExpectedValue: fv.LongTermMean,
		Interval:      models.Interval{Method: models.IntervalMethodNone},
		Tier:          tier,
		Sample: models.SampleDiagnostics{
			LongTermMean: fv.LongTermMean,
		},
		GeneratedAt: time.Now().UTC(),
	}
}
