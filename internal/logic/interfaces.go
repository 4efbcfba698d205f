package logic

import (
	"context"

	"github.com/riftprops/prediction-api/internal/models"
)

// HistoryProvider grants read-only access to a player's full match history.
// Implementations must return rows that are safe to read concurrently; the
// engine never mutates them.
type HistoryProvider interface {
	PlayerRows(ctx context.Context, playerID string) ([]models.MatchRow, error)
}

// Scorer is the narrow capability the engine consumes: the probability of
// OVER for a feature vector, in [0, 1]. Training and calibration live
// entirely behind this interface so scorer implementations stay swappable.
type Scorer interface {
	PredictProbability(fv FeatureVector) float64
}

// PredictionService is the engine's exposed surface.
type PredictionService interface {
	Predict(ctx context.Context, q PredictionQuery) (*models.PredictionResult, error)
	PredictCurve(ctx context.Context, q PredictionQuery, params CurveParams) (*models.PredictionResult, error)
}
