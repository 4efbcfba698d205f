package handlers

import (
	"context"

	"github.com/riftprops/prediction-api/internal/logic"
	"github.com/riftprops/prediction-api/internal/models"
)

// Mocks

type MockPredictionService struct {
	PredictFunc      func(ctx context.Context, q logic.PredictionQuery) (*models.PredictionResult, error)
	PredictCurveFunc func(ctx context.Context, q logic.PredictionQuery, params logic.CurveParams) (*models.PredictionResult, error)
}

func (m *MockPredictionService) Predict(ctx context.Context, q logic.PredictionQuery) (*models.PredictionResult, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, q)
	}
	return &models.PredictionResult{Label: models.LabelOver}, nil
}

func (m *MockPredictionService) PredictCurve(ctx context.Context, q logic.PredictionQuery, params logic.CurveParams) (*models.PredictionResult, error) {
	if m.PredictCurveFunc != nil {
		return m.PredictCurveFunc(ctx, q, params)
	}
	return &models.PredictionResult{Label: models.LabelOver}, nil
}

type MockLineProvider struct {
	LatestLineFunc  func(ctx context.Context, playerID, stat string, rng models.MapRange) (models.PostedLine, error)
	PlayerLinesFunc func(ctx context.Context, playerID string) ([]models.PostedLine, error)
}

func (m *MockLineProvider) LatestLine(ctx context.Context, playerID, stat string, rng models.MapRange) (models.PostedLine, error) {
	if m.LatestLineFunc != nil {
		return m.LatestLineFunc(ctx, playerID, stat, rng)
	}
	return models.PostedLine{PlayerID: playerID, Stat: stat, Line: 5.5}, nil
}

func (m *MockLineProvider) PlayerLines(ctx context.Context, playerID string) ([]models.PostedLine, error) {
	if m.PlayerLinesFunc != nil {
		return m.PlayerLinesFunc(ctx, playerID)
	}
	return nil, nil
}

type MockResolver struct {
	ResolveFunc func(ctx context.Context, player string) (string, error)
}

func (m *MockResolver) Resolve(ctx context.Context, player string) (string, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, player)
	}
	return player, nil
}
