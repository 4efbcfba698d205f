package models

// PredictionRequest asks for a single OVER/UNDER prediction.
// Line is optional; when zero the handler resolves the posted bookmaker line.
type PredictionRequest struct {
	Player     string  `json:"player" validate:"required"`
	Stat       string  `json:"stat" validate:"required,oneof=kills deaths assists"`
	MapFrom    int     `json:"map_from" validate:"required,min=1"`
	MapTo      int     `json:"map_to" validate:"required,gtefield=MapFrom"`
	Line       float64 `json:"line" validate:"omitempty,gt=0"`
	Tournament string  `json:"tournament"`
	Team       string  `json:"team"`
	Opponent   string  `json:"opponent"`
	StrictMode bool    `json:"strict_mode"`
}

// CurveRequest asks for a sweep of predictions across nearby lines.
type CurveRequest struct {
	PredictionRequest
	Step  float64 `json:"step" validate:"omitempty,gt=0"`
	Steps int     `json:"steps" validate:"omitempty,min=1,max=20"`
}
