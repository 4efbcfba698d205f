package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/riftprops/prediction-api/internal/logic"
	"github.com/riftprops/prediction-api/internal/models"
	"github.com/riftprops/prediction-api/internal/store"
)

// Prometheus metrics
var (
	predictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "props_predictions_total",
		Help: "Total predictions served, by tier quality and label",
	}, []string{"quality", "label"})

	predictionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "props_prediction_fallbacks_total",
		Help: "Predictions that fell back past the most relevant tier",
	})

	predictionNoData = promauto.NewCounter(prometheus.CounterOpts{
		Name: "props_prediction_no_data_total",
		Help: "Predictions answered with the zero-weight no-data signal",
	})

	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "props_prediction_duration_seconds",
		Help:    "Duration of the full prediction pipeline",
		Buckets: prometheus.DefBuckets,
	})
)

// Predict returns an OVER/UNDER call for a player prop against a line
// @Summary Predict a player prop
// @Tags Predictions
// @Accept json
// @Produce json
// @Param request body models.PredictionRequest true "Prediction request"
// @Success 200 {object} models.PredictionResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "No posted line"
// @Router /predictions [post]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	q, ok := h.buildQuery(w, r, req)
	if !ok {
		return
	}

	started := time.Now()
	result, err := h.prediction.Predict(r.Context(), q)
	if err != nil {
		h.logger.Errorw("Failed to predict", "error", err, "player", q.PlayerID, "stat", q.Stat)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute prediction")
		return
	}
	h.observe(result, started)

	h.jsonResponse(w, http.StatusOK, result)
}

// PredictCurve returns a prediction plus a confidence sweep over nearby lines
// @Summary Predict a player prop with a line sweep
// @Tags Predictions
// @Accept json
// @Produce json
// @Param request body models.CurveRequest true "Curve request"
// @Success 200 {object} models.PredictionResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /predictions/curve [post]
func (h *Handler) PredictCurve(w http.ResponseWriter, r *http.Request) {
	var req models.CurveRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	q, ok := h.buildQuery(w, r, req.PredictionRequest)
	if !ok {
		return
	}

	started := time.Now()
	result, err := h.prediction.PredictCurve(r.Context(), q, logic.CurveParams{
		Step:  req.Step,
		Steps: req.Steps,
	})
	if err != nil {
		h.logger.Errorw("Failed to predict curve", "error", err, "player", q.PlayerID, "stat", q.Stat)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute prediction")
		return
	}
	h.observe(result, started)

	h.jsonResponse(w, http.StatusOK, result)
}

// GetLines returns the posted sportsbook lines for a player and stat
// @Summary Get posted lines
// @Tags Lines
// @Produce json
// @Param player path string true "Player name or id"
// @Param stat path string true "Stat name"
// @Param map_from query int false "Map range start"
// @Param map_to query int false "Map range end"
// @Success 200 {array} models.PostedLine
// @Failure 404 {object} map[string]string "Not Found"
// @Router /lines/{player}/{stat} [get]
func (h *Handler) GetLines(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	stat := chi.URLParam(r, "stat")
	if player == "" || stat == "" {
		h.errorResponse(w, http.StatusBadRequest, "Player and stat are required")
		return
	}

	playerID, err := h.resolver.Resolve(r.Context(), player)
	if err != nil {
		h.logger.Errorw("Failed to resolve player", "error", err, "player", player)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to resolve player")
		return
	}

	from, _ := strconv.Atoi(r.URL.Query().Get("map_from"))
	to, _ := strconv.Atoi(r.URL.Query().Get("map_to"))
	if from > 0 && to >= from {
		line, err := h.lines.LatestLine(r.Context(), playerID, stat, models.MapRange{From: from, To: to})
		if errors.Is(err, store.ErrLineNotFound) {
			h.errorResponse(w, http.StatusNotFound, "No posted line for this range")
			return
		}
		if err != nil {
			h.logger.Errorw("Failed to get line", "error", err, "player", playerID, "stat", stat)
			h.errorResponse(w, http.StatusInternalServerError, "Failed to get line")
			return
		}
		h.jsonResponse(w, http.StatusOK, []models.PostedLine{line})
		return
	}

	all, err := h.lines.PlayerLines(r.Context(), playerID)
	if err != nil {
		h.logger.Errorw("Failed to get player lines", "error", err, "player", playerID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get lines")
		return
	}
	lines := make([]models.PostedLine, 0, len(all))
	for _, line := range all {
		if line.Stat == stat {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		h.errorResponse(w, http.StatusNotFound, "No posted lines")
		return
	}
	h.jsonResponse(w, http.StatusOK, lines)
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// buildQuery resolves the player alias and, when the request omits a line,
// the latest posted bookmaker line for the requested range.
func (h *Handler) buildQuery(w http.ResponseWriter, r *http.Request, req models.PredictionRequest) (logic.PredictionQuery, bool) {
	ctx := r.Context()

	playerID, err := h.resolver.Resolve(ctx, req.Player)
	if err != nil {
		h.logger.Errorw("Failed to resolve player", "error", err, "player", req.Player)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to resolve player")
		return logic.PredictionQuery{}, false
	}

	rng := models.MapRange{From: req.MapFrom, To: req.MapTo}
	line := req.Line
	if line == 0 {
		posted, err := h.lines.LatestLine(ctx, playerID, req.Stat, rng)
		if errors.Is(err, store.ErrLineNotFound) {
			h.errorResponse(w, http.StatusNotFound, "No posted line; supply one explicitly")
			return logic.PredictionQuery{}, false
		}
		if err != nil {
			h.logger.Errorw("Failed to resolve posted line", "error", err, "player", playerID, "stat", req.Stat)
			h.errorResponse(w, http.StatusInternalServerError, "Failed to resolve posted line")
			return logic.PredictionQuery{}, false
		}
		line = posted.Line
	}

	return logic.PredictionQuery{
		PlayerID:   playerID,
		Stat:       req.Stat,
		Range:      rng,
		Line:       line,
		Tournament: req.Tournament,
		Team:       req.Team,
		Opponent:   req.Opponent,
		Strict:     req.StrictMode,
	}, true
}

func (h *Handler) observe(result *models.PredictionResult, started time.Time) {
	predictionDuration.Observe(time.Since(started).Seconds())
	predictionsServed.WithLabelValues(result.Tier.Quality, result.Label).Inc()
	if result.Tier.Fallback {
		predictionFallbacks.Inc()
	}
	if result.Tier.NoData {
		predictionNoData.Inc()
	}
}
