package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stresslens/internal/health"
	"stresslens/internal/services"
)

type DashboardHandler struct {
	predictions *services.PredictionService
	log         *zap.Logger
}

func NewDashboardHandler(predictions *services.PredictionService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{predictions: predictions, log: log}
}

type dashboardResponse struct {
	Success      bool                `json:"success"`
	Snapshot     *health.Snapshot    `json:"snapshot"`
	Prediction   *PredictionDTO      `json:"prediction"`
	Trend        []health.TrendPoint `json:"trend"`
	Direction    health.Direction    `json:"direction"`
	ModelVersion string              `json:"model_version"`
}

// Get godoc
// @Summary Snapshot, prediction and weekly trend in one call
// @Description prediction is null when the user has nothing to score yet.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dashboardResponse
// @Router /dashboard [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	d, err := h.predictions.Dashboard(r.Context(), userID, health.DefaultWindowDays)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	out := dashboardResponse{
		Success:      true,
		Snapshot:     d.Snapshot,
		Trend:        d.Trend,
		Direction:    d.Direction,
		ModelVersion: d.ModelVersion,
	}
	if d.Prediction != nil {
		p := ToPredictionDTO(*d.Prediction)
		out.Prediction = &p
	}
	writeJSON(w, http.StatusOK, out)
}
