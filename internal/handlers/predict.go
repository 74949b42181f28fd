package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"stresslens/internal/services"
)

type PredictHandler struct {
	predictions *services.PredictionService
	access      *services.Access
	trendDays   int
	log         *zap.Logger
}

func NewPredictHandler(predictions *services.PredictionService, access *services.Access, trendDays int, log *zap.Logger) *PredictHandler {
	return &PredictHandler{predictions: predictions, access: access, trendDays: trendDays, log: log}
}

type predictRequest struct {
	UserID string `json:"user_id"`
}

// target resolves the user a request is about (default: the caller) and
// checks the caller may see it.
func (h *PredictHandler) target(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	acting, ok := actingUser(w, r)
	if !ok {
		return "", false
	}
	target := strings.TrimSpace(requested)
	if target == "" {
		target = acting
	}
	if err := h.access.Authorize(r.Context(), target, acting); err != nil {
		fail(w, h.log, err)
		return "", false
	}
	return target, true
}

// Predict godoc
// @Summary Risk prediction from the latest scan and habit entry
// @Tags prediction
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body predictRequest false "Target user (defaults to caller)"
// @Success 200 {object} predictResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse "no data for user"
// @Router /predict [post]
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	userID, ok := h.target(w, r, req.UserID)
	if !ok {
		return
	}
	pred, err := h.predictions.Predict(r.Context(), userID)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{
		Success:      true,
		Prediction:   ToPredictionDTO(pred),
		ModelVersion: pred.ModelVersion,
	})
}

// Trend godoc
// @Summary Daily average stress over a window
// @Tags prediction
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (1-365)"
// @Param user_id query string false "Target user (defaults to caller)"
// @Success 200 {array} health.TrendPoint
// @Failure 400 {object} errorResponse
// @Router /trend [get]
func (h *PredictHandler) Trend(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.target(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}
	days, err := intParam(r, "days", h.trendDays, 1, 365)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	points, err := h.predictions.Trend(r.Context(), userID, days)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// Snapshot godoc
// @Summary Latest scan and habit entry
// @Tags prediction
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Target user (defaults to caller)"
// @Success 200 {object} health.Snapshot
// @Failure 404 {object} errorResponse
// @Router /snapshot [get]
func (h *PredictHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.target(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}
	snap, found, err := h.predictions.Snapshot(r.Context(), userID)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no scan or habit data for user")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
