package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stresslens/internal/health"
	"stresslens/internal/services"
)

const (
	defaultListLimit = 5
	maxListLimit     = 100
)

type RecordsHandler struct {
	records *services.RecordService
	log     *zap.Logger
}

func NewRecordsHandler(records *services.RecordService, log *zap.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, log: log}
}

// AddScan godoc
// @Summary Store a stress scan
// @Description Accepts a raw scan; string booleans and numeric text are coerced, unknown enum values are rejected.
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "Raw scan fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errorResponse
// @Router /scans [post]
func (h *RecordsHandler) AddScan(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var raw health.RawRecord
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	scan, err := h.records.AddScan(r.Context(), userID, raw)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "scan": scan})
}

// AddHabit godoc
// @Summary Store a daily habit entry
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "Raw habit fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errorResponse
// @Router /habits [post]
func (h *RecordsHandler) AddHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var raw health.RawRecord
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	habit, err := h.records.AddHabit(r.Context(), userID, raw)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "habit": habit})
}

// ListScans godoc
// @Summary Recent scans, newest first
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows (1-100, default 5)"
// @Success 200 {object} map[string]interface{}
// @Router /scans [get]
func (h *RecordsHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	limit, err := intParam(r, "limit", defaultListLimit, 1, maxListLimit)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	scans, err := h.records.RecentScans(r.Context(), userID, limit)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "scans": scans})
}

// ListHabits godoc
// @Summary Recent habit entries, newest first
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows (1-100, default 5)"
// @Success 200 {object} map[string]interface{}
// @Router /habits [get]
func (h *RecordsHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	limit, err := intParam(r, "limit", defaultListLimit, 1, maxListLimit)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	habits, err := h.records.RecentHabits(r.Context(), userID, limit)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "habits": habits})
}
