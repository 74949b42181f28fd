package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stresslens/internal/health"
	"stresslens/internal/services"
)

type SyncHandler struct {
	records *services.RecordService
	log     *zap.Logger
}

func NewSyncHandler(records *services.RecordService, log *zap.Logger) *SyncHandler {
	return &SyncHandler{records: records, log: log}
}

type SyncRequest struct {
	Scans  []health.RawRecord `json:"scans"`
	Habits []health.RawRecord `json:"habits"`
}

// Sync godoc
// @Summary Upload records captured offline
// @Description All records are validated first and stored in one transaction; a single bad record rejects the batch.
// @Tags sync
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body SyncRequest true "Offline records"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errorResponse
// @Router /sync [post]
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var req SyncRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.records.Sync(r.Context(), userID, req.Scans, req.Habits)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "synced": res})
}
