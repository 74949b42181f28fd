package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"stresslens/internal/db"
)

type AdminHandler struct {
	users   *db.UserStore
	records *db.RecordStore
	now     func() time.Time
	log     *zap.Logger
}

func NewAdminHandler(users *db.UserStore, records *db.RecordStore, now func() time.Time, log *zap.Logger) *AdminHandler {
	if now == nil {
		now = time.Now
	}
	return &AdminHandler{users: users, records: records, now: now, log: log}
}

// Overview godoc
// @Summary Get admin overview
// @Description Returns user and record counts (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} db.Overview
// @Failure 403 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	if isAdmin, err := h.users.IsAdmin(r.Context(), userID); err != nil {
		fail(w, h.log, err)
		return
	} else if !isAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	out, err := h.records.Overview(r.Context(), h.now().AddDate(0, 0, -7))
	if err != nil {
		fail(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
