package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stresslens/internal/db"
	"stresslens/internal/services"
)

type UserHandler struct {
	users *db.UserStore
	vault *services.UserVault
	log   *zap.Logger
}

func NewUserHandler(users *db.UserStore, vault *services.UserVault, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, vault: vault, log: log}
}

// GetMe godoc
// @Summary Current user's profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserDTO
// @Failure 404 {object} errorResponse
// @Router /me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	if err := h.vault.OpenUser(&u); err != nil {
		writeError(w, http.StatusInternalServerError, "could not decrypt user data")
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(u))
}
