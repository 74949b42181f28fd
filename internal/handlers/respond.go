package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"stresslens/internal/db"
	"stresslens/internal/health"
	"stresslens/internal/middleware"
	"stresslens/internal/services"
)

const maxBodyBytes = 4 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// statusFor maps domain errors to HTTP status codes. Only client errors
// expose their message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, health.ErrValidation), errors.Is(err, health.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, health.ErrInsufficientData):
		return http.StatusNotFound, "no scan or habit data for user"
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "server error"
	}
}

func fail(w http.ResponseWriter, log *zap.Logger, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	writeError(w, status, msg)
}

// decodeJSON reads a size-limited body, keeping numbers as json.Number so
// the normalizer sees the client's exact digits.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	return dec.Decode(v)
}

func actingUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

// intParam parses an optional query parameter within [lo, hi].
func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", health.ErrInvalidArgument, name)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", health.ErrInvalidArgument, name, lo, hi)
	}
	return n, nil
}
