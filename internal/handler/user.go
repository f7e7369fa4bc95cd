package handler

import (
	"log/slog"
	"net/http"

	"github.com/sajal/inkpad/internal/apperror"
	"github.com/sajal/inkpad/internal/service"
)

// UserHandler exposes the per-user preference endpoints.
type UserHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(authSvc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{auth: authSvc, logger: logger}
}

// themeRequest uses *bool so a request omitting the flag (or sending a
// non-boolean) is rejected rather than coerced to false.
type themeRequest struct {
	DarkMode *bool `json:"darkMode"`
}

type themeResponse struct {
	DarkMode bool `json:"darkMode"`
}

// HandleGetTheme returns the caller's dark-mode preference.
//
// HTTP: GET /api/users/theme
func (h *UserHandler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	dark, err := h.auth.DarkMode(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, themeResponse{DarkMode: dark})
}

// HandleSetTheme stores the caller's dark-mode preference.
//
// HTTP: PUT /api/users/theme
// Body: {"darkMode": true}
func (h *UserHandler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var req themeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.DarkMode == nil {
		writeError(w, apperror.ValidationFailed("darkMode", "darkMode must be a boolean"))
		return
	}

	if err := h.auth.SetDarkMode(r.Context(), owner, *req.DarkMode); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, themeResponse{DarkMode: *req.DarkMode})
}
