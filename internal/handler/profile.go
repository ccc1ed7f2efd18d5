package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/pawpoll/internal/auth"
	"github.com/sakif/pawpoll/internal/service"
)

// ProfileHandler serves /api/user/profile.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGet returns the caller's profile, creating it on first visit.
//
// HTTP: GET /api/user/profile  (auth required)
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	profile, err := h.profiles.Get(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdate sets the caller's display name and returns the profile.
//
// HTTP: PATCH /api/user/profile  {"display_name"}  (auth required)
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	var req struct {
		DisplayName string `json:"display_name"`
	}
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	profile, err := h.profiles.SetDisplayName(r.Context(), caller, req.DisplayName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
