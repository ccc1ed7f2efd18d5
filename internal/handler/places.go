package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
)

// PlaceLookup is what PlacesHandler needs from the places client.
type PlaceLookup interface {
	Autocomplete(ctx context.Context, input string) ([]model.PlaceSuggestion, error)
	Details(ctx context.Context, placeID string) (*model.Place, error)
}

// PlacesHandler proxies place search so the API key stays on the server.
type PlacesHandler struct {
	places PlaceLookup
	logger *slog.Logger
}

func NewPlacesHandler(places PlaceLookup, logger *slog.Logger) *PlacesHandler {
	return &PlacesHandler{places: places, logger: logger}
}

// HandleAutocomplete returns suggestions for a search box.
//
// HTTP: GET /api/places?input=bark+cafe
// Response: {"suggestions":[{"placeId","text","mainText","secondaryText"}]}
func (h *PlacesHandler) HandleAutocomplete(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	suggestions, err := h.places.Autocomplete(r.Context(), input)
	if err != nil {
		h.logFailure(r, "places autocomplete failed", slog.String("input", input), err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// HandleDetails returns the name and address of one place.
//
// HTTP: GET /api/places/{placeId}
func (h *PlacesHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeId")
	place, err := h.places.Details(r.Context(), placeID)
	if err != nil {
		h.logFailure(r, "place details failed", slog.String("place_id", placeID), err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

// logFailure records upstream failures, whose cause never reaches the
// client. Validation and not-found answers are not worth a log line.
func (h *PlacesHandler) logFailure(r *http.Request, msg string, attr slog.Attr, err error) {
	var appErr *apperror.AppError
	if !errors.Is(err, apperror.ErrUpstream) || !errors.As(err, &appErr) {
		return
	}
	h.logger.WarnContext(r.Context(), msg, attr, slog.String("error", appErr.Err.Error()))
}
