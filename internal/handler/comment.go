package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/pawpoll/internal/auth"
	"github.com/sakif/pawpoll/internal/service"
)

// CommentHandler serves /api/comments.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type postCommentRequest struct {
	PlaceID      string `json:"place_id"`
	PlaceName    string `json:"place_name"`
	PlaceAddress string `json:"place_address"`
	CommentText  string `json:"comment_text"`
}

type editCommentRequest struct {
	ID          string `json:"id"`
	CommentText string `json:"comment_text"`
}

// HTTP: POST /api/comments  (auth required)
func (h *CommentHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	var req postCommentRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	_, err := h.comments.Post(r.Context(), caller, service.PostCommentInput{
		PlaceID:      req.PlaceID,
		PlaceName:    req.PlaceName,
		PlaceAddress: req.PlaceAddress,
		Text:         req.CommentText,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody)
}

// HandleListForPlace returns a place's comments. Mounted behind
// OptionalAuth: a signed-in viewer gets isOwnComment set on their own.
//
// HTTP: GET /api/comments?place_id=P1
func (h *CommentHandler) HandleListForPlace(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.EmailFromContext(r.Context())

	comments, err := h.comments.ListForPlace(r.Context(), r.URL.Query().Get("place_id"), viewer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HTTP: GET /api/comments/user  (auth required)
func (h *CommentHandler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	comments, err := h.comments.ListOwn(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HTTP: PATCH /api/comments/user  {"id","comment_text"}  (auth required)
func (h *CommentHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	var req editCommentRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	if err := h.comments.Edit(r.Context(), caller, req.ID, req.CommentText); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody)
}

// HTTP: DELETE /api/comments/user  {"id"}  (auth required)
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	var req idRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	if err := h.comments.Delete(r.Context(), caller, req.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody)
}
