package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/pawpoll/internal/auth"
	"github.com/sakif/pawpoll/internal/model"
	"github.com/sakif/pawpoll/internal/service"
)

// VoteHandler serves /api/votes.
type VoteHandler struct {
	votes  *service.VoteService
	logger *slog.Logger
}

func NewVoteHandler(votes *service.VoteService, logger *slog.Logger) *VoteHandler {
	return &VoteHandler{votes: votes, logger: logger}
}

type submitVoteRequest struct {
	PlaceID      string             `json:"place_id"`
	PlaceName    string             `json:"place_name"`
	PlaceAddress string             `json:"place_address"`
	VoteType     model.VoteValue    `json:"vote_type"`
	QuestionType model.QuestionType `json:"question_type"`
}

type editVoteRequest struct {
	ID       string          `json:"id"`
	VoteType model.VoteValue `json:"vote_type"`
}

type idRequest struct {
	ID string `json:"id"`
}

// HandleSubmit records a vote for the signed-in user.
//
// HTTP: POST /api/votes  (auth required)
// Body: {"place_id","place_name","place_address","vote_type","question_type"}
// 409 if the user already answered this question for this place.
func (h *VoteHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	var req submitVoteRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	_, err := h.votes.Submit(r.Context(), caller, service.SubmitVoteInput{
		PlaceID:      req.PlaceID,
		PlaceName:    req.PlaceName,
		PlaceAddress: req.PlaceAddress,
		Value:        req.VoteType,
		QuestionType: req.QuestionType,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successBody)
}

// HandleAggregate returns the public counts of a place.
//
// HTTP: GET /api/votes?place_id=P1
// Response: {"dog":{"yes":1,"no":0},"pet":{"yes":0,"no":0}}
func (h *VoteHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	counts, err := h.votes.Aggregate(r.Context(), r.URL.Query().Get("place_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// HandleListOwn returns the caller's votes, newest first.
//
// HTTP: GET /api/votes/user?email=alice@example.com  (auth required)
// The email must be the caller's own; anything else is 401.
func (h *VoteHandler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	votes, err := h.votes.ListOwn(r.Context(), caller, r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, votes)
}

// HandleEdit changes the answer of one of the caller's votes.
//
// HTTP: PATCH /api/votes/user  {"id","vote_type"}  (auth required)
func (h *VoteHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	var req editVoteRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	if err := h.votes.Edit(r.Context(), caller, req.ID, req.VoteType); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody)
}

// HandleDelete removes one of the caller's votes.
//
// HTTP: DELETE /api/votes/user  {"id"}  (auth required)
func (h *VoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.EmailFromContext(r.Context())

	var req idRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	if err := h.votes.Delete(r.Context(), caller, req.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody)
}
