// Package service contains the business rules of the two ledgers and the
// profile store.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)    → parses requests, writes responses
//	Service (rules)   → validates, checks ownership, orchestrates
//	Repository (data) → reads/writes the database
//
// Services take repository interfaces, never *sqlite.DB or *postgres.DB,
// so the same rules run on either store and the unit tests run against
// in-memory fakes (see *_test.go).
//
// CALLER IDENTITY:
// Every method that acts on behalf of a user takes the caller's identity
// (the verified email from the session) as a plain string. The service does
// not authenticate; it trusts that string and only decides what it may do.
// An empty identity means "not signed in" and is always Unauthorized where a
// user is required.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
	"github.com/sakif/pawpoll/internal/repository"
)

// SubmitVoteInput is the payload of VoteService.Submit. Place name and
// address are display snapshots and may be empty.
type SubmitVoteInput struct {
	PlaceID      string
	PlaceName    string
	PlaceAddress string
	Value        model.VoteValue
	QuestionType model.QuestionType
}

// VoteService implements the Vote Ledger.
type VoteService struct {
	repo   repository.VoteRepository
	logger *slog.Logger
}

func NewVoteService(repo repository.VoteRepository, logger *slog.Logger) *VoteService {
	return &VoteService{repo: repo, logger: logger}
}

// Submit records a new vote for owner.
//
// Validation runs before anything touches the store. The duplicate rule is
// NOT checked here: a "has this user voted?" read followed by an insert
// would let two concurrent requests both pass the read. The repository's
// insert is the check (see the unique index), and its Conflict is returned
// as-is.
func (s *VoteService) Submit(ctx context.Context, owner string, in SubmitVoteInput) (*model.Vote, error) {
	if owner == "" {
		return nil, apperror.Unauthorized("sign in to vote")
	}

	placeID := strings.TrimSpace(in.PlaceID)
	if placeID == "" {
		return nil, apperror.ValidationFailed("place_id", "place_id is required")
	}
	if !in.Value.Valid() {
		return nil, apperror.ValidationFailed("vote_type", `vote_type must be "yes" or "no"`)
	}
	if !in.QuestionType.Valid() {
		return nil, apperror.ValidationFailed("question_type", `question_type must be "dog" or "pet"`)
	}

	vote := &model.Vote{
		PlaceID:      placeID,
		PlaceName:    strings.TrimSpace(in.PlaceName),
		PlaceAddress: strings.TrimSpace(in.PlaceAddress),
		Value:        in.Value,
		QuestionType: in.QuestionType,
		OwnerEmail:   owner,
	}

	if err := s.repo.Create(ctx, vote); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to submit vote",
			slog.String("place_id", placeID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("submitting vote: %w", err)
	}

	s.logger.Info("vote submitted",
		slog.String("id", vote.ID),
		slog.String("place_id", vote.PlaceID),
		slog.String("question_type", string(vote.QuestionType)),
	)

	return vote, nil
}

// Aggregate returns the public yes/no counts of a place. All four counts are
// always present.
func (s *VoteService) Aggregate(ctx context.Context, placeID string) (model.VoteCounts, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return model.VoteCounts{}, apperror.ValidationFailed("place_id", "place_id is required")
	}

	counts, err := s.repo.CountByPlace(ctx, placeID)
	if err != nil {
		return model.VoteCounts{}, fmt.Errorf("aggregating votes for %s: %w", placeID, err)
	}
	return counts, nil
}

// ListOwn returns owner's votes, newest first. Only the owner may list them.
func (s *VoteService) ListOwn(ctx context.Context, caller, owner string) ([]model.Vote, error) {
	if caller == "" || caller != owner {
		return nil, apperror.Unauthorized("you can only list your own votes")
	}

	votes, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing votes: %w", err)
	}
	return votes, nil
}

// Edit changes the answer of one of caller's votes.
func (s *VoteService) Edit(ctx context.Context, caller, id string, value model.VoteValue) error {
	if caller == "" {
		return apperror.Unauthorized("sign in to edit votes")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "vote id is required")
	}
	if !value.Valid() {
		return apperror.ValidationFailed("vote_type", `vote_type must be "yes" or "no"`)
	}

	if err := s.repo.UpdateValue(ctx, id, caller, value); err != nil {
		return ownershipError("vote", "editing", err)
	}

	s.logger.Info("vote edited", slog.String("id", id), slog.String("vote_type", string(value)))
	return nil
}

// Delete removes one of caller's votes.
func (s *VoteService) Delete(ctx context.Context, caller, id string) error {
	if caller == "" {
		return apperror.Unauthorized("sign in to delete votes")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "vote id is required")
	}

	if err := s.repo.Delete(ctx, id, caller); err != nil {
		return ownershipError("vote", "deleting", err)
	}

	s.logger.Info("vote deleted", slog.String("id", id))
	return nil
}

// ownershipError maps a repository NotFound from an owner-scoped write to
// Unauthorized. The repository cannot tell "no such row" from "someone
// else's row" and neither may the caller.
func ownershipError(resource, action string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.Unauthorized(fmt.Sprintf("%s not found or not yours", resource))
	}
	return fmt.Errorf("%s %s: %w", action, resource, err)
}
