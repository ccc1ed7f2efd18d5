package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
	"github.com/sakif/pawpoll/internal/repository"
)

// MaxCommentLength is counted in characters (runes), not bytes, after
// surrounding whitespace is trimmed.
const MaxCommentLength = 1000

type PostCommentInput struct {
	PlaceID      string
	PlaceName    string
	PlaceAddress string
	Text         string
}

// CommentService implements the Comment Ledger.
type CommentService struct {
	repo   repository.CommentRepository
	logger *slog.Logger
}

func NewCommentService(repo repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{repo: repo, logger: logger}
}

// Post stores a new comment. Unlike votes there is no uniqueness rule: a
// user may comment on the same place any number of times.
func (s *CommentService) Post(ctx context.Context, owner string, in PostCommentInput) (*model.Comment, error) {
	if owner == "" {
		return nil, apperror.Unauthorized("sign in to comment")
	}

	comment := &model.Comment{
		PlaceID:      strings.TrimSpace(in.PlaceID),
		PlaceName:    strings.TrimSpace(in.PlaceName),
		PlaceAddress: strings.TrimSpace(in.PlaceAddress),
		OwnerEmail:   owner,
	}

	switch {
	case comment.PlaceID == "":
		return nil, apperror.ValidationFailed("place_id", "place_id is required")
	case comment.PlaceName == "":
		return nil, apperror.ValidationFailed("place_name", "place_name is required")
	case comment.PlaceAddress == "":
		return nil, apperror.ValidationFailed("place_address", "place_address is required")
	}

	text, err := validateCommentText(in.Text)
	if err != nil {
		return nil, err
	}
	comment.Text = text

	if err := s.repo.Create(ctx, comment); err != nil {
		s.logger.Error("failed to post comment",
			slog.String("place_id", comment.PlaceID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("posting comment: %w", err)
	}

	s.logger.Info("comment posted",
		slog.String("id", comment.ID),
		slog.String("place_id", comment.PlaceID),
	)

	return comment, nil
}

// ListForPlace returns a place's comments, newest first. viewer may be empty
// for anonymous requests; IsOwn is only ever true for a signed-in viewer.
func (s *CommentService) ListForPlace(ctx context.Context, placeID, viewer string) ([]model.Comment, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, apperror.ValidationFailed("place_id", "place_id is required")
	}

	comments, err := s.repo.ListByPlace(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("listing comments for %s: %w", placeID, err)
	}

	for i := range comments {
		comments[i].IsOwn = viewer != "" && comments[i].OwnerEmail == viewer
	}
	return comments, nil
}

// ListOwn returns every comment owner has written, newest first.
func (s *CommentService) ListOwn(ctx context.Context, owner string) ([]model.Comment, error) {
	if owner == "" {
		return nil, apperror.Unauthorized("sign in to list your comments")
	}

	comments, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing own comments: %w", err)
	}
	for i := range comments {
		comments[i].IsOwn = true
	}
	return comments, nil
}

func (s *CommentService) Edit(ctx context.Context, caller, id, text string) error {
	if caller == "" {
		return apperror.Unauthorized("sign in to edit comments")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "comment id is required")
	}
	text, err := validateCommentText(text)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateText(ctx, id, caller, text); err != nil {
		return ownershipError("comment", "editing", err)
	}

	s.logger.Info("comment edited", slog.String("id", id))
	return nil
}

func (s *CommentService) Delete(ctx context.Context, caller, id string) error {
	if caller == "" {
		return apperror.Unauthorized("sign in to delete comments")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "comment id is required")
	}

	if err := s.repo.Delete(ctx, id, caller); err != nil {
		return ownershipError("comment", "deleting", err)
	}

	s.logger.Info("comment deleted", slog.String("id", id))
	return nil
}

func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperror.ValidationFailed("comment_text", "comment cannot be empty")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return "", apperror.ValidationFailed("comment_text",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}
	return text, nil
}
