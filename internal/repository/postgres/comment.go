package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/sakif/pawpoll/internal/model"
	"github.com/sakif/pawpoll/internal/repository"
)

var _ repository.CommentRepository = (*CommentRepo)(nil)

type CommentRepo struct {
	db querier
}

func NewCommentRepo(db querier) *CommentRepo {
	return &CommentRepo{db: db}
}

// selectComments joins each comment with its author's display name, falling
// back to the email when the author has no profile row.
const selectComments = `
	SELECT c.id, c.place_id, c.place_name, c.place_address, c.comment_text,
	       c.user_email, c.created_at, COALESCE(p.display_name, c.user_email)
	FROM comments c
	LEFT JOIN profiles p ON p.email = c.user_email`

func (r *CommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now().UTC()

	const q = `
		INSERT INTO comments (id, place_id, place_name, place_address, comment_text, user_email, created_at)
		VALUES (@id, @place_id, @place_name, @place_address, @comment_text, @user_email, @created_at)`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":            comment.ID,
		"place_id":      comment.PlaceID,
		"place_name":    comment.PlaceName,
		"place_address": comment.PlaceAddress,
		"comment_text":  comment.Text,
		"user_email":    comment.OwnerEmail,
		"created_at":    comment.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("postgres: creating comment: %w", err)
	}
	return nil
}

func (r *CommentRepo) ListByPlace(ctx context.Context, placeID string) ([]model.Comment, error) {
	rows, err := r.db.Query(ctx,
		selectComments+` WHERE c.place_id = $1 ORDER BY c.created_at DESC, c.id DESC`,
		placeID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing comments for place %s: %w", placeID, err)
	}
	return collectComments(rows)
}

func (r *CommentRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]model.Comment, error) {
	rows, err := r.db.Query(ctx,
		selectComments+` WHERE c.user_email = $1 ORDER BY c.created_at DESC, c.id DESC`,
		ownerEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing comments for %s: %w", ownerEmail, err)
	}
	return collectComments(rows)
}

func (r *CommentRepo) UpdateText(ctx context.Context, id, ownerEmail, text string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE comments SET comment_text = $1 WHERE id = $2 AND user_email = $3`,
		text, id, ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating comment %s: %w", id, err)
	}
	return requireRow(tag, "comment", id)
}

func (r *CommentRepo) Delete(ctx context.Context, id, ownerEmail string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM comments WHERE id = $1 AND user_email = $2`,
		id, ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("postgres: deleting comment %s: %w", id, err)
	}
	return requireRow(tag, "comment", id)
}

// collectComments scans every row with pgx.CollectRows and closes rows.
func collectComments(rows pgx.Rows) ([]model.Comment, error) {
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Comment, error) {
		var c model.Comment
		err := row.Scan(
			&c.ID, &c.PlaceID, &c.PlaceName, &c.PlaceAddress, &c.Text,
			&c.OwnerEmail, &c.CreatedAt, &c.DisplayName,
		)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scanning comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}
