package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
	"github.com/sakif/pawpoll/internal/repository"
)

var _ repository.CommentRepository = (*CommentDB)(nil)

// CommentDB is the comments table.
type CommentDB struct {
	conn *sql.DB
}

// commentColumns selects a comment plus its author's display name.
//
// LEFT JOIN + COALESCE: comments whose author never got a profile row still
// show up, labelled with the author's email instead of a display name.
const commentColumns = `
	c.id, c.place_id, c.place_name, c.place_address, c.comment_text,
	c.user_email, c.created_at, COALESCE(p.display_name, c.user_email)
	FROM comments c
	LEFT JOIN profiles p ON p.email = c.user_email`

// Create inserts a comment. There is no uniqueness rule: a user may leave
// as many comments on a place as they like.
func (d *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now().UTC()

	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO comments (id, place_id, place_name, place_address, comment_text, user_email, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PlaceID,
		comment.PlaceName,
		comment.PlaceAddress,
		comment.Text,
		comment.OwnerEmail,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

// ListByPlace returns the comments on a place, newest first.
func (d *CommentDB) ListByPlace(ctx context.Context, placeID string) ([]model.Comment, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT `+commentColumns+`
		 WHERE c.place_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`,
		placeID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for place %s: %w", placeID, err)
	}
	return scanComments(rows)
}

// ListByOwner returns the comments written by ownerEmail, newest first.
func (d *CommentDB) ListByOwner(ctx context.Context, ownerEmail string) ([]model.Comment, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT `+commentColumns+`
		 WHERE c.user_email = ?
		 ORDER BY c.created_at DESC, c.id DESC`,
		ownerEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for %s: %w", ownerEmail, err)
	}
	return scanComments(rows)
}

// UpdateText replaces the text of a comment owned by ownerEmail.
// Returns apperror.ErrNotFound if no such comment exists for that owner.
func (d *CommentDB) UpdateText(ctx context.Context, id, ownerEmail, text string) error {
	result, err := d.conn.ExecContext(ctx,
		`UPDATE comments SET comment_text = ? WHERE id = ? AND user_email = ?`,
		text, id, ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", id, err)
	}
	return requireRow(result, "comment", id)
}

// Delete removes a comment owned by ownerEmail.
func (d *CommentDB) Delete(ctx context.Context, id, ownerEmail string) error {
	result, err := d.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ? AND user_email = ?`,
		id, ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	return requireRow(result, "comment", id)
}

// scanComments drains rows into a slice and always closes them.
func scanComments(rows *sql.Rows) ([]model.Comment, error) {
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.PlaceID, &c.PlaceName, &c.PlaceAddress, &c.Text,
			&c.OwnerEmail, &c.CreatedAt, &c.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// requireRow turns "0 rows affected" into a NotFound for resource id.
func requireRow(result sql.Result, resource, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
