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

// compile-time check that *VoteDB implements repository.VoteRepository
var _ repository.VoteRepository = (*VoteDB)(nil)

// VoteDB is the votes table.
type VoteDB struct {
	conn *sql.DB
}

// Create inserts a vote.
//
// ATOMIC DUPLICATE CHECK:
// There is no "SELECT then INSERT" here. The insert itself carries
// ON CONFLICT ... DO NOTHING against the unique (place_id, user_email,
// question_type) index, so the check and the write are one statement. If a
// row for the triple already exists, nothing is written and RowsAffected is 0,
// which we report as a conflict. Two concurrent submissions can never both
// insert.
func (d *VoteDB) Create(ctx context.Context, vote *model.Vote) error {
	vote.ID = xid.New().String()
	vote.CreatedAt = time.Now().UTC()

	result, err := d.conn.ExecContext(ctx,
		`INSERT INTO votes (id, place_id, place_name, place_address, vote_type, question_type, user_email, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (place_id, user_email, question_type) DO NOTHING`,
		vote.ID,
		vote.PlaceID,
		vote.PlaceName,
		vote.PlaceAddress,
		string(vote.Value),
		string(vote.QuestionType),
		vote.OwnerEmail,
		vote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating vote: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.Conflict("vote", "already voted on this question for this place")
	}

	return nil
}

// ListByOwner returns every vote cast by ownerEmail, newest first.
// The id is the tiebreaker because xids sort by creation time too.
func (d *VoteDB) ListByOwner(ctx context.Context, ownerEmail string) ([]model.Vote, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, place_id, place_name, place_address, vote_type, question_type, user_email, created_at
		 FROM votes
		 WHERE user_email = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing votes for %s: %w", ownerEmail, err)
	}
	defer rows.Close()

	votes := make([]model.Vote, 0)
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(
			&v.ID, &v.PlaceID, &v.PlaceName, &v.PlaceAddress,
			&v.Value, &v.QuestionType, &v.OwnerEmail, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning vote row: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating votes: %w", err)
	}

	return votes, nil
}

// CountByPlace aggregates the votes of a place per (question, value).
// Combinations with no rows are simply absent from the GROUP BY result;
// the zero value of model.VoteCounts fills them in.
func (d *VoteDB) CountByPlace(ctx context.Context, placeID string) (model.VoteCounts, error) {
	var counts model.VoteCounts

	rows, err := d.conn.QueryContext(ctx,
		`SELECT question_type, vote_type, COUNT(*)
		 FROM votes
		 WHERE place_id = ?
		 GROUP BY question_type, vote_type`,
		placeID,
	)
	if err != nil {
		return counts, fmt.Errorf("sqlite: counting votes for place %s: %w", placeID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			question model.QuestionType
			value    model.VoteValue
			n        int
		)
		if err := rows.Scan(&question, &value, &n); err != nil {
			return counts, fmt.Errorf("sqlite: scanning vote count: %w", err)
		}
		counts.Add(question, value, n)
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("sqlite: iterating vote counts: %w", err)
	}

	return counts, nil
}

// UpdateValue changes the answer of a vote owned by ownerEmail.
//
// The owner is part of the WHERE clause, so the ownership check and the
// write cannot drift apart. Zero rows affected means "no such vote for this
// owner". Whether the id is unknown or belongs to someone else is not
// distinguishable, on purpose.
func (d *VoteDB) UpdateValue(ctx context.Context, id, ownerEmail string, value model.VoteValue) error {
	result, err := d.conn.ExecContext(ctx,
		`UPDATE votes SET vote_type = ? WHERE id = ? AND user_email = ?`,
		string(value), id, ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating vote %s: %w", id, err)
	}
	return requireRow(result, "vote", id)
}

// Delete removes a vote owned by ownerEmail. Same ownership rule as UpdateValue.
func (d *VoteDB) Delete(ctx context.Context, id, ownerEmail string) error {
	result, err := d.conn.ExecContext(ctx,
		`DELETE FROM votes WHERE id = ? AND user_email = ?`,
		id, ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting vote %s: %w", id, err)
	}
	return requireRow(result, "vote", id)
}
