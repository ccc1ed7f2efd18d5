package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
	"github.com/sakif/pawpoll/internal/repository"
)

var _ repository.VoteRepository = (*VoteRepo)(nil)

// VoteRepo is the Postgres implementation of repository.VoteRepository.
type VoteRepo struct {
	db querier
}

// NewVoteRepo constructs a VoteRepo. In production pass *pgxpool.Pool; in
// tests pass a pgx.Tx for rollback isolation.
func NewVoteRepo(db querier) *VoteRepo {
	return &VoteRepo{db: db}
}

// Create inserts a vote, or reports a conflict if the (place, owner,
// question) triple is taken. The unique index decides; no pre-check query.
func (r *VoteRepo) Create(ctx context.Context, vote *model.Vote) error {
	vote.ID = xid.New().String()
	vote.CreatedAt = time.Now().UTC()

	const q = `
		INSERT INTO votes (id, place_id, place_name, place_address, vote_type, question_type, user_email, created_at)
		VALUES (@id, @place_id, @place_name, @place_address, @vote_type, @question_type, @user_email, @created_at)
		ON CONFLICT (place_id, user_email, question_type) DO NOTHING`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":            vote.ID,
		"place_id":      vote.PlaceID,
		"place_name":    vote.PlaceName,
		"place_address": vote.PlaceAddress,
		"vote_type":     string(vote.Value),
		"question_type": string(vote.QuestionType),
		"user_email":    vote.OwnerEmail,
		"created_at":    vote.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("postgres: creating vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Conflict("vote", "already voted on this question for this place")
	}

	return nil
}

func (r *VoteRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]model.Vote, error) {
	const q = `
		SELECT id, place_id, place_name, place_address, vote_type, question_type, user_email, created_at
		FROM votes
		WHERE user_email = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, q, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing votes for %s: %w", ownerEmail, err)
	}
	defer rows.Close()

	votes := make([]model.Vote, 0)
	for rows.Next() {
		var (
			v               model.Vote
			value, question string
		)
		if err := rows.Scan(
			&v.ID, &v.PlaceID, &v.PlaceName, &v.PlaceAddress,
			&value, &question, &v.OwnerEmail, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scanning vote row: %w", err)
		}
		v.Value = model.VoteValue(value)
		v.QuestionType = model.QuestionType(question)
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating votes: %w", err)
	}

	return votes, nil
}

func (r *VoteRepo) CountByPlace(ctx context.Context, placeID string) (model.VoteCounts, error) {
	var counts model.VoteCounts

	const q = `
		SELECT question_type, vote_type, COUNT(*)
		FROM votes
		WHERE place_id = $1
		GROUP BY question_type, vote_type`

	rows, err := r.db.Query(ctx, q, placeID)
	if err != nil {
		return counts, fmt.Errorf("postgres: counting votes for place %s: %w", placeID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			question, value string
			n               int64
		)
		if err := rows.Scan(&question, &value, &n); err != nil {
			return counts, fmt.Errorf("postgres: scanning vote count: %w", err)
		}
		counts.Add(model.QuestionType(question), model.VoteValue(value), int(n))
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("postgres: iterating vote counts: %w", err)
	}

	return counts, nil
}

func (r *VoteRepo) UpdateValue(ctx context.Context, id, ownerEmail string, value model.VoteValue) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE votes SET vote_type = $1 WHERE id = $2 AND user_email = $3`,
		string(value), id, ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating vote %s: %w", id, err)
	}
	return requireRow(tag, "vote", id)
}

func (r *VoteRepo) Delete(ctx context.Context, id, ownerEmail string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM votes WHERE id = $1 AND user_email = $2`,
		id, ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("postgres: deleting vote %s: %w", id, err)
	}
	return requireRow(tag, "vote", id)
}
