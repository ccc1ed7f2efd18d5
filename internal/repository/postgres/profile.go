package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
	"github.com/sakif/pawpoll/internal/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

type ProfileRepo struct {
	db querier
}

func NewProfileRepo(db querier) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetOrCreate inserts a default profile unless one exists, then reads the
// row back. Racing first visits converge on a single row.
func (r *ProfileRepo) GetOrCreate(ctx context.Context, email, defaultName string) (*model.Profile, error) {
	now := time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO profiles (email, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (email) DO NOTHING`,
		email, defaultName, now,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating profile for %s: %w", email, err)
	}

	return r.get(ctx, email)
}

// Upsert sets the display name. An unchanged name is a no-op write.
func (r *ProfileRepo) Upsert(ctx context.Context, email, displayName string) (*model.Profile, error) {
	now := time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO profiles (email, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (email) DO UPDATE
		 SET display_name = EXCLUDED.display_name, updated_at = EXCLUDED.updated_at
		 WHERE profiles.display_name <> EXCLUDED.display_name`,
		email, displayName, now,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: upserting profile for %s: %w", email, err)
	}

	return r.get(ctx, email)
}

func (r *ProfileRepo) get(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile

	err := r.db.QueryRow(ctx,
		`SELECT email, display_name, created_at, updated_at FROM profiles WHERE email = $1`,
		email,
	).Scan(&p.Email, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("profile", email)
		}
		return nil, fmt.Errorf("postgres: getting profile %s: %w", email, err)
	}

	return &p, nil
}
