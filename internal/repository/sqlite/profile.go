package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
	"github.com/sakif/pawpoll/internal/repository"
)

var _ repository.ProfileRepository = (*ProfileDB)(nil)

// ProfileDB is the profiles table, keyed by email.
type ProfileDB struct {
	conn *sql.DB
}

// GetOrCreate returns the profile for email, creating it with defaultName
// if it does not exist yet.
//
// INSERT ... ON CONFLICT DO NOTHING followed by a SELECT: two first visits
// racing each other both end up reading the single row that won, instead of
// one of them failing on the primary key.
func (d *ProfileDB) GetOrCreate(ctx context.Context, email, defaultName string) (*model.Profile, error) {
	now := time.Now().UTC()

	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO profiles (email, display_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (email) DO NOTHING`,
		email, defaultName, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating profile for %s: %w", email, err)
	}

	return d.get(ctx, email)
}

// Upsert stores displayName for email, creating the profile if needed.
//
// The WHERE on the DO UPDATE branch skips the write when the name is
// unchanged, so repeating the same call leaves updated_at alone too.
func (d *ProfileDB) Upsert(ctx context.Context, email, displayName string) (*model.Profile, error) {
	now := time.Now().UTC()

	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO profiles (email, display_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (email) DO UPDATE
		 SET display_name = excluded.display_name, updated_at = excluded.updated_at
		 WHERE profiles.display_name <> excluded.display_name`,
		email, displayName, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: upserting profile for %s: %w", email, err)
	}

	return d.get(ctx, email)
}

func (d *ProfileDB) get(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile

	err := d.conn.QueryRowContext(ctx,
		`SELECT email, display_name, created_at, updated_at
		 FROM profiles WHERE email = ?`,
		email,
	).Scan(&p.Email, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", email)
		}
		return nil, fmt.Errorf("sqlite: getting profile %s: %w", email, err)
	}

	return &p, nil
}
