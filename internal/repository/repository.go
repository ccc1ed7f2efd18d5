// Package repository declares the storage contracts of the application.
//
// Services depend on these interfaces, never on a concrete database. Two
// implementations live in the sub-packages: sqlite (embedded, the default)
// and postgres (pgx pool). Both must give the same guarantees:
//
//   - CreateVote is atomic with respect to the (place, owner, question)
//     uniqueness rule. A duplicate returns an apperror.ErrConflict.
//   - Update*/Delete* take the owner as part of the key. A row that is
//     missing or owned by someone else returns apperror.ErrNotFound, with no
//     way to tell the two apart.
//   - List* return newest first.
package repository

import (
	"context"

	"github.com/sakif/pawpoll/internal/model"
)

type VoteRepository interface {
	Create(ctx context.Context, vote *model.Vote) error
	ListByOwner(ctx context.Context, ownerEmail string) ([]model.Vote, error)
	CountByPlace(ctx context.Context, placeID string) (model.VoteCounts, error)
	UpdateValue(ctx context.Context, id, ownerEmail string, value model.VoteValue) error
	Delete(ctx context.Context, id, ownerEmail string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByPlace(ctx context.Context, placeID string) ([]model.Comment, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]model.Comment, error)
	UpdateText(ctx context.Context, id, ownerEmail, text string) error
	Delete(ctx context.Context, id, ownerEmail string) error
}

type ProfileRepository interface {
	// GetOrCreate returns the profile for email, inserting one with
	// defaultName first if none exists.
	GetOrCreate(ctx context.Context, email, defaultName string) (*model.Profile, error)
	// Upsert sets the display name, creating the profile if needed.
	Upsert(ctx context.Context, email, displayName string) (*model.Profile, error)
}

// Backend is the lifecycle side of a store: the server pings it for health
// checks and closes it on shutdown.
type Backend interface {
	Ping(ctx context.Context) error
	Close() error
}
