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

const MaxDisplayNameLength = 50

// ProfileService implements the Profile Store.
type ProfileService struct {
	repo   repository.ProfileRepository
	logger *slog.Logger
}

func NewProfileService(repo repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

// Get returns the profile of identity, creating it on first access.
// This is a write on a miss, not a pure read.
func (s *ProfileService) Get(ctx context.Context, identity string) (*model.Profile, error) {
	return s.GetSeeded(ctx, identity, "")
}

// GetSeeded is Get with a preferred name for a profile that does not exist
// yet, such as the name on the caller's Google account. An empty or blank
// seed falls back to DefaultDisplayName. Existing profiles are never
// renamed.
func (s *ProfileService) GetSeeded(ctx context.Context, identity, seed string) (*model.Profile, error) {
	if identity == "" {
		return nil, apperror.Unauthorized("sign in to view your profile")
	}

	name := truncateName(strings.TrimSpace(seed))
	if name == "" {
		name = DefaultDisplayName(identity)
	}

	profile, err := s.repo.GetOrCreate(ctx, identity, name)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return profile, nil
}

// SetDisplayName creates or updates identity's profile with name.
// Setting the same name twice leaves the stored row unchanged.
func (s *ProfileService) SetDisplayName(ctx context.Context, identity, name string) (*model.Profile, error) {
	if identity == "" {
		return nil, apperror.Unauthorized("sign in to change your display name")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("display_name", "display name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return nil, apperror.ValidationFailed("display_name",
			fmt.Sprintf("display name must be %d characters or less", MaxDisplayNameLength))
	}

	profile, err := s.repo.Upsert(ctx, identity, name)
	if err != nil {
		s.logger.Error("failed to set display name", slog.String("error", err.Error()))
		return nil, fmt.Errorf("setting display name: %w", err)
	}

	s.logger.Info("display name updated", slog.String("email", identity))
	return profile, nil
}

// DefaultDisplayName derives a name from an identity: the part before "@"
// for email-shaped identities, the whole string otherwise, cut to
// MaxDisplayNameLength characters.
func DefaultDisplayName(identity string) string {
	name := identity
	if local, _, ok := strings.Cut(identity, "@"); ok && local != "" {
		name = local
	}
	return truncateName(name)
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		name = string([]rune(name)[:MaxDisplayNameLength])
	}
	return name
}
