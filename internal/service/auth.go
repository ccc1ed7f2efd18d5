package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/pawpoll/internal/auth"
	"github.com/sakif/pawpoll/internal/model"
)

// AuthService turns a verified Google account into a session.
//
//	AuthHandler → AuthService → ProfileService (lazy profile)
//	                          ↘ TokenService (JWT)
type AuthService struct {
	profiles *ProfileService
	tokens   *auth.TokenService
	logger   *slog.Logger
}

func NewAuthService(profiles *ProfileService, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{profiles: profiles, tokens: tokens, logger: logger}
}

// AuthResult bundles the caller's profile and the issued session token so
// the handler can set the cookie and respond in one step.
type AuthResult struct {
	Profile *model.Profile
	Token   string
}

// LoginWithGoogle makes sure the user has a profile and issues a token whose
// subject is the verified email. A first sign-in names the profile after the
// Google account when it has a name. The handler owns cookies and redirects.
func (s *AuthService) LoginWithGoogle(ctx context.Context, user *auth.GoogleUser) (*AuthResult, error) {
	if user == nil || user.Email == "" {
		return nil, errors.New("service/auth: Google user has no email")
	}

	profile, err := s.profiles.GetSeeded(ctx, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading profile: %w", err)
	}

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	s.logger.Info("user signed in", slog.String("email", user.Email))

	return &AuthResult{Profile: profile, Token: token}, nil
}
