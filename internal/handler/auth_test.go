package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pawpoll/internal/auth"
	"github.com/sakif/pawpoll/internal/handler"
	"github.com/sakif/pawpoll/internal/repository/sqlite"
	"github.com/sakif/pawpoll/internal/service"
)

const frontendURL = "http://localhost:5173"

type fakeGoogle struct {
	user *auth.GoogleUser
	err  error
}

func (f *fakeGoogle) AuthURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeGoogle) Exchange(context.Context, string) (*auth.GoogleUser, error) {
	return f.user, f.err
}

func newAuthHandler(t *testing.T, google handler.GoogleExchanger) (*handler.AuthHandler, *auth.TokenService, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	logger := quietLogger()
	svc := service.NewAuthService(service.NewProfileService(db.Profiles(), logger), tokens, logger)
	return handler.NewAuthHandler(google, svc, false, frontendURL, logger), tokens, db
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_LoginSetsState(t *testing.T) {
	h, _, _ := newAuthHandler(t, &fakeGoogle{})
	rr := httptest.NewRecorder()

	h.HandleGoogleLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	state := findCookie(rr, "oauth_state")
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)
	assert.Equal(t, "https://accounts.example.com/auth?state="+state.Value, rr.Header().Get("Location"))
}

func TestAuthHandler_Callback(t *testing.T) {
	h, tokens, db := newAuthHandler(t, &fakeGoogle{user: &auth.GoogleUser{Email: "dana@example.com", EmailVerified: true}})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=c&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	rr := httptest.NewRecorder()

	h.HandleGoogleCallback(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, frontendURL, rr.Header().Get("Location"))
	session := findCookie(rr, auth.CookieName)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	email, err := tokens.Validate(session.Value)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", email)

	// Signing in created the profile with the default name.
	profile, err := db.Profiles().GetOrCreate(req.Context(), "dana@example.com", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "dana", profile.DisplayName)
}

func TestAuthHandler_CallbackRejects(t *testing.T) {
	tests := []struct {
		name   string
		google *fakeGoogle
		target string
		cookie string
		code   int
	}{
		{"state mismatch", &fakeGoogle{}, "/auth/google/callback?code=c&state=other", "s1", http.StatusBadRequest},
		{"no state cookie", &fakeGoogle{}, "/auth/google/callback?code=c&state=s1", "", http.StatusBadRequest},
		{"missing code", &fakeGoogle{}, "/auth/google/callback?state=s1", "s1", http.StatusBadRequest},
		{"exchange fails", &fakeGoogle{err: errors.New("unverified")}, "/auth/google/callback?code=c&state=s1", "s1", http.StatusUnauthorized},
		{"user denied", &fakeGoogle{}, "/auth/google/callback?error=access_denied&state=s1", "s1", http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newAuthHandler(t, tt.google)
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "oauth_state", Value: tt.cookie})
			}
			rr := httptest.NewRecorder()

			h.HandleGoogleCallback(rr, req)

			assert.Equal(t, tt.code, rr.Code)
			assert.Nil(t, findCookie(rr, auth.CookieName), "no session may be issued")
		})
	}
}

func TestAuthHandler_CallbackDeniedReturnsToFrontend(t *testing.T) {
	h, _, _ := newAuthHandler(t, &fakeGoogle{})
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	rr := httptest.NewRecorder()

	h.HandleGoogleCallback(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, frontendURL+"?auth=denied", rr.Header().Get("Location"))
}

func TestAuthHandler_Logout(t *testing.T) {
	h, _, _ := newAuthHandler(t, &fakeGoogle{})
	rr := httptest.NewRecorder()

	h.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assertSuccess(t, rr)
	session := findCookie(rr, auth.CookieName)
	require.NotNil(t, session)
	assert.Equal(t, -1, session.MaxAge)
}
