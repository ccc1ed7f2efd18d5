package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/pawpoll/internal/auth"
	"github.com/sakif/pawpoll/internal/service"
)

const stateCookie = "oauth_state"

// GoogleExchanger is the part of auth.GoogleProvider the handler uses.
type GoogleExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleUser, error)
}

// AuthHandler runs the Google sign-in flow and session cookie.
//
//   - HandleGoogleLogin    → redirect the browser to Google
//   - HandleGoogleCallback → check state, exchange the code, set the session cookie
//   - HandleLogout         → clear the session cookie
type AuthHandler struct {
	google       GoogleExchanger
	auth         *service.AuthService
	secureCookie bool
	frontendURL  string
	logger       *slog.Logger
}

// NewAuthHandler wires the flow. secureCookie should be true whenever the
// site is served over HTTPS. frontendURL is where the callback sends the
// browser once sign-in finishes or is declined.
func NewAuthHandler(google GoogleExchanger, authService *service.AuthService, secureCookie bool, frontendURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		google:       google,
		auth:         authService,
		secureCookie: secureCookie,
		frontendURL:  frontendURL,
		logger:       logger,
	}
}

// HandleGoogleLogin redirects to Google's consent page.
//
// HTTP: GET /auth/google/login
//
// CSRF PROTECTION VIA STATE:
// A random state goes into a short-lived HttpOnly cookie and into the
// redirect. The callback only proceeds when both match, which proves this
// server started the flow.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes sign-in.
//
// HTTP: GET /auth/google/callback?code=...&state=...
//
//  1. Validate state against the cookie
//  2. Exchange the code for the verified Google user
//  3. Create the profile if needed and issue the session token
//  4. Set the session cookie and redirect to the front end
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || q.Get("state") != cookie.Value {
		h.logger.Warn("auth callback: invalid state")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid OAuth state"})
		return
	}

	// single use
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := q.Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, h.frontendURL+"?auth=denied", http.StatusSeeOther)
		return
	}

	code := q.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "missing OAuth code"})
		return
	}

	user, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: Google exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication failed"})
		return
	}

	result, err := h.auth.LoginWithGoogle(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// POST, not GET, so a link or prefetch cannot sign someone out. Tokens are
// stateless: a copied token stays valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, successBody)
}
