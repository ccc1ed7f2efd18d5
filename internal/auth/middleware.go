package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or overwrite the
// identity stored by these middlewares.
type contextKey string

const emailKey contextKey = "email"

// CookieName is the HttpOnly cookie that carries the session token.
const CookieName = "token"

// RequireAuth rejects requests without a valid session with a JSON 401 and
// otherwise stores the caller's email in the request context.
//
// A nil TokenService means sign-in is not configured; every protected
// route then answers 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := extractEmail(r, tokens)
			if err != nil || email == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"sign in required"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEmail(r.Context(), email)))
		})
	}
}

// OptionalAuth stores the caller's email when a valid session is present and
// lets anonymous requests through untouched. Used where signed-in viewers
// see a little more (e.g. which comments are their own).
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if email, err := extractEmail(r, tokens); err == nil && email != "" {
				r = r.WithContext(WithEmail(r.Context(), email))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithEmail returns a copy of ctx carrying the caller identity.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// EmailFromContext returns the signed-in caller's email, or ("", false) for
// anonymous requests.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

// extractEmail reads the session token from the cookie, or from an
// "Authorization: Bearer" header for non-browser clients.
func extractEmail(r *http.Request, tokens *TokenService) (string, error) {
	if tokens == nil {
		return "", http.ErrNoCookie
	}

	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return tokens.Validate(cookie.Value)
	}

	if h := r.Header.Get("Authorization"); h != "" {
		if raw, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tokens.Validate(strings.TrimSpace(raw))
		}
	}

	return "", http.ErrNoCookie
}
