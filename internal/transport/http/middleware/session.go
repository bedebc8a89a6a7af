package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/documentor-api/internal/domain"
)

// CookieName holds the session token set after a successful login.
const CookieName = "access_token"

type contextKey string

const userKey contextKey = "user"

// SessionResolver turns a session token into the user it belongs to.
type SessionResolver interface {
	RestoreSession(ctx context.Context, token string) (*domain.User, error)
}

// TokenFromRequest returns the session token from the access_token cookie
// or, failing that, an Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return strings.TrimPrefix(c.Value, "Bearer ")
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// PageSession guards HTML pages. Requests without a usable session are sent
// to /login with the current path as redirect_uri, and a stale cookie is
// cleared on the way using the configured Secure flag.
func PageSession(resolver SessionResolver, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := resolve(r, resolver)
			if err != nil {
				if TokenFromRequest(r) != "" {
					ClearSessionCookie(w, secureCookie)
				}
				target := "/login?redirect_uri=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// APISession guards JSON endpoints and answers 401 without a usable session.
func APISession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := resolve(r, resolver)
			if err != nil {
				status, msg := http.StatusUnauthorized, "invalid or expired token"
				if errors.Is(err, domain.ErrForbidden) {
					status, msg = http.StatusForbidden, "account disabled"
				}
				writeJSONError(w, status, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func resolve(r *http.Request, resolver SessionResolver) (*domain.User, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	u, err := resolver.RestoreSession(r.Context(), token)
	if err != nil {
		if !domain.IsTokenFailure(err) && !errors.Is(err, domain.ErrUserNotFound) && !errors.Is(err, domain.ErrForbidden) {
			slog.Warn("session restore failed", "err", err)
		}
		return nil, err
	}
	return u, nil
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user stored by the session middleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok && u != nil
}

// SetSessionCookie stores token in an HttpOnly, SameSite=Lax cookie.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	SetSessionCookie(w, "", -1, secure)
}
