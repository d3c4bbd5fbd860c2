package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/ayush/content-coach/internal/apperr"
	"github.com/ayush/content-coach/internal/auth"
	"github.com/ayush/content-coach/internal/web"
)

// SessionResolver maps a session token to the user id it belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RequireSession validates the session cookie for JSON routes and injects
// the user id into the request context. Unauthenticated requests get a 401
// and any stale cookie is cleared.
func RequireSession(sessions SessionResolver, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolve(r, sessions)
			if err != nil {
				if apperr.KindOf(err) == apperr.Unauthenticated {
					if _, cerr := r.Cookie(auth.SessionCookie); cerr == nil {
						auth.ClearSessionCookie(w, secureCookie)
					}
				}
				web.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// RequirePageSession is RequireSession for HTML routes: unauthenticated
// requests are redirected to the login page.
func RequirePageSession(sessions SessionResolver, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolve(r, sessions)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
			case apperr.KindOf(err) == apperr.Unauthenticated:
				if _, cerr := r.Cookie(auth.SessionCookie); cerr == nil {
					auth.ClearSessionCookie(w, secureCookie)
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			default:
				hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("session lookup failed")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		})
	}
}

func resolve(r *http.Request, sessions SessionResolver) (string, error) {
	c, err := r.Cookie(auth.SessionCookie)
	if err != nil || c.Value == "" {
		return "", apperr.ErrUnauthenticated
	}
	return sessions.Resolve(r.Context(), c.Value)
}
