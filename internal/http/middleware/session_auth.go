package middleware

import (
	"net/http"
	"strings"

	"github.com/fertilitycare/patient-portal/internal/apperr"
	"github.com/fertilitycare/patient-portal/internal/session"
)

// RequireSession rejects requests without a valid session bearer token and
// stores the caller's identity in the request context.
func RequireSession(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identityFromRequest(r, secret)
			if !ok {
				apperr.Write(w, apperr.Unauthenticated())
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalSession attaches the identity when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalSession(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := identityFromRequest(r, secret); ok {
				r = r.WithContext(session.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityFromRequest(r *http.Request, secret string) (session.Identity, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return session.Identity{}, false
	}
	id, err := session.ParseToken(strings.TrimPrefix(auth, "Bearer "), secret)
	if err != nil {
		return session.Identity{}, false
	}
	return id, true
}
