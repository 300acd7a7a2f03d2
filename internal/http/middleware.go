package http

import (
	"context"
	"net/http"
	"strings"

	"smartexpense/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// withAuth resolves the Bearer token to a session and stores it on the
// request context. Requests without a live session get a 401.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		sess, ok := s.sessions.Get(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "session expired or unknown")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// sessionFrom returns the session placed on the context by withAuth.
func sessionFrom(ctx context.Context) session.Session {
	sess, _ := ctx.Value(sessionContextKey).(session.Session)
	return sess
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
