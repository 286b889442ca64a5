package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/campus-hub/student-records/internal/domain/account"
	"github.com/campus-hub/student-records/internal/domain/session"
	"github.com/campus-hub/student-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION MIDDLEWARE
// Tokens travel as "Authorization: Bearer <token>". Every guarded route
// revalidates the token; an expired session answers 401 like a missing
// one, so the client cannot distinguish eviction from expiry.
// ══════════════════════════════════════════════════════════════════════════════

const contextKeySession contextKey = "session"

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// sessionFromContext returns the validated session, if any.
func sessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(contextKeySession).(*session.Session)
	return s, ok
}

// requireAuth validates the bearer token and attaches the session to the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
			return
		}

		sess, err := s.deps.Auth.Validate(r.Context(), token)
		if err != nil {
			if errors.Is(err, shared.ErrExpired) {
				writeJSONError(w, http.StatusUnauthorized, "session_expired", "Session expired, please log in again")
				return
			}
			if shared.IsNotFound(err) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or revoked session")
				return
			}
			s.respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeySession, sess)
		next(w, r.WithContext(ctx))
	}
}

// requireRole guards a route behind a role allowlist.
func (s *Server) requireRole(next http.HandlerFunc, roles ...account.Role) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "No session")
			return
		}

		for _, role := range roles {
			if sess.Subject.Role == role {
				next(w, r)
				return
			}
		}

		writeJSONError(w, http.StatusForbidden, "forbidden", "Insufficient role")
	})
}

// requireStaff allows admins and teachers.
func (s *Server) requireStaff(next http.HandlerFunc) http.HandlerFunc {
	return s.requireRole(next, account.RoleAdmin, account.RoleTeacher)
}

// requireAdmin allows admins only.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireRole(next, account.RoleAdmin)
}
