package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
)

type contextKey int

const identityContextKey contextKey = 0

// authMiddleware extracts and validates the bearer token, stashing the
// identity in the request context. Authorization decisions stay in the app
// services, this only answers who the caller is.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := s.cfg.Authenticator.ParseToken(token)
		if err != nil {
			writeErrorMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, *identity)
		ctx = log.CtxWithValues(ctx, log.Kv{"userID": identity.UserID, "role": identity.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identityFromContext returns the identity stashed by authMiddleware.
func identityFromContext(ctx context.Context) model.Identity {
	identity, _ := ctx.Value(identityContextKey).(model.Identity)
	return identity
}
