package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/skillswap/backend/internal/domain/entities"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

// AdminResolver checks that an acting user holds the admin role
type AdminResolver interface {
	RequireAdmin(ctx context.Context, actorID string) (*entities.User, error)
}

// AdminOnly rejects requests whose X-User-ID is missing (401) or does not
// belong to an active administrator (403)
func AdminOnly(resolver AdminResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get("X-User-ID"))
			if actor == "" {
				writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
				return
			}

			if _, err := resolver.RequireAdmin(r.Context(), actor); err != nil {
				status := http.StatusForbidden
				if !apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) {
					status = http.StatusInternalServerError
				}
				writeError(w, status, "administrator privileges required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
