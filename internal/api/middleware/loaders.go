package middleware

import (
	"net/http"

	"github.com/skillswap/backend/internal/api/loaders"
)

// LoadersMiddleware attaches fresh per-request dataloaders to the context
func LoadersMiddleware(source loaders.Source) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := loaders.WithLoaders(r.Context(), loaders.NewLoaders(source))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
