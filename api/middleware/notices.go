package middleware

import (
	"net/http"

	"github.com/angelmondragon/graingrove-backend/internal/notices"
)

// Notices attaches a fresh collector so handlers and services can raise user-facing notices.
func Notices() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := notices.WithCollector(r.Context(), notices.NewCollector())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
