package middleware

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clarityhq/workplan/pkg/composables"
)

// DatabasePool makes the pgx pool available to repositories. Handlers that
// need atomicity open a transaction on top via composables.InTx.
func DatabasePool(pool *pgxpool.Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(composables.WithPool(r.Context(), pool)))
		})
	}
}
