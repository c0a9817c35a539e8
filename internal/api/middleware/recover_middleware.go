package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/rs/zerolog/log"
)

func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("panic", err).
					Bytes("stack", debug.Stack()).
					Str("url", r.URL.String()).
					Msg("request panicked")

				api.ErrorJSON(w, http.StatusInternalServerError, nil, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
