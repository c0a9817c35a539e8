package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/token"
)

// AuthMiddleware 驗證ctx是否有token payload
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Value(constants.AuthorizationPayloadKey).(*token.Payload)
		if !ok {
			api.ErrorJSON(w, http.StatusUnauthorized, nil, "unauthenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware 限制只有admin能通過 須放在AuthMiddleware之後
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := r.Context().Value(constants.AuthorizationPayloadKey).(*token.Payload)
		if !ok {
			api.ErrorJSON(w, http.StatusUnauthorized, nil, "unauthenticated")
			return
		}
		if payload.Role != model.RoleAdmin {
			api.ErrorJSON(w, http.StatusForbidden, nil, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}
