package util

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/token"
)

// GetTokenPayloadFromContext 從請求上下文取得token payload 不存在回傳nil
func GetTokenPayloadFromContext(ctx context.Context) *token.Payload {
	var tokenPayload *token.Payload

	if v := ctx.Value(constants.AuthorizationPayloadKey); v != nil {
		tokenPayload = v.(*token.Payload)
	}

	return tokenPayload
}

// GetRequestIDFromContext 取得request id 不存在回傳unknown
func GetRequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(constants.RequestIDKey); v != nil {
		return v.(string)
	}
	return "unknown"
}
