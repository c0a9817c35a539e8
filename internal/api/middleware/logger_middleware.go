package middleware

import (
	"net/http"
	"os"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/rs/zerolog"
)

type StatusRecoder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecoder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecoder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// 記錄request 請求
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	// fallback在組裝時決定好 handler內不能改共享變數
	if logger == nil {
		temp := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &temp
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recoder := &StatusRecoder{
				ResponseWriter: w,
			}

			start := time.Now()
			next.ServeHTTP(recoder, r)
			elapsed := time.Since(start)

			ctx := r.Context()
			event := logger.Info().
				Str("request_id", util.GetRequestIDFromContext(ctx)).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", recoder.Status()).
				Dur("elapsed", elapsed)
			if payload := util.GetTokenPayloadFromContext(ctx); payload != nil {
				event = event.Int("user_id", payload.UserID)
			}
			event.Msg("request completed")
		})
	}
}
