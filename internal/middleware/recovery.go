package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/response"
	"go.uber.org/zap"
)

// Recoverer turns a handler panic into a 500 in the standard error envelope.
func Recoverer(log logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						zap.Any("error", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("stack", string(debug.Stack())),
					)
					response.Error(w, r, log, apperror.Internal())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
