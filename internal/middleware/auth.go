package middleware

import (
	"net/http"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/response"
)

// Identity copies the gateway identity headers into the request context.
// Anonymous requests pass through with an empty identity.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithUser(r.Context(), auth.FromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequireAuth(log logger.ZapLogger) func(http.Handler) http.Handler {
	return require(log, func(u auth.UserContext) *apperror.Error {
		if !u.Authenticated() {
			return apperror.New(apperror.CodeUnauthorized, "authentication required")
		}
		return nil
	})
}

func RequireSeller(log logger.ZapLogger) func(http.Handler) http.Handler {
	return require(log, func(u auth.UserContext) *apperror.Error {
		if !u.Authenticated() {
			return apperror.New(apperror.CodeUnauthorized, "authentication required")
		}
		if !u.IsSeller() {
			return apperror.New(apperror.CodeForbidden, "seller access required")
		}
		return nil
	})
}

func RequireAdmin(log logger.ZapLogger) func(http.Handler) http.Handler {
	return require(log, func(u auth.UserContext) *apperror.Error {
		if !u.Authenticated() {
			return apperror.New(apperror.CodeUnauthorized, "authentication required")
		}
		if !u.IsAdmin() {
			return apperror.New(apperror.CodeForbidden, "admin access required")
		}
		return nil
	})
}

func require(log logger.ZapLogger, check func(auth.UserContext) *apperror.Error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := check(auth.GetUser(r.Context())); err != nil {
				response.Error(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
