// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"net/http"

	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// AdminChecker reports whether uid currently holds admin rights.
type AdminChecker interface {
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

type ctxKey struct{}

// IsAdmin reports whether the current request passed RequireAdmin.
func IsAdmin(r *http.Request) bool {
	ok, _ := r.Context().Value(ctxKey{}).(bool)
	return ok
}

// RequireAdmin lets a request through only when the authenticated caller's
// profile is both active and flagged admin. The flag is re-read from the
// database on every request so revocation takes effect immediately.
func RequireAdmin(checker AdminChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := auth.UserID(r)
			if uid == "" {
				httpjson.Error(w, logger, r, apperr.Unauthenticatedf("unauthorized"))
				return
			}
			ok, err := checker.IsAdmin(r.Context(), uid)
			if err != nil {
				httpjson.Error(w, logger, r, err)
				return
			}
			if !ok {
				logger.Warn("admin access denied", zap.String("user_id", uid), zap.String("path", r.URL.Path))
				httpjson.Error(w, logger, r, apperr.Unauthorizedf("admin access required"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, true)))
		})
	}
}
