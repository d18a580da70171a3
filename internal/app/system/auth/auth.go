package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Identity is the verified caller behind a bearer token.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// Verifier checks a bearer token and returns who it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity stored by RequireBearer.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UID != ""
}

// CurrentUser returns the identity for r and a found flag.
func CurrentUser(r *http.Request) (Identity, bool) {
	return FromContext(r.Context())
}

// UserID returns the caller's uid, or "" when unauthenticated.
func UserID(r *http.Request) string {
	id, _ := CurrentUser(r)
	return id.UID
}

// RequireBearer verifies "Authorization: Bearer <token>" on every request.
// Missing or invalid tokens get a 401 JSON error.
func RequireBearer(v Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpjson.Error(w, logger, r, apperr.Unauthenticatedf("unauthorized"))
				return
			}
			id, err := v.Verify(r.Context(), token)
			if err != nil {
				logger.Debug("bearer token rejected", zap.Error(err))
				httpjson.Error(w, logger, r, apperr.Unauthenticatedf("invalid token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
