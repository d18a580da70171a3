package authz_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/system/authz"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.uber.org/zap"
)

type checker map[string]bool

func (c checker) IsAdmin(_ context.Context, uid string) (bool, error) {
	if uid == "broken" {
		return false, errors.New("db down")
	}
	return c[uid], nil
}

func TestRequireAdmin(t *testing.T) {
	var sawAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAdmin = authz.IsAdmin(r)
		w.WriteHeader(http.StatusNoContent)
	})
	h := authz.RequireAdmin(checker{"root": true}, zap.NewNop())(next)

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"anonymous", testutil.NewJSONRequest("GET", "/admin/test", nil), http.StatusUnauthorized},
		{"not admin", testutil.NewAuthenticatedRequest("GET", "/admin/test", "alice", nil), http.StatusForbidden},
		{"lookup error", testutil.NewAuthenticatedRequest("GET", "/admin/test", "broken", nil), http.StatusInternalServerError},
		{"admin", testutil.NewAuthenticatedRequest("GET", "/admin/test", "root", nil), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sawAdmin = false
			rec := testutil.NewRecorder()
			h.ServeHTTP(rec, tt.req)
			rec.AssertStatus(t, tt.want)
			if sawAdmin != (tt.want == http.StatusNoContent) {
				t.Errorf("IsAdmin in handler = %v", sawAdmin)
			}
		})
	}
}
