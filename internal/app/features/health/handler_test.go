package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/features/health"
	"github.com/dalemusser/newsletterhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type downPinger struct{}

func (downPinger) Ping(context.Context, *readpref.ReadPref) error {
	return errors.New("connection refused")
}

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), zap.NewNop())

	rec := testutil.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var body healthBody
	rec.DecodeJSON(t, &body)
	if body.Status != "ok" || body.Database != "connected" {
		t.Errorf("body = %+v", body)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	handler := health.NewHandler(downPinger{}, zap.NewNop())

	rec := testutil.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	rec.AssertStatus(t, http.StatusServiceUnavailable)
	var body healthBody
	rec.DecodeJSON(t, &body)
	if body.Status != "error" || body.Message != "Database unavailable" {
		t.Errorf("body = %+v", body)
	}
	// Driver detail stays out of the response.
	if got := rec.Body.String(); got == "" || strings.Contains(got, "refused") {
		t.Errorf("body leaks driver error: %s", got)
	}
}
