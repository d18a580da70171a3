package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"tagged", apperr.Unauthorizedf("nope"), apperr.Unauthorized},
		{"wrapped tagged", fmt.Errorf("outer: %w", apperr.NotFoundf("newsletter not found")), apperr.NotFound},
		{"no documents", mongo.ErrNoDocuments, apperr.NotFound},
		{"wrapped no documents", fmt.Errorf("get: %w", mongo.ErrNoDocuments), apperr.NotFound},
		{"plain", errors.New("boom"), apperr.Internal},
		{"message mentioning unauthorized is still internal", errors.New("Unauthorized: text only"), apperr.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.Unauthenticated, http.StatusUnauthorized},
		{apperr.Unauthorized, http.StatusForbidden},
		{apperr.NotFound, http.StatusNotFound},
		{apperr.InvalidInput, http.StatusBadRequest},
		{apperr.Conflict, http.StatusConflict},
		{apperr.RateLimited, http.StatusTooManyRequests},
		{apperr.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.kind.Status(); got != tt.want {
			t.Errorf("%v.Status() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestMessage_HidesInternal(t *testing.T) {
	err := apperr.Wrap(apperr.Internal, errors.New("connection refused"), "insert response")
	if got := apperr.Message(err); got != "internal server error" {
		t.Errorf("Message = %q", got)
	}
	if got := apperr.Message(apperr.Invalidf("name is required")); got != "name is required" {
		t.Errorf("Message = %q", got)
	}
}

func TestWrap_Unwraps(t *testing.T) {
	base := errors.New("base")
	err := apperr.Wrap(apperr.Conflict, base, "dup")
	if !errors.Is(err, base) {
		t.Error("expected wrapped error to match base")
	}
	if apperr.Wrap(apperr.Conflict, nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}
