// Package httpjson writes JSON bodies and maps tagged errors to status codes.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Write encodes v as the response body with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with status 200.
func OK(w http.ResponseWriter, v any) { Write(w, http.StatusOK, v) }

// Created writes v with status 201.
func Created(w http.ResponseWriter, v any) { Write(w, http.StatusCreated, v) }

// Error writes {"error": msg} with the status for err's kind. Internal errors
// are logged and their detail is withheld from the client.
func Error(w http.ResponseWriter, log *zap.Logger, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if log != nil {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", kind.String()),
			zap.Error(err),
		}
		switch kind {
		case apperr.Internal:
			log.Error("request failed", fields...)
		case apperr.Unauthorized, apperr.Unauthenticated:
			log.Debug("request denied", fields...)
		}
	}
	Write(w, kind.Status(), map[string]string{"error": apperr.Message(err)})
}

// Decode reads a JSON body into v. Empty or malformed bodies are InvalidInput.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, limits.MaxRequestBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalidf("request body is required")
		}
		return apperr.Wrap(apperr.InvalidInput, err, "invalid JSON body")
	}
	return nil
}

// ParseID parses a hex ObjectID. Missing or malformed ids are InvalidInput
// naming field.
func ParseID(s, field string) (primitive.ObjectID, error) {
	if s == "" {
		return primitive.NilObjectID, apperr.Invalidf("%s is required", field)
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalidf("invalid %s", field)
	}
	return id, nil
}

// URLID parses the chi URL parameter name as an ObjectID.
func URLID(r *http.Request, name string) (primitive.ObjectID, error) {
	return ParseID(chi.URLParam(r, name), name)
}

// QueryID parses the query parameter name as an ObjectID.
func QueryID(r *http.Request, name string) (primitive.ObjectID, error) {
	return ParseID(r.URL.Query().Get(name), name)
}
