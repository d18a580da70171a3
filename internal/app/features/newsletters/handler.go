// internal/app/features/newsletters/handler.go
package newsletters

import (
	"context"
	"net/http"

	newslettersvc "github.com/dalemusser/newsletterhub/internal/app/services/newsletters"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"github.com/dalemusser/newsletterhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves newsletter and membership endpoints.
type Handler struct {
	Svc *newslettersvc.Service
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Svc: newslettersvc.New(db, logger), Log: logger}
}

// ServeList handles GET /newsletters: the caller's newsletters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Svc.ListForUser(ctx, auth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list)
}

// HandleCreate handles POST /newsletters.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in newslettersvc.CreateInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Svc.Create(ctx, auth.UserID(r), in)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.Created(w, map[string]any{"id": n.ID, "newsletter": n})
}

// ServeGet handles GET /newsletters/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Svc.Get(ctx, id, auth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, n)
}

// HandleUpdate handles PUT /newsletters/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var in newslettersvc.UpdateInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Svc.Update(ctx, id, auth.UserID(r), in)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]any{"success": true, "newsletter": n})
}

// HandleDelete handles DELETE /newsletters/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.Delete(ctx, id, auth.UserID(r)); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]bool{"success": true})
}
