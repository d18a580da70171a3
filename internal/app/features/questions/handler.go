// internal/app/features/questions/handler.go
package questions

import (
	"context"
	"net/http"

	questionsvc "github.com/dalemusser/newsletterhub/internal/app/services/questions"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"github.com/dalemusser/newsletterhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *questionsvc.Service
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Svc: questionsvc.New(db, logger), Log: logger}
}

// Routes mounts question routes under /questions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleAdd)
	r.Get("/{id}", h.ServeGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	return r
}

// ServeList handles GET /questions?newsletterId=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	nid, err := httpjson.QueryID(r, "newsletterId")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Svc.List(ctx, nid, auth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list)
}

// HandleAdd handles POST /questions.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var in questionsvc.AddInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	if in.NewsletterID.IsZero() {
		httpjson.Error(w, h.Log, r, apperr.Invalidf("newsletterId is required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q, err := h.Svc.Add(ctx, auth.UserID(r), in)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.Created(w, q)
}

// ServeGet handles GET /questions/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q, err := h.Svc.Get(ctx, id, auth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, q)
}

// HandleUpdate handles PUT /questions/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var in questionsvc.UpdateInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q, err := h.Svc.Update(ctx, id, auth.UserID(r), in)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]any{"success": true, "question": q})
}

// HandleDelete handles DELETE /questions/{id}. Questions are deactivated,
// not removed.
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
