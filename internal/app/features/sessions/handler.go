// internal/app/features/sessions/handler.go
package sessions

import (
	"context"
	"net/http"

	sessionsvc "github.com/dalemusser/newsletterhub/internal/app/services/sessions"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"github.com/dalemusser/newsletterhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *sessionsvc.Service
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Svc: sessionsvc.New(db, logger), Log: logger}
}

// Routes mounts session routes under /sessions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeActive)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)
	return r
}

// ServeActive handles GET /sessions?newsletterId=. The body is null when
// no session is active.
func (h *Handler) ServeActive(w http.ResponseWriter, r *http.Request) {
	nid, err := httpjson.QueryID(r, "newsletterId")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sess, err := h.Svc.GetActive(ctx, nid, auth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, sess)
}

// HandleCreate handles POST /sessions.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in sessionsvc.CreateInput
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

	sess, err := h.Svc.Create(ctx, auth.UserID(r), in)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.Created(w, map[string]any{"id": sess.ID, "session": sess})
}

// HandleUpdate handles PUT /sessions/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var in sessionsvc.UpdateInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sess, err := h.Svc.Update(ctx, id, auth.UserID(r), in)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]any{"success": true, "session": sess})
}
