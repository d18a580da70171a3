// internal/app/features/assignments/handler.go
package assignments

import (
	"context"
	"net/http"

	assignmentsvc "github.com/dalemusser/newsletterhub/internal/app/services/assignments"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"github.com/dalemusser/newsletterhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *assignmentsvc.Service
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Svc: assignmentsvc.New(db, logger), Log: logger}
}

// Routes mounts assignment routes under /assignments.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleAssign)
	return r
}

// ServeList handles GET /assignments?sessionId=[&userId=]. userId defaults
// to the caller.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	sid, err := httpjson.QueryID(r, "sessionId")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Svc.ListForUser(ctx, sid, r.URL.Query().Get("userId"), auth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list)
}

// HandleAssign handles POST /assignments.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var in assignmentsvc.AssignInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Svc.Assign(ctx, auth.UserID(r), in)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.Created(w, map[string]any{"id": a.ID, "assignment": a})
}
