// internal/app/features/generate/handler.go
package generate

import (
	"context"
	"net/http"

	"github.com/dalemusser/newsletterhub/internal/app/services/generation"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"github.com/dalemusser/newsletterhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *generation.Service
	Log *zap.Logger
}

func NewHandler(svc *generation.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// Routes mounts POST /generate-newsletter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleGenerate)
	return r
}

type generateInput struct {
	NewsletterID string `json:"newsletterId"`
	SessionID    string `json:"sessionId"`
}

// HandleGenerate composes and stores the session's newsletter. A failed
// generation still answers 200 with the apology text and generated=false.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var in generateInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var nid, sid primitive.ObjectID
	var err error
	if nid, err = httpjson.ParseID(in.NewsletterID, "newsletterId"); err == nil {
		sid, err = httpjson.ParseID(in.SessionID, "sessionId")
	}
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Generate())
	defer cancel()

	res, err := h.Svc.GenerateForSession(ctx, nid, sid, auth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, res)
}
