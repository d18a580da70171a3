// internal/app/features/responses/handler.go
package responses

import (
	"context"
	"net/http"

	responsesvc "github.com/dalemusser/newsletterhub/internal/app/services/responses"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"github.com/dalemusser/newsletterhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *responsesvc.Service
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Svc: responsesvc.New(db, logger), Log: logger}
}

// Routes mounts response routes under /responses.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleSubmit)
	return r
}

// ServeList handles GET /responses?sessionId=[&userId=]. With userId it
// lists that user's responses only.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	sid, err := httpjson.QueryID(r, "sessionId")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	uid := auth.UserID(r)
	var list any
	if target := r.URL.Query().Get("userId"); target != "" {
		list, err = h.Svc.ListForUserInSession(ctx, sid, target, uid)
	} else {
		list, err = h.Svc.ListForSession(ctx, sid, uid)
	}
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list)
}

// HandleSubmit handles POST /responses.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in responsesvc.SubmitInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	if err := requireIDs(in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	resp, err := h.Svc.Submit(ctx, auth.UserID(r), in)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.Created(w, resp)
}

func requireIDs(in responsesvc.SubmitInput) error {
	if in.NewsletterID.IsZero() {
		return apperr.Invalidf("newsletterId is required")
	}
	if in.SessionID.IsZero() {
		return apperr.Invalidf("sessionId is required")
	}
	return nil
}
