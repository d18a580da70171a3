// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"encoding/json"
	"net/http"

	adminsvc "github.com/dalemusser/newsletterhub/internal/app/services/admin"
	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/authz"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"github.com/dalemusser/newsletterhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *adminsvc.Service
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Svc: adminsvc.New(db, logger), Log: logger}
}

// updateRequest is the {"<kind>Id": ..., "updates": {...}} body shared by
// the admin PUT endpoints.
type updateRequest struct {
	ID      string
	Updates json.RawMessage
}

// decodeUpdate reads an update body whose id lives under idField.
func decodeUpdate(r *http.Request, idField, label string) (updateRequest, error) {
	var raw map[string]json.RawMessage
	if err := httpjson.Decode(r, &raw); err != nil {
		return updateRequest{}, err
	}
	var req updateRequest
	if v, ok := raw[idField]; ok {
		_ = json.Unmarshal(v, &req.ID)
	}
	req.Updates = raw["updates"]
	if req.ID == "" || len(req.Updates) == 0 || string(req.Updates) == "null" {
		return req, apperr.Invalidf("%s ID and updates are required", label)
	}
	return req, nil
}

func decodePatch(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Invalidf("invalid updates")
	}
	return nil
}

func list(name string, rows any, n int) map[string]any {
	return map[string]any{name: rows, "total": n}
}

// ServeTest handles GET /admin/test.
func (h *Handler) ServeTest(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.CurrentUser(r)
	httpjson.OK(w, map[string]any{
		"message": "Admin authentication successful",
		"user": map[string]any{
			"uid":     id.UID,
			"email":   id.Email,
			"isAdmin": authz.IsAdmin(r),
		},
	})
}

// ServeStats handles GET /admin/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	httpjson.OK(w, map[string]any{"stats": h.Svc.Stats(ctx)})
}

// ServeUsers handles GET /admin/users.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := h.Svc.ListUsers(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list("users", rows, len(rows)))
}

// HandleUpdateUser handles PUT /admin/users.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUpdate(r, "userId", "User")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var patch adminsvc.UserPatch
	if err := decodePatch(req.Updates, &patch); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Svc.UpdateUser(ctx, auth.UserID(r), req.ID, patch)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]any{"success": true, "updated": u})
}

// ServeNewsletters handles GET /admin/newsletters.
func (h *Handler) ServeNewsletters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := h.Svc.ListNewsletters(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list("newsletters", rows, len(rows)))
}

// HandleUpdateNewsletter handles PUT /admin/newsletters.
func (h *Handler) HandleUpdateNewsletter(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUpdate(r, "newsletterId", "Newsletter")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	id, err := httpjson.ParseID(req.ID, "newsletterId")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var patch adminsvc.NewsletterPatch
	if err := decodePatch(req.Updates, &patch); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Svc.UpdateNewsletter(ctx, auth.UserID(r), id, patch)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]any{"success": true, "updated": n})
}

// ServeQuestions handles GET /admin/questions.
func (h *Handler) ServeQuestions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := h.Svc.ListQuestions(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list("questions", rows, len(rows)))
}

// HandleUpdateQuestion handles PUT /admin/questions.
func (h *Handler) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUpdate(r, "questionId", "Question")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	id, err := httpjson.ParseID(req.ID, "questionId")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var patch adminsvc.QuestionPatch
	if err := decodePatch(req.Updates, &patch); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q, err := h.Svc.UpdateQuestion(ctx, auth.UserID(r), id, patch)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]any{"success": true, "updated": q})
}

// ServeSessions handles GET /admin/sessions.
func (h *Handler) ServeSessions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := h.Svc.ListSessions(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list("sessions", rows, len(rows)))
}

// HandleUpdateSession handles PUT /admin/sessions.
func (h *Handler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUpdate(r, "sessionId", "Session")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	id, err := httpjson.ParseID(req.ID, "sessionId")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var patch adminsvc.SessionPatch
	if err := decodePatch(req.Updates, &patch); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	s, err := h.Svc.UpdateSession(ctx, auth.UserID(r), id, patch)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]any{"success": true, "updated": s})
}

type deleteSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// HandleDeleteSession handles DELETE /admin/sessions. Responses recorded
// against the session are left in place.
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	var in deleteSessionRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	if in.SessionID == "" {
		httpjson.Error(w, h.Log, r, apperr.Invalidf("Session ID is required"))
		return
	}
	id, err := httpjson.ParseID(in.SessionID, "sessionId")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.DeleteSession(ctx, auth.UserID(r), id); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]bool{"success": true})
}

// ServeResponses handles GET /admin/responses.
func (h *Handler) ServeResponses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := h.Svc.ListResponses(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list("responses", rows, len(rows)))
}

type deleteResponseRequest struct {
	ResponseID string `json:"responseId"`
}

// HandleDeleteResponse handles DELETE /admin/responses.
func (h *Handler) HandleDeleteResponse(w http.ResponseWriter, r *http.Request) {
	var in deleteResponseRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	if in.ResponseID == "" {
		httpjson.Error(w, h.Log, r, apperr.Invalidf("Response ID is required"))
		return
	}
	id, err := httpjson.ParseID(in.ResponseID, "responseId")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.DeleteResponse(ctx, auth.UserID(r), id); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]bool{"success": true})
}
