package newsletters

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/newsletterhub/internal/app/system/apperr"
	"github.com/dalemusser/newsletterhub/internal/app/system/auth"
	"github.com/dalemusser/newsletterhub/internal/app/system/httpjson"
	"github.com/dalemusser/newsletterhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

type memberInput struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// ServeMembers handles GET /newsletters/{id}/members.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Svc.ListMembers(ctx, id, auth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, list)
}

// HandleAddMember handles POST /newsletters/{id}/members.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var in memberInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	if strings.TrimSpace(in.UserID) == "" {
		httpjson.Error(w, h.Log, r, apperr.Invalidf("userId is required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Svc.AddMember(ctx, id, strings.TrimSpace(in.UserID), auth.UserID(r), in.Role)
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.Created(w, map[string]any{"success": true, "membership": m})
}

// HandleRemoveMember handles DELETE /newsletters/{id}/members/{userID}.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.RemoveMember(ctx, id, chi.URLParam(r, "userID"), auth.UserID(r)); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]bool{"success": true})
}

// HandleUpdateRole handles PATCH /newsletters/{id}/members/{userID}.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLID(r, "id")
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	var in memberInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Svc.UpdateMemberRole(ctx, id, chi.URLParam(r, "userID"), in.Role, auth.UserID(r))
	if err != nil {
		httpjson.Error(w, h.Log, r, err)
		return
	}
	httpjson.OK(w, map[string]any{"success": true, "membership": m})
}
