// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/newsletterhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin surface under /admin. Every route requires an
// active admin profile.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireAdmin(h.Svc, h.Log))

	r.Get("/test", h.ServeTest)
	r.Get("/stats", h.ServeStats)

	r.Get("/users", h.ServeUsers)
	r.Put("/users", h.HandleUpdateUser)

	r.Get("/newsletters", h.ServeNewsletters)
	r.Put("/newsletters", h.HandleUpdateNewsletter)

	r.Get("/questions", h.ServeQuestions)
	r.Put("/questions", h.HandleUpdateQuestion)

	r.Get("/sessions", h.ServeSessions)
	r.Put("/sessions", h.HandleUpdateSession)
	r.Delete("/sessions", h.HandleDeleteSession)

	r.Get("/responses", h.ServeResponses)
	r.Delete("/responses", h.HandleDeleteResponse)
	return r
}
