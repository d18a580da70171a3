// internal/app/features/newsletters/routes.go
package newsletters

import "github.com/go-chi/chi/v5"

// Routes mounts newsletter routes. Typically: r.Mount("/newsletters", newsletters.Routes(h)).
// Authentication is applied by the caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeGet)
		r.Put("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)

		r.Get("/members", h.ServeMembers)
		r.Post("/members", h.HandleAddMember)
		r.Delete("/members/{userID}", h.HandleRemoveMember)
		r.Patch("/members/{userID}", h.HandleUpdateRole)
	})

	return r
}
