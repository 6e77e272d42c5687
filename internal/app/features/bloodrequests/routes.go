// internal/app/features/bloodrequests/routes.go
package bloodrequests

import (
	"github.com/go-chi/chi/v5"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
)

// Routes returns the subrouter for blood-request endpoints; mounted under
// /blood-requests. All routes require authentication.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireNGO)

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/respond", h.Respond)

	return r
}
