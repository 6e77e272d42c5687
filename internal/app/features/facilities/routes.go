// internal/app/features/facilities/routes.go
package facilities

import (
	"github.com/go-chi/chi/v5"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
)

// Routes returns the subrouter for facility endpoints; mounted under
// /facilities. All routes require authentication.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireNGO)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/{action}", h.Action)

	return r
}
