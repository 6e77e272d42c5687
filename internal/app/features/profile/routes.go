// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
)

// Routes returns the subrouter for profile endpoints; mounted under
// /profile. All routes require authentication.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireNGO)

	r.Get("/", h.Get)
	r.Patch("/", h.Update)
	r.Post("/documents", h.UploadDocument)

	return r
}
