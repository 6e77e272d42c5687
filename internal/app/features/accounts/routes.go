// internal/app/features/accounts/routes.go
package accounts

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/ratelimit"
)

// Per-IP limits for the public endpoints. Login gets a tighter budget
// because it is the brute-force target.
const (
	loginLimit    = 10
	registerLimit = 5
	limitWindow   = time.Minute
)

// Routes returns the subrouter for account endpoints; mounted under /auth.
// Register, login, and refresh are public; the rest require a valid
// access token.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	loginLimiter := ratelimit.New(loginLimit, limitWindow)
	registerLimiter := ratelimit.New(registerLimit, limitWindow)

	r.With(ratelimit.Middleware(registerLimiter, "too many registration attempts, try again later")).
		Post("/register", h.Register)
	r.With(ratelimit.Middleware(loginLimiter, "too many login attempts, try again later")).
		Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireNGO)
		pr.Post("/logout", h.Logout)
		pr.Post("/change-password", h.ChangePassword)
		pr.Post("/resend-otp", h.ResendOTP)
		pr.Post("/verify-otp", h.VerifyOTP)
	})

	return r
}
