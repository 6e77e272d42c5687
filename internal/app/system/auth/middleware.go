// internal/app/system/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NGOFetcher loads a fresh NGO identity by id. The middleware calls it on
// every authenticated request so status changes (suspension, blacklisting,
// OTP activation) take effect immediately rather than at token expiry.
type NGOFetcher interface {
	FetchIdentity(ctx context.Context, id primitive.ObjectID) (*NGOIdentity, error)
}

// Middleware verifies bearer tokens and injects the NGO identity.
type Middleware struct {
	Tokens  *TokenManager
	Fetcher NGOFetcher
	Log     *zap.Logger
}

// NewMiddleware builds the auth middleware.
func NewMiddleware(tokens *TokenManager, fetcher NGOFetcher, logger *zap.Logger) *Middleware {
	return &Middleware{Tokens: tokens, Fetcher: fetcher, Log: logger}
}

// RequireNGO rejects requests without a valid access token and loads the
// NGO identity into context. Requests with a test identity already in
// context (injected by testutil) pass through.
func (m *Middleware) RequireNGO(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentNGO(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			respond.Unauthorized(w, "missing bearer token")
			return
		}

		claims, err := m.Tokens.Validate(raw, TokenTypeAccess)
		if err != nil {
			respond.Unauthorized(w, "invalid or expired token")
			return
		}

		id, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			respond.Unauthorized(w, "invalid token subject")
			return
		}

		identity, err := m.Fetcher.FetchIdentity(r.Context(), id)
		if err != nil {
			m.Log.Warn("token valid but account lookup failed",
				zap.String("ngo_id", claims.Subject),
				zap.Error(err))
			respond.Unauthorized(w, "account not found")
			return
		}
		if identity.Status == models.NGOStatusBlacklisted {
			respond.Forbidden(w, "account is blacklisted")
			return
		}

		next.ServeHTTP(w, withNGO(r, identity))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
