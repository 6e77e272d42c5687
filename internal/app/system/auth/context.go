// internal/app/system/auth/context.go
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NGOIdentity is the authenticated NGO injected into the request context
// by the middleware. Status is refetched per request (see NGOFetcher) so
// verification changes take effect without re-login.
type NGOIdentity struct {
	ID     primitive.ObjectID
	Name   string
	Email  string
	Status string
}

type ctxKey string

const currentNGOKey ctxKey = "currentNGO"

// CurrentNGO returns the authenticated NGO from the request context.
func CurrentNGO(r *http.Request) (*NGOIdentity, bool) {
	n, ok := r.Context().Value(currentNGOKey).(*NGOIdentity)
	return n, ok
}

func withNGO(r *http.Request, n *NGOIdentity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentNGOKey, n))
}

// WithTestNGO injects an NGO identity directly, bypassing token
// verification. For handler tests only.
func WithTestNGO(r *http.Request, n *NGOIdentity) *http.Request {
	return withNGO(r, n)
}
