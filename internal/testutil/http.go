package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActiveNGO returns a verified NGO identity for handler tests.
func ActiveNGO() *auth.NGOIdentity {
	return &auth.NGOIdentity{
		ID:     primitive.NewObjectID(),
		Name:   "Test NGO",
		Email:  "ngo@test.com",
		Status: models.NGOStatusActive,
	}
}

// PendingNGO returns an identity still awaiting email verification.
func PendingNGO() *auth.NGOIdentity {
	return &auth.NGOIdentity{
		ID:     primitive.NewObjectID(),
		Name:   "Pending NGO",
		Email:  "pending@test.com",
		Status: models.NGOStatusPending,
	}
}

// WithNGO adds an NGO identity to the request context, bypassing the
// token middleware.
func WithNGO(r *http.Request, n *auth.NGOIdentity) *http.Request {
	return auth.WithTestNGO(r, n)
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call handlers directly, outside a
// router. Repeated calls accumulate parameters.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request with a JSON-encoded body.
func NewJSONRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRawRequest creates a request with a raw string body and content type.
func NewRawRequest(method, target, contentType, body string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

// NewAuthenticatedRequest creates a request with an NGO identity in context.
func NewAuthenticatedRequest(method, target string, n *auth.NGOIdentity) *http.Request {
	return WithNGO(httptest.NewRequest(method, target, nil), n)
}

// NewAuthenticatedJSONRequest combines NewJSONRequest and WithNGO.
func NewAuthenticatedJSONRequest(method, target string, n *auth.NGOIdentity, body any) *http.Request {
	return WithNGO(NewJSONRequest(method, target, body), n)
}

// ResponseRecorder wraps httptest.ResponseRecorder with envelope-aware
// helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// Envelope is the decoded response body shape shared by success and
// error responses.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// DecodeEnvelope parses the recorded body as a response envelope.
func (r *ResponseRecorder) DecodeEnvelope(t interface {
	Fatalf(string, ...any)
}) Envelope {
	var env Envelope
	if err := json.Unmarshal(r.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response envelope: %v (body: %s)", err, r.Body.String())
	}
	return env
}

// DecodeData parses the envelope's data field into out.
func (r *ResponseRecorder) DecodeData(t interface {
	Fatalf(string, ...any)
}, out any) {
	env := r.DecodeEnvelope(t)
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("failed to decode envelope data: %v (data: %s)", err, string(env.Data))
	}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertError checks for an error envelope with the expected status.
func (r *ResponseRecorder) AssertError(t interface {
	Errorf(string, ...any)
	Fatalf(string, ...any)
}, expected int) {
	r.AssertStatus(t, expected)
	env := r.DecodeEnvelope(t)
	if env.Success {
		t.Errorf("expected success=false in error envelope, got true")
	}
	if env.StatusCode != expected {
		t.Errorf("envelope statusCode: got %d, want %d", env.StatusCode, expected)
	}
}

// AssertMessageContains checks the envelope message for a substring.
func (r *ResponseRecorder) AssertMessageContains(t interface {
	Errorf(string, ...any)
	Fatalf(string, ...any)
}, substr string) {
	env := r.DecodeEnvelope(t)
	if !strings.Contains(env.Message, substr) {
		t.Errorf("message %q does not contain %q", env.Message, substr)
	}
}
