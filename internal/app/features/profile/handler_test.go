package profile_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/lifeflowhq/lifeflow/internal/app/features/profile"
	ngostore "github.com/lifeflowhq/lifeflow/internal/app/store/ngos"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auditlog"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"github.com/lifeflowhq/lifeflow/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, db *mongo.Database) *profile.Handler {
	t.Helper()
	logger := zap.NewNop()
	return profile.NewHandler(ngostore.New(db), nil,
		auditlog.New(nil, logger, auditlog.Config{Account: "log"}), logger)
}

func identityFor(ngo models.NGO) *auth.NGOIdentity {
	return &auth.NGOIdentity{ID: ngo.ID, Name: ngo.Name, Email: ngo.Email, Status: ngo.Status}
}

func TestGet_RequiresAuth(t *testing.T) {
	h := profile.NewHandler(nil, nil, auditlog.New(nil, zap.NewNop(), auditlog.Config{}), zap.NewNop())
	req := testutil.NewRequest("GET", "/profile")
	rec := testutil.NewRecorder()

	h.Get(rec, req)

	rec.AssertError(t, http.StatusUnauthorized)
}

func TestGet_ReturnsRedactedAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "get@example.org", "correct-password", models.NGOStatusActive)

	h := newHandler(t, db)
	req := testutil.NewAuthenticatedRequest("GET", "/profile", identityFor(ngo))
	rec := testutil.NewRecorder()

	h.Get(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	// Secrets must never appear in the response body.
	body := rec.Body.String()
	for _, forbidden := range []string{"password_hash", "refresh_token"} {
		if strings.Contains(body, forbidden) {
			t.Errorf("response leaks %q", forbidden)
		}
	}

	var data models.RedactedNGO
	rec.DecodeData(t, &data)
	if data.Email != ngo.Email {
		t.Errorf("email: got %q, want %q", data.Email, ngo.Email)
	}
}

func TestUpdate_RejectsEmptyPatch(t *testing.T) {
	h := profile.NewHandler(nil, nil, auditlog.New(nil, zap.NewNop(), auditlog.Config{}), zap.NewNop())
	req := testutil.NewAuthenticatedJSONRequest("PATCH", "/profile", testutil.ActiveNGO(), map[string]string{})
	rec := testutil.NewRecorder()

	h.Update(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
}

func TestUpdate_MergesSuppliedFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "patch@example.org", "correct-password", models.NGOStatusActive)

	h := newHandler(t, db)
	req := testutil.NewAuthenticatedJSONRequest("PATCH", "/profile", identityFor(ngo), map[string]any{
		"address": "42 New Street",
		"contactPerson": map[string]string{
			"phone": "+1 (555) 020-2",
		},
	})
	rec := testutil.NewRecorder()

	h.Update(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	stored, err := ngostore.New(db).GetByID(ctx, ngo.ID)
	if err != nil {
		t.Fatalf("reload ngo: %v", err)
	}
	if stored.Address != "42 New Street" {
		t.Errorf("address: got %q", stored.Address)
	}
	if stored.ContactPerson.Phone != "+15550202" {
		t.Errorf("contact phone not normalized: got %q", stored.ContactPerson.Phone)
	}
	// Untouched fields survive the merge.
	if stored.ContactPerson.Name != ngo.ContactPerson.Name {
		t.Errorf("contact name changed unexpectedly: got %q", stored.ContactPerson.Name)
	}
	if stored.Name != ngo.Name {
		t.Errorf("name changed unexpectedly: got %q", stored.Name)
	}
}
