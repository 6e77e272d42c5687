package accounts_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/lifeflowhq/lifeflow/internal/app/features/accounts"
	ngostore "github.com/lifeflowhq/lifeflow/internal/app/store/ngos"
	"github.com/lifeflowhq/lifeflow/internal/app/store/verification"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auditlog"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/notify"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"github.com/lifeflowhq/lifeflow/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// newHandler builds an accounts handler over a real test database. The
// dispatcher delivers into sink so tests can observe outbound email
// without SMTP.
func newHandler(t *testing.T, db *mongo.Database, sink *recordingSender) *accounts.Handler {
	t.Helper()
	logger := zap.NewNop()
	return accounts.NewHandler(
		ngostore.New(db),
		verification.New(db, 0),
		auth.NewTokenManager("test-secret", 0, 0),
		nil, // no file storage needed for these tests
		notify.NewDispatcher(sink, logger),
		auditlog.New(nil, logger, auditlog.Config{Auth: "log", Account: "log"}),
		logger,
		"LifeFlow",
	)
}

// validationHandler is enough for tests that must fail before any store
// or token access.
func validationHandler() *accounts.Handler {
	logger := zap.NewNop()
	return accounts.NewHandler(nil, nil, nil, nil, nil,
		auditlog.New(nil, logger, auditlog.Config{}), logger, "LifeFlow")
}

// recordingSender captures outbound mail. Dispatcher deliveries run on
// their own goroutines, so access is mutex-guarded; tests read after
// Dispatch.Wait().
type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	Recipient string
	Subject   string
	Body      string
}

func (s *recordingSender) Send(_ context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMail{recipient, subject, body})
	return nil
}

func (s *recordingSender) SendBulk(_ context.Context, recipients []string, templateKey string, _ map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recipients {
		s.sent = append(s.sent, sentMail{Recipient: r, Subject: templateKey})
	}
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingSender) first() sentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[0]
}

func TestRegister_RejectsInvalidJSON(t *testing.T) {
	h := validationHandler()
	req := testutil.NewRawRequest("POST", "/auth/register", "application/json", "{not json")
	rec := testutil.NewRecorder()

	h.Register(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	h := validationHandler()
	req := testutil.NewJSONRequest("POST", "/auth/register", map[string]string{
		"name":               "Helping Hands",
		"email":              "hh@example.org",
		"password":           "short",
		"contactName":        "A Person",
		"contactPhone":       "+15550100",
		"registrationNumber": "reg-001",
	})
	rec := testutil.NewRecorder()

	h.Register(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
	rec.AssertMessageContains(t, "password")
}

func TestRegister_RejectsMissingContactPerson(t *testing.T) {
	h := validationHandler()
	req := testutil.NewJSONRequest("POST", "/auth/register", map[string]string{
		"name":               "Helping Hands",
		"email":              "hh@example.org",
		"password":           "longenough",
		"registrationNumber": "reg-001",
	})
	rec := testutil.NewRecorder()

	h.Register(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
}

func TestRegister_CreatesPendingAccountAndSendsCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sink := &recordingSender{}
	h := newHandler(t, db, sink)

	req := testutil.NewJSONRequest("POST", "/auth/register", map[string]string{
		"name":               "Helping Hands",
		"email":              "HH@Example.org",
		"password":           "longenough",
		"contactName":        "A Person",
		"contactPhone":       "+1 (555) 010-0",
		"registrationNumber": "reg-001",
	})
	rec := testutil.NewRecorder()

	h.Register(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	var data struct {
		NGO models.RedactedNGO `json:"ngo"`
	}
	rec.DecodeData(t, &data)

	if data.NGO.Status != models.NGOStatusPending {
		t.Errorf("status: got %q, want %q", data.NGO.Status, models.NGOStatusPending)
	}
	if data.NGO.Email != "hh@example.org" {
		t.Errorf("email not normalized: got %q", data.NGO.Email)
	}
	if data.NGO.RegistrationNumber != "REG-001" {
		t.Errorf("registration number not normalized: got %q", data.NGO.RegistrationNumber)
	}

	h.Dispatch.Wait()
	if sink.count() != 1 {
		t.Fatalf("expected 1 verification email, got %d", sink.count())
	}
	if sink.first().Recipient != "hh@example.org" {
		t.Errorf("verification email recipient: got %q", sink.first().Recipient)
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	fx.CreateNGO(ctx, "First", "dup@example.org", "longenough", models.NGOStatusPending)

	h := newHandler(t, db, &recordingSender{})
	req := testutil.NewJSONRequest("POST", "/auth/register", map[string]string{
		"name":               "Second",
		"email":              "dup@example.org",
		"password":           "longenough",
		"contactName":        "A Person",
		"contactPhone":       "+15550100",
		"registrationNumber": "reg-002",
	})
	rec := testutil.NewRecorder()

	h.Register(rec, req)

	rec.AssertError(t, http.StatusConflict)
}

func TestLogin_WrongPasswordUnauthorized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	fx.CreateNGO(ctx, "Helping Hands", "login@example.org", "correct-password", models.NGOStatusActive)

	h := newHandler(t, db, &recordingSender{})
	req := testutil.NewJSONRequest("POST", "/auth/login", map[string]string{
		"email":    "login@example.org",
		"password": "wrong-password",
	})
	rec := testutil.NewRecorder()

	h.Login(rec, req)

	rec.AssertError(t, http.StatusUnauthorized)
}

func TestLogin_UnknownEmailSameAsWrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, &recordingSender{})

	req := testutil.NewJSONRequest("POST", "/auth/login", map[string]string{
		"email":    "nobody@example.org",
		"password": "whatever-password",
	})
	rec := testutil.NewRecorder()

	h.Login(rec, req)

	rec.AssertError(t, http.StatusUnauthorized)
}

func TestLogin_IssuesTokenPairAndStoresRefresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "pair@example.org", "correct-password", models.NGOStatusActive)

	h := newHandler(t, db, &recordingSender{})
	req := testutil.NewJSONRequest("POST", "/auth/login", map[string]string{
		"email":    "pair@example.org",
		"password": "correct-password",
	})
	rec := testutil.NewRecorder()

	h.Login(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	rec.DecodeData(t, &data)
	if data.AccessToken == "" || data.RefreshToken == "" {
		t.Fatal("expected both tokens in response")
	}

	claims, err := h.Tokens.Validate(data.AccessToken, auth.TokenTypeAccess)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.Subject != ngo.ID.Hex() {
		t.Errorf("token subject: got %q, want %q", claims.Subject, ngo.ID.Hex())
	}

	stored, err := ngostore.New(db).GetByID(ctx, ngo.ID)
	if err != nil {
		t.Fatalf("reload ngo: %v", err)
	}
	if stored.RefreshToken != data.RefreshToken {
		t.Error("refresh token was not persisted")
	}
	if stored.LastLoginAt == nil || time.Since(*stored.LastLoginAt) > time.Minute {
		t.Error("last login time was not stamped")
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, &recordingSender{})

	access, _, err := h.Tokens.GeneratePair(testutil.ActiveNGO().ID.Hex(), "x@example.org")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	req := testutil.NewJSONRequest("POST", "/auth/refresh", map[string]string{"refreshToken": access})
	rec := testutil.NewRecorder()

	h.Refresh(rec, req)

	rec.AssertError(t, http.StatusUnauthorized)
}

func TestRefresh_RejectsRevokedToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "revoked@example.org", "correct-password", models.NGOStatusActive)

	h := newHandler(t, db, &recordingSender{})
	_, refresh, err := h.Tokens.GeneratePair(ngo.ID.Hex(), ngo.Email)
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	// Never stored on the account, so it counts as revoked.
	req := testutil.NewJSONRequest("POST", "/auth/refresh", map[string]string{"refreshToken": refresh})
	rec := testutil.NewRecorder()

	h.Refresh(rec, req)

	rec.AssertError(t, http.StatusUnauthorized)
}

func TestRefresh_RotatesStoredToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "rotate@example.org", "correct-password", models.NGOStatusActive)

	h := newHandler(t, db, &recordingSender{})
	_, refresh, err := h.Tokens.GeneratePair(ngo.ID.Hex(), ngo.Email)
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	if err := ngostore.New(db).SetRefreshToken(ctx, ngo.ID, refresh); err != nil {
		t.Fatalf("store refresh token: %v", err)
	}

	req := testutil.NewJSONRequest("POST", "/auth/refresh", map[string]string{"refreshToken": refresh})
	rec := testutil.NewRecorder()

	h.Refresh(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var data struct {
		RefreshToken string `json:"refreshToken"`
	}
	rec.DecodeData(t, &data)

	stored, err := ngostore.New(db).GetByID(ctx, ngo.ID)
	if err != nil {
		t.Fatalf("reload ngo: %v", err)
	}
	if stored.RefreshToken != data.RefreshToken {
		t.Error("rotated refresh token was not persisted")
	}
}

func TestLogout_RequiresAuth(t *testing.T) {
	h := validationHandler()
	req := testutil.NewRequest("POST", "/auth/logout")
	rec := testutil.NewRecorder()

	h.Logout(rec, req)

	rec.AssertError(t, http.StatusUnauthorized)
}

func TestLogout_ClearsRefreshToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "logout@example.org", "correct-password", models.NGOStatusActive)

	store := ngostore.New(db)
	if err := store.SetRefreshToken(ctx, ngo.ID, "some-refresh-token"); err != nil {
		t.Fatalf("store refresh token: %v", err)
	}

	h := newHandler(t, db, &recordingSender{})
	req := testutil.NewAuthenticatedRequest("POST", "/auth/logout", &auth.NGOIdentity{
		ID: ngo.ID, Name: ngo.Name, Email: ngo.Email, Status: ngo.Status,
	})
	rec := testutil.NewRecorder()

	h.Logout(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	stored, err := store.GetByID(ctx, ngo.ID)
	if err != nil {
		t.Fatalf("reload ngo: %v", err)
	}
	if stored.RefreshToken != "" {
		t.Error("refresh token should be cleared on logout")
	}
}

func TestChangePassword_RejectsShortNewPassword(t *testing.T) {
	h := validationHandler()
	req := testutil.NewAuthenticatedJSONRequest("POST", "/auth/change-password", testutil.ActiveNGO(), map[string]string{
		"oldPassword": "old-password",
		"newPassword": "short",
	})
	rec := testutil.NewRecorder()

	h.ChangePassword(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
}

func TestChangePassword_VerifiesOldPasswordFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "chpw@example.org", "correct-password", models.NGOStatusActive)

	h := newHandler(t, db, &recordingSender{})
	req := testutil.NewAuthenticatedJSONRequest("POST", "/auth/change-password", &auth.NGOIdentity{
		ID: ngo.ID, Email: ngo.Email, Status: ngo.Status,
	}, map[string]string{
		"oldPassword": "wrong-password",
		"newPassword": "new-long-password",
	})
	rec := testutil.NewRecorder()

	h.ChangePassword(rec, req)

	rec.AssertError(t, http.StatusUnauthorized)

	// The stored hash must be unchanged.
	stored, err := ngostore.New(db).GetByID(ctx, ngo.ID)
	if err != nil {
		t.Fatalf("reload ngo: %v", err)
	}
	if !auth.CheckPassword(stored.PasswordHash, "correct-password") {
		t.Error("password hash changed despite failed old-password check")
	}
}

func TestChangePassword_UpdatesHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "chpw2@example.org", "correct-password", models.NGOStatusActive)

	h := newHandler(t, db, &recordingSender{})
	req := testutil.NewAuthenticatedJSONRequest("POST", "/auth/change-password", &auth.NGOIdentity{
		ID: ngo.ID, Email: ngo.Email, Status: ngo.Status,
	}, map[string]string{
		"oldPassword": "correct-password",
		"newPassword": "new-long-password",
	})
	rec := testutil.NewRecorder()

	h.ChangePassword(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	stored, err := ngostore.New(db).GetByID(ctx, ngo.ID)
	if err != nil {
		t.Fatalf("reload ngo: %v", err)
	}
	if !auth.CheckPassword(stored.PasswordHash, "new-long-password") {
		t.Error("new password does not verify against stored hash")
	}
}

func TestResendOTP_RejectsVerifiedAccount(t *testing.T) {
	h := validationHandler()
	req := testutil.NewAuthenticatedRequest("POST", "/auth/resend-otp", testutil.ActiveNGO())
	rec := testutil.NewRecorder()

	h.ResendOTP(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
}

func TestResendOTP_SendsCodeAndRateLimits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "otp@example.org", "correct-password", models.NGOStatusPending)

	sink := &recordingSender{}
	h := newHandler(t, db, sink)
	identity := &auth.NGOIdentity{ID: ngo.ID, Email: ngo.Email, Status: ngo.Status}

	// Initial code issued at registration; resends count from there.
	if _, err := h.Verifications.Create(ctx, ngo.ID, ngo.Email, false); err != nil {
		t.Fatalf("create initial verification: %v", err)
	}

	for i := 0; i < verification.MaxResends; i++ {
		rec := testutil.NewRecorder()
		h.ResendOTP(rec, testutil.NewAuthenticatedRequest("POST", "/auth/resend-otp", identity))
		rec.AssertStatus(t, http.StatusOK)
	}

	rec := testutil.NewRecorder()
	h.ResendOTP(rec, testutil.NewAuthenticatedRequest("POST", "/auth/resend-otp", identity))
	rec.AssertError(t, http.StatusTooManyRequests)

	h.Dispatch.Wait()
	if sink.count() != verification.MaxResends {
		t.Errorf("expected %d emails, got %d", verification.MaxResends, sink.count())
	}
}

func TestVerifyOTP_ActivatesAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "verify@example.org", "correct-password", models.NGOStatusPending)

	h := newHandler(t, db, &recordingSender{})
	code, err := h.Verifications.Create(ctx, ngo.ID, ngo.Email, false)
	if err != nil {
		t.Fatalf("create verification: %v", err)
	}

	identity := &auth.NGOIdentity{ID: ngo.ID, Email: ngo.Email, Status: ngo.Status}
	req := testutil.NewAuthenticatedJSONRequest("POST", "/auth/verify-otp", identity, map[string]string{"code": code})
	rec := testutil.NewRecorder()

	h.VerifyOTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	stored, err := ngostore.New(db).GetByID(ctx, ngo.ID)
	if err != nil {
		t.Fatalf("reload ngo: %v", err)
	}
	if stored.Status != models.NGOStatusActive {
		t.Errorf("status after verification: got %q, want %q", stored.Status, models.NGOStatusActive)
	}
}

func TestVerifyOTP_WrongCodeBadRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	ngo := fx.CreateNGO(ctx, "Helping Hands", "badcode@example.org", "correct-password", models.NGOStatusPending)

	h := newHandler(t, db, &recordingSender{})
	if _, err := h.Verifications.Create(ctx, ngo.ID, ngo.Email, false); err != nil {
		t.Fatalf("create verification: %v", err)
	}

	identity := &auth.NGOIdentity{ID: ngo.ID, Email: ngo.Email, Status: ngo.Status}
	req := testutil.NewAuthenticatedJSONRequest("POST", "/auth/verify-otp", identity, map[string]string{"code": "000000"})
	rec := testutil.NewRecorder()

	h.VerifyOTP(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
}
