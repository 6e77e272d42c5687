package facilities_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/lifeflowhq/lifeflow/internal/app/features/facilities"
	facilitystore "github.com/lifeflowhq/lifeflow/internal/app/store/facilities"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auditlog"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/notify"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"github.com/lifeflowhq/lifeflow/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeFinder returns a fixed donor list so announcement tests run
// without a geo index.
type fakeFinder struct {
	donors []models.Donor
}

func (f *fakeFinder) FindNearbyCampSubscribers(_ context.Context, _, _, _ float64) ([]models.Donor, error) {
	return f.donors, nil
}

type bulkRecorder struct {
	mu    sync.Mutex
	calls int
	rcpts []string
}

func (b *bulkRecorder) Send(_ context.Context, _, _, _ string) error { return nil }

func (b *bulkRecorder) SendBulk(_ context.Context, recipients []string, _ string, _ map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.rcpts = append(b.rcpts, recipients...)
	return nil
}

func (b *bulkRecorder) snapshot() (int, []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls, append([]string(nil), b.rcpts...)
}

func newHandler(t *testing.T, db *mongo.Database, finder notify.DonorFinder, sink notify.Sender) (*facilities.Handler, *notify.Dispatcher) {
	t.Helper()
	logger := zap.NewNop()
	dispatch := notify.NewDispatcher(sink, logger)
	announcer := notify.NewCampAnnouncer(finder, dispatch, logger)
	h := facilities.NewHandler(facilitystore.New(db), announcer,
		auditlog.New(nil, logger, auditlog.Config{}), logger)
	return h, dispatch
}

func validationHandler() *facilities.Handler {
	logger := zap.NewNop()
	return facilities.NewHandler(nil, nil, auditlog.New(nil, logger, auditlog.Config{}), logger)
}

func suspendedIdentity() *auth.NGOIdentity {
	n := testutil.ActiveNGO()
	n.Status = models.NGOStatusSuspended
	return n
}

func TestCreate_RequiresVerifiedAccount(t *testing.T) {
	h := validationHandler()

	for _, n := range []*auth.NGOIdentity{testutil.PendingNGO(), suspendedIdentity()} {
		req := testutil.NewAuthenticatedJSONRequest("POST", "/facilities", n, map[string]any{
			"name": "Camp A", "type": "CAMP", "longitude": 77.59, "latitude": 12.97,
		})
		rec := testutil.NewRecorder()

		h.Create(rec, req)

		rec.AssertError(t, http.StatusForbidden)
	}
}

func TestCreate_RequiresCoordinates(t *testing.T) {
	h := validationHandler()
	req := testutil.NewAuthenticatedJSONRequest("POST", "/facilities", testutil.ActiveNGO(), map[string]any{
		"name": "Camp A", "type": "CAMP",
	})
	rec := testutil.NewRecorder()

	h.Create(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
}

func TestCreate_RejectsOutOfRangeCoordinates(t *testing.T) {
	h := validationHandler()
	req := testutil.NewAuthenticatedJSONRequest("POST", "/facilities", testutil.ActiveNGO(), map[string]any{
		"name": "Camp A", "type": "CAMP", "longitude": 200.0, "latitude": 12.97,
	})
	rec := testutil.NewRecorder()

	h.Create(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
}

func TestCreate_CampStartsPlannedAndNotifiesDonors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sink := &bulkRecorder{}
	finder := &fakeFinder{donors: []models.Donor{
		{Email: "d1@example.org"}, {Email: "d2@example.org"},
	}}
	h, dispatch := newHandler(t, db, finder, sink)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/facilities", testutil.ActiveNGO(), map[string]any{
		"name":      "City Blood Camp",
		"type":      "camp",
		"address":   "Central Park",
		"longitude": 77.59,
		"latitude":  12.97,
		"schedule":  map[string]any{"startDate": "2026-09-15"},
	})
	rec := testutil.NewRecorder()

	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	var created models.Facility
	rec.DecodeData(t, &created)
	if created.Type != models.FacilityTypeCamp {
		t.Errorf("type: got %q, want %q", created.Type, models.FacilityTypeCamp)
	}
	if created.Status != models.FacilityStatusPlanned {
		t.Errorf("status: got %q, want %q", created.Status, models.FacilityStatusPlanned)
	}

	dispatch.Wait()
	calls, rcpts := sink.snapshot()
	if calls != 1 {
		t.Fatalf("expected one bulk dispatch, got %d", calls)
	}
	if len(rcpts) != 2 {
		t.Errorf("expected 2 recipients, got %d", len(rcpts))
	}
}

func TestCreate_CenterStartsInactiveWithoutNotification(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sink := &bulkRecorder{}
	h, dispatch := newHandler(t, db, &fakeFinder{donors: []models.Donor{{Email: "d1@example.org"}}}, sink)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/facilities", testutil.ActiveNGO(), map[string]any{
		"name":      "Permanent Center",
		"type":      "CENTER",
		"longitude": 77.59,
		"latitude":  12.97,
	})
	rec := testutil.NewRecorder()

	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	var created models.Facility
	rec.DecodeData(t, &created)
	if created.Type != models.FacilityTypeCenter || created.Status != models.FacilityStatusInactive {
		t.Errorf("got type=%q status=%q, want CENTER/INACTIVE", created.Type, created.Status)
	}

	dispatch.Wait()
	calls, _ := sink.snapshot()
	if calls != 0 {
		t.Errorf("center creation should not notify donors, got %d dispatches", calls)
	}
}

func TestList_ReturnsOnlyOwnFacilities(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	mine := testutil.ActiveNGO()
	other := testutil.ActiveNGO()
	fx.CreateFacility(ctx, mine.ID, "Mine A", models.FacilityTypeCenter, models.FacilityStatusActive, 77.59, 12.97)
	fx.CreateFacility(ctx, mine.ID, "Mine B", models.FacilityTypeCamp, models.FacilityStatusPlanned, 77.60, 12.98)
	fx.CreateFacility(ctx, other.ID, "Theirs", models.FacilityTypeCenter, models.FacilityStatusActive, 77.61, 12.99)

	h, _ := newHandler(t, db, &fakeFinder{}, &bulkRecorder{})
	req := testutil.NewAuthenticatedRequest("GET", "/facilities", mine)
	rec := testutil.NewRecorder()

	h.List(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var list []models.Facility
	rec.DecodeData(t, &list)
	if len(list) != 2 {
		t.Fatalf("expected 2 facilities, got %d", len(list))
	}
	for _, f := range list {
		if f.NGOID != mine.ID {
			t.Errorf("listed facility %q owned by %s, not the caller", f.Name, f.NGOID.Hex())
		}
	}
}

func TestUpdate_ForeignFacilityNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	owner := testutil.ActiveNGO()
	attacker := testutil.ActiveNGO()
	f := fx.CreateFacility(ctx, owner.ID, "Target", models.FacilityTypeCenter, models.FacilityStatusActive, 77.59, 12.97)

	h, _ := newHandler(t, db, &fakeFinder{}, &bulkRecorder{})
	req := testutil.NewAuthenticatedJSONRequest("PATCH", "/facilities/"+f.ID.Hex(), attacker, map[string]string{
		"name": "Hijacked",
	})
	req = testutil.WithChiURLParam(req, "id", f.ID.Hex())
	rec := testutil.NewRecorder()

	h.Update(rec, req)

	rec.AssertError(t, http.StatusNotFound)

	// And nothing changed.
	stored, err := facilitystore.New(db).GetOwned(ctx, f.ID, owner.ID)
	if err != nil {
		t.Fatalf("reload facility: %v", err)
	}
	if stored.Name != "Target" {
		t.Errorf("facility mutated by foreign NGO: name=%q", stored.Name)
	}
}

func TestUpdate_EmptyBodyRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	owner := testutil.ActiveNGO()
	f := fx.CreateFacility(ctx, owner.ID, "Target", models.FacilityTypeCenter, models.FacilityStatusActive, 77.59, 12.97)

	store := facilitystore.New(db)
	before, err := store.GetOwned(ctx, f.ID, owner.ID)
	if err != nil {
		t.Fatalf("load facility: %v", err)
	}

	h, _ := newHandler(t, db, &fakeFinder{}, &bulkRecorder{})
	req := testutil.NewAuthenticatedJSONRequest("PATCH", "/facilities/"+f.ID.Hex(), owner, map[string]string{})
	req = testutil.WithChiURLParam(req, "id", f.ID.Hex())
	rec := testutil.NewRecorder()

	h.Update(rec, req)

	rec.AssertError(t, http.StatusBadRequest)

	after, err := store.GetOwned(ctx, f.ID, owner.ID)
	if err != nil {
		t.Fatalf("reload facility: %v", err)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("empty update bumped updated_at: %s -> %s", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestAction_UnknownActionBadRequest(t *testing.T) {
	h := validationHandler()
	id := testutil.ActiveNGO().ID.Hex()
	req := testutil.NewAuthenticatedRequest("POST", "/facilities/"+id+"/archive", testutil.ActiveNGO())
	req = testutil.WithChiURLParam(req, "id", id)
	req = testutil.WithChiURLParam(req, "action", "archive")
	rec := testutil.NewRecorder()

	h.Action(rec, req)

	rec.AssertError(t, http.StatusBadRequest)
}

func TestAction_SuspendAndActivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	owner := testutil.ActiveNGO()
	f := fx.CreateFacility(ctx, owner.ID, "Center", models.FacilityTypeCenter, models.FacilityStatusActive, 77.59, 12.97)
	h, _ := newHandler(t, db, &fakeFinder{}, &bulkRecorder{})
	store := facilitystore.New(db)

	for _, tc := range []struct {
		action string
		want   string
	}{
		{"suspend", models.FacilityStatusSuspended},
		{"activate", models.FacilityStatusActive},
	} {
		req := testutil.NewAuthenticatedRequest("POST", "/facilities/"+f.ID.Hex()+"/"+tc.action, owner)
		req = testutil.WithChiURLParam(req, "id", f.ID.Hex())
		req = testutil.WithChiURLParam(req, "action", tc.action)
		rec := testutil.NewRecorder()

		h.Action(rec, req)

		rec.AssertStatus(t, http.StatusOK)
		stored, err := store.GetOwned(ctx, f.ID, owner.ID)
		if err != nil {
			t.Fatalf("reload facility: %v", err)
		}
		if stored.Status != tc.want {
			t.Errorf("%s: status got %q, want %q", tc.action, stored.Status, tc.want)
		}
	}
}

func TestDelete_RemovesOwnedFacility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	owner := testutil.ActiveNGO()
	f := fx.CreateFacility(ctx, owner.ID, "Doomed", models.FacilityTypeCenter, models.FacilityStatusInactive, 77.59, 12.97)
	h, _ := newHandler(t, db, &fakeFinder{}, &bulkRecorder{})

	req := testutil.NewAuthenticatedRequest("DELETE", "/facilities/"+f.ID.Hex(), owner)
	req = testutil.WithChiURLParam(req, "id", f.ID.Hex())
	rec := testutil.NewRecorder()

	h.Delete(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if _, err := facilitystore.New(db).GetOwned(ctx, f.ID, owner.ID); err != facilitystore.ErrNotFound {
		t.Errorf("expected facility gone, got err=%v", err)
	}
}
