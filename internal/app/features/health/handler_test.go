package health_test

import (
	"net/http"
	"testing"

	"github.com/lifeflowhq/lifeflow/internal/app/features/health"
	"github.com/lifeflowhq/lifeflow/internal/testutil"
	"go.uber.org/zap"
)

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), zap.NewNop())

	req := testutil.NewRequest("GET", "/health")
	rec := testutil.NewRecorder()

	handler.Serve(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	env := rec.DecodeEnvelope(t)
	if !env.Success {
		t.Error("expected success=true")
	}

	var data struct {
		Database string `json:"database"`
	}
	rec.DecodeData(t, &data)
	if data.Database != "connected" {
		t.Errorf("database: got %q, want %q", data.Database, "connected")
	}
}
