package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/operations"
	"github.com/hdmquan/logos-living-capital/internal/shared/testutil"
)

func TestProgressHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	broadcaster := operations.NewStatusBroadcaster(nil, logger)
	broadcaster.Progress(operations.ProgressUpdate{
		RunID:      "20240930_101500_0a1b2c3d",
		Step:       operations.StepExtract,
		Sheet:      "Labor",
		Current:    3,
		Total:      7,
		Percentage: 42.8,
		Message:    "extracting",
	})

	r := chi.NewRouter()
	r.Get("/api/v1/progress/{runID}", NewProgressHandler(broadcaster, logger, apierrors.NewErrorHandler(logger, false)).Get)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/progress/20240930_101500_0a1b2c3d", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, string(operations.RunStatusRunning), body["status"])
	assert.Equal(t, "Labor", body["sheet"])

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/progress/20240930_101500_ffffffff", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeRunNotFound, decode(t, rec)["type"])
}
