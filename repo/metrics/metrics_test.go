package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQuery(t *testing.T) {
	before := testutil.ToFloat64(queriesTotal.WithLabelValues(OutcomeError))
	ObserveQuery(OutcomeError, 20*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(queriesTotal.WithLabelValues(OutcomeError)))
}

func TestObserveStep(t *testing.T) {
	before := testutil.ToFloat64(stepErrors.WithLabelValues("metrics_test_step"))
	ObserveStep("metrics_test_step", time.Millisecond, nil)
	assert.Equal(t, before, testutil.ToFloat64(stepErrors.WithLabelValues("metrics_test_step")))

	ObserveStep("metrics_test_step", time.Millisecond, errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(stepErrors.WithLabelValues("metrics_test_step")))
}

func TestHandler(t *testing.T) {
	ObserveHTTP(http.MethodGet, "/health", http.StatusOK)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `indus_http_requests_total{method="GET",path="/health",status="200"}`)
}
