package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetricsWhenDisabled(t *testing.T) {
	m := New(false, nil)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// no-op methods must not panic
	m.IncRequestsTotal("/x", 200)
	m.ObserveRequestDuration("/x", time.Millisecond)
	m.IncDetections(true)
	m.ObserveRiskScore(50)
	m.IncTracked()
	m.IncRemindersSent(PathDirect)
	m.IncReminderFailures(PathSweep)
	m.IncTrialConversions()
	m.IncSweeps()
	m.SetCommitments("trial", 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func scrape(t *testing.T, m Provider) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestPrometheusCounts(t *testing.T) {
	m := New(true, prometheus.NewRegistry())

	m.IncRemindersSent(PathDirect)
	m.IncRemindersSent(PathDirect)
	m.IncRemindersSent(PathSweep)
	m.IncDetections(true)
	m.IncTrialConversions()
	m.SetCommitments("active", 4)
	m.IncRequestsTotal("/api/track", 201)

	body := scrape(t, m)
	assert.Contains(t, body, `subguard_reminders_sent_total{path="direct"} 2`)
	assert.Contains(t, body, `subguard_reminders_sent_total{path="sweep"} 1`)
	assert.Contains(t, body, `subguard_detections_total{trial="true"} 1`)
	assert.Contains(t, body, `subguard_trial_conversions_total 1`)
	assert.Contains(t, body, `subguard_commitments{status="active"} 4`)
	assert.Contains(t, body, `subguard_requests_total{endpoint="/api/track",status="2xx"} 1`)
}

func TestPrometheusHandlerExposesMetrics(t *testing.T) {
	m := New(true, prometheus.NewRegistry())
	m.IncSweeps()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "subguard_sweeps_total 1")
}

func TestHTTPStatusBucket(t *testing.T) {
	assert.Equal(t, "1xx", httpStatusBucket(101))
	assert.Equal(t, "2xx", httpStatusBucket(204))
	assert.Equal(t, "3xx", httpStatusBucket(302))
	assert.Equal(t, "4xx", httpStatusBucket(429))
	assert.Equal(t, "5xx", httpStatusBucket(503))
}
