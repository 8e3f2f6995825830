// Package metrics exposes Prometheus counters for detections, reminders and
// HTTP traffic. When disabled every call is a no-op.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reminder delivery paths.
const (
	PathDirect = "direct"
	PathSweep  = "sweep"
)

type Provider interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)

	IncDetections(trial bool)
	ObserveRiskScore(score int)
	IncTracked()

	IncRemindersSent(path string)
	IncReminderFailures(path string)
	IncTrialConversions()
	IncSweeps()
	SetCommitments(status string, count int)

	Handler() http.Handler
}

type Prometheus struct {
	gatherer prometheus.Gatherer

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	detections       *prometheus.CounterVec
	riskScores       prometheus.Histogram
	tracked          prometheus.Counter
	remindersSent    *prometheus.CounterVec
	reminderFailures *prometheus.CounterVec
	trialConversions prometheus.Counter
	sweeps           prometheus.Counter
	commitments      *prometheus.GaugeVec
}

// New returns a Prometheus provider registered on reg, or a no-op provider
// when disabled. A nil reg uses a fresh registry.
func New(enabled bool, reg *prometheus.Registry) Provider {
	if !enabled {
		return &noopMetrics{}
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Prometheus{
		gatherer: reg,

		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "subguard_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "subguard_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		detections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "subguard_detections_total",
			Help: "Offers extracted from activated elements",
		}, []string{"trial"}),

		riskScores: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "subguard_risk_score",
			Help:    "Risk score of extracted offers",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		tracked: f.NewCounter(prometheus.CounterOpts{
			Name: "subguard_commitments_tracked_total",
			Help: "Commitments persisted from detections or manual entry",
		}),

		remindersSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "subguard_reminders_sent_total",
			Help: "Renewal reminders delivered",
		}, []string{"path"}),

		reminderFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "subguard_reminder_failures_total",
			Help: "Renewal reminders that could not be delivered",
		}, []string{"path"}),

		trialConversions: f.NewCounter(prometheus.CounterOpts{
			Name: "subguard_trial_conversions_total",
			Help: "Trials moved to active after their end date",
		}),

		sweeps: f.NewCounter(prometheus.CounterOpts{
			Name: "subguard_sweeps_total",
			Help: "Completed safety sweeps",
		}),

		commitments: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "subguard_commitments",
			Help: "Commitments per status seen by the last sweep",
		}, []string{"status"}),
	}
}

func (m *Prometheus) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *Prometheus) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Prometheus) IncDetections(trial bool) {
	m.detections.WithLabelValues(strconv.FormatBool(trial)).Inc()
}

func (m *Prometheus) ObserveRiskScore(score int) {
	m.riskScores.Observe(float64(score))
}

func (m *Prometheus) IncTracked() {
	m.tracked.Inc()
}

func (m *Prometheus) IncRemindersSent(path string) {
	m.remindersSent.WithLabelValues(path).Inc()
}

func (m *Prometheus) IncReminderFailures(path string) {
	m.reminderFailures.WithLabelValues(path).Inc()
}

func (m *Prometheus) IncTrialConversions() {
	m.trialConversions.Inc()
}

func (m *Prometheus) IncSweeps() {
	m.sweeps.Inc()
}

func (m *Prometheus) SetCommitments(status string, count int) {
	m.commitments.WithLabelValues(status).Set(float64(count))
}

func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncDetections(_ bool)                             {}
func (n *noopMetrics) ObserveRiskScore(_ int)                           {}
func (n *noopMetrics) IncTracked()                                      {}
func (n *noopMetrics) IncRemindersSent(_ string)                        {}
func (n *noopMetrics) IncReminderFailures(_ string)                     {}
func (n *noopMetrics) IncTrialConversions()                             {}
func (n *noopMetrics) IncSweeps()                                       {}
func (n *noopMetrics) SetCommitments(_ string, _ int)                   {}
func (n *noopMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
