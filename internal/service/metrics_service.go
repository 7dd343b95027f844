package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	enrollmentsSubmitted prometheus.Counter
	enrollmentsApproved  prometheus.Counter
	scheduleConflicts    prometheus.Counter
	accountLockouts      prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	enrollmentsSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrollments_submitted_total",
		Help: "Total enrollment applications submitted",
	})

	enrollmentsApproved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrollments_approved_total",
		Help: "Total enrollment applications approved",
	})

	scheduleConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_conflicts_rejected_total",
		Help: "Total section assignments rejected due to schedule overlap",
	})

	accountLockouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "account_lockouts_total",
		Help: "Total accounts locked after repeated failed logins",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, enrollmentsSubmitted, enrollmentsApproved, scheduleConflicts, accountLockouts, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:             registry,
		handler:              handler,
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		enrollmentsSubmitted: enrollmentsSubmitted,
		enrollmentsApproved:  enrollmentsApproved,
		scheduleConflicts:    scheduleConflicts,
		accountLockouts:      accountLockouts,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// EnrollmentSubmitted counts a newly submitted enrollment application.
func (m *MetricsService) EnrollmentSubmitted() {
	if m == nil {
		return
	}
	m.enrollmentsSubmitted.Inc()
}

// EnrollmentApproved counts an approved enrollment application.
func (m *MetricsService) EnrollmentApproved() {
	if m == nil {
		return
	}
	m.enrollmentsApproved.Inc()
}

// ScheduleConflictRejected counts a section assignment refused for overlapping with an existing schedule.
func (m *MetricsService) ScheduleConflictRejected() {
	if m == nil {
		return
	}
	m.scheduleConflicts.Inc()
}

// AccountLockedOut counts an account locked after too many failed logins.
func (m *MetricsService) AccountLockedOut() {
	if m == nil {
		return
	}
	m.accountLockouts.Inc()
}
