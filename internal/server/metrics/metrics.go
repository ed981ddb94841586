// Package metrics defines the Prometheus collectors of the server.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/custdb/internal/server/mailer"
	"github.com/prometheus/client_golang/prometheus"
)

// Verification email outcome label values.
const (
	OutcomeSkipped   = "skipped"
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)

type Metrics struct {
	VerificationEmails *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		VerificationEmails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_emails_total",
			Help: "Verification emails by outcome (skipped, delivered, failed)",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Register registers the collectors on reg (or the default registerer if nil).
// Collectors that are already registered are not an error.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{m.VerificationEmails, m.HTTPRequests, m.HTTPDuration} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// ObserveVerificationEmail implements mailer.OutcomeObserver.
func (m *Metrics) ObserveVerificationEmail(o mailer.Outcome) {
	m.VerificationEmails.WithLabelValues(outcomeLabel(o)).Inc()
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcomeLabel(o mailer.Outcome) string {
	switch {
	case o.Delivered:
		return OutcomeDelivered
	case o.Attempted || o.Err != nil:
		return OutcomeFailed
	default:
		return OutcomeSkipped
	}
}
