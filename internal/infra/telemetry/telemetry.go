package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/config"
)

// Provider holds the Prometheus instruments exposed by the service.
type Provider struct {
	requestDuration *prometheus.HistogramVec
	loginFailures   prometheus.Counter
	accountLockouts prometheus.Counter
}

// Attach registers the service metrics on the default registry.
func Attach(cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &Provider{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "expense",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
		}, []string{"route", "method", "status"}),
		loginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "expense",
			Name:      "login_failures_total",
			Help:      "Total failed login attempts.",
		}),
		accountLockouts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "expense",
			Name:      "account_lockouts_total",
			Help:      "Total accounts moved into the locked state.",
		}),
	}, nil
}

// ObserveRequest records one HTTP request observation.
func (p *Provider) ObserveRequest(route, method, status string, seconds float64) {
	if p == nil {
		return
	}
	p.requestDuration.WithLabelValues(route, method, status).Observe(seconds)
}

// LoginFailureInc bumps the failed login counter.
func (p *Provider) LoginFailureInc() {
	if p == nil {
		return
	}
	p.loginFailures.Inc()
}

// AccountLockoutInc bumps the lockout counter.
func (p *Provider) AccountLockoutInc() {
	if p == nil {
		return
	}
	p.accountLockouts.Inc()
}
