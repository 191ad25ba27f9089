// Package metrics exposes Prometheus collectors for token signing,
// verification and revocation.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hsjwt"

// Verification results used as the "result" label.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultRevoked = "revoked"
	ResultError   = "error"
)

// Operation names used as the "op" label.
const (
	OpSign   = "sign"
	OpVerify = "verify"
	OpRevoke = "revoke"
)

// Collector groups the processor metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	signed    *prometheus.CounterVec
	verified  *prometheus.CounterVec
	revoked   prometheus.Counter
	rateLimit prometheus.Counter
	duration  *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		signed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_signed_total",
			Help:      "Tokens signed, by algorithm.",
		}, []string{"alg"}),
		verified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_verified_total",
			Help:      "Token verifications, by result.",
		}, []string{"result"}),
		revoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_revoked_total",
			Help:      "Tokens added to the revocation store.",
		}),
		rateLimit: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Token creations rejected by the rate limiter.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of processor operations.",
			Buckets:   []float64{.00001, .000025, .00005, .0001, .00025, .0005, .001, .005, .01, .05},
		}, []string{"op"}),
	}

	if reg == nil {
		return c, nil
	}

	var err error
	if c.signed, err = register(reg, c.signed); err != nil {
		return nil, err
	}
	if c.verified, err = register(reg, c.verified); err != nil {
		return nil, err
	}
	if c.revoked, err = register(reg, c.revoked); err != nil {
		return nil, err
	}
	if c.rateLimit, err = register(reg, c.rateLimit); err != nil {
		return nil, err
	}
	if c.duration, err = register(reg, c.duration); err != nil {
		return nil, err
	}
	return c, nil
}

// register adds col to reg, reusing an identical collector that is already
// registered there.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return col, nil
}

// ObserveSign records one signed token.
func (c *Collector) ObserveSign(alg string, d time.Duration) {
	if c == nil {
		return
	}
	c.signed.WithLabelValues(alg).Inc()
	c.duration.WithLabelValues(OpSign).Observe(d.Seconds())
}

// ObserveVerify records one verification with its result label.
func (c *Collector) ObserveVerify(result string, d time.Duration) {
	if c == nil {
		return
	}
	c.verified.WithLabelValues(result).Inc()
	c.duration.WithLabelValues(OpVerify).Observe(d.Seconds())
}

// ObserveRevoke records one revocation.
func (c *Collector) ObserveRevoke(d time.Duration) {
	if c == nil {
		return
	}
	c.revoked.Inc()
	c.duration.WithLabelValues(OpRevoke).Observe(d.Seconds())
}

// RateLimited records one rejected creation.
func (c *Collector) RateLimited() {
	if c == nil {
		return
	}
	c.rateLimit.Inc()
}
