package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	promNamespace         = "timejump"
	promRedirectSubsystem = "redirect"
	promUpstreamSubsystem = "upstream"
)

// Upstream stages reported by UpstreamFailure.
const (
	StageConfig      = "config"
	StageCredentials = "credentials"
	StageSheets      = "sheets"
)

// Prometheus holds the service collectors on a private registry.
// Recording methods are no-ops on a nil *Prometheus.
type Prometheus struct {
	decisionsM     *prometheus.CounterVec
	upstreamErrM   *prometheus.CounterVec
	rangeAttemptsM *prometheus.CounterVec
	rateLimitedM   *prometheus.CounterVec
	resolveM       prometheus.Histogram

	registry *prometheus.Registry
}

// NewPrometheus creates and registers the collectors.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		decisionsM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promRedirectSubsystem,
			Name:      "decisions_total",
			Help:      "Redirect decisions by matched rule kind.",
		}, []string{"kind"}),
		upstreamErrM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promUpstreamSubsystem,
			Name:      "failures_total",
			Help:      "Requests aborted before rule evaluation, by stage.",
		}, []string{"stage"}),
		rangeAttemptsM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promUpstreamSubsystem,
			Name:      "range_attempts_total",
			Help:      "Candidate range lookups by outcome.",
		}, []string{"outcome"}),
		rateLimitedM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promRedirectSubsystem,
			Name:      "rate_limited_total",
			Help:      "Redirect requests rejected by the per-IP rate limiter, by reason.",
		}, []string{"reason"}),
		resolveM: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: promRedirectSubsystem,
			Name:      "resolve_duration_seconds",
			Help:      "Time spent from credential exchange to decision.",
			Buckets:   prometheus.DefBuckets,
		}),
		registry: prometheus.NewRegistry(),
	}

	p.registry.MustRegister(p.decisionsM)
	p.registry.MustRegister(p.upstreamErrM)
	p.registry.MustRegister(p.rangeAttemptsM)
	p.registry.MustRegister(p.rateLimitedM)
	p.registry.MustRegister(p.resolveM)
	p.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	p.registry.MustRegister(collectors.NewGoCollector())

	return p
}

// Handler exposes the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Decision counts one redirect decision. kind is the matched rule kind.
func (p *Prometheus) Decision(kind string) {
	if p == nil {
		return
	}
	p.decisionsM.WithLabelValues(kind).Inc()
}

// UpstreamFailure counts a request aborted at stage.
func (p *Prometheus) UpstreamFailure(stage string) {
	if p == nil {
		return
	}
	p.upstreamErrM.WithLabelValues(stage).Inc()
}

// RangeAttempt counts a candidate range lookup. outcome is "found", "empty" or "error".
func (p *Prometheus) RangeAttempt(outcome string) {
	if p == nil {
		return
	}
	p.rangeAttemptsM.WithLabelValues(outcome).Inc()
}

// RateLimited counts a request rejected by the rate limiter.
func (p *Prometheus) RateLimited(reason string) {
	if p == nil {
		return
	}
	p.rateLimitedM.WithLabelValues(reason).Inc()
}

// MeasureSince observes the time elapsed since start.
func (p *Prometheus) MeasureSince(start time.Time) {
	if p == nil {
		return
	}
	p.resolveM.Observe(time.Since(start).Seconds())
}
