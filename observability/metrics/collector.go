package metrics

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/reglet-dev/doublecount/domain/entities"
	"github.com/reglet-dev/doublecount/hostfuncs"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "doubles"

// Collector implements ports.InvocationRecorder with Prometheus metrics.
type Collector struct {
	registry        *prometheus.Registry
	invocationsName string
	invocations     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	inputBytes      *prometheus.HistogramVec
}

type collectorConfig struct {
	registry  *prometheus.Registry
	namespace string
	buckets   []float64
}

// Option configures a Collector.
type Option func(*collectorConfig)

// WithRegistry registers the metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *collectorConfig) {
		c.registry = reg
	}
}

// WithNamespace overrides the metric name prefix.
func WithNamespace(ns string) Option {
	return func(c *collectorConfig) {
		c.namespace = ns
	}
}

// WithDurationBuckets overrides the latency histogram buckets (seconds).
func WithDurationBuckets(buckets []float64) Option {
	return func(c *collectorConfig) {
		c.buckets = buckets
	}
}

// NewCollector creates and registers the invocation metrics.
func NewCollector(opts ...Option) *Collector {
	cfg := collectorConfig{
		namespace: DefaultNamespace,
		// Counting a string takes microseconds; DefBuckets starts at 5ms.
		buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.registry)
	return &Collector{
		registry:        cfg.registry,
		invocationsName: prometheus.BuildFQName(cfg.namespace, "", "invocations_total"),
		invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "invocations_total",
				Help:      "Total number of export invocations",
			},
			[]string{"function", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Export invocation duration in seconds",
				Buckets:   cfg.buckets,
			},
			[]string{"function"},
		),
		inputBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.namespace,
				Name:      "input_bytes",
				Help:      "Size of export request payloads in bytes",
				Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
			},
			[]string{"function"},
		),
	}
}

// RecordInvocation implements ports.InvocationRecorder.
func (c *Collector) RecordInvocation(inv entities.Invocation) {
	c.invocations.WithLabelValues(inv.Function, string(inv.Status)).Inc()
	c.duration.WithLabelValues(inv.Function).Observe(inv.Duration.Seconds())
	c.inputBytes.WithLabelValues(inv.Function).Observe(float64(inv.InputBytes))
}

// Middleware returns registry middleware that feeds this collector.
func (c *Collector) Middleware() hostfuncs.Middleware {
	return hostfuncs.RecorderMiddleware(c)
}

// Registry returns the registry holding the metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Count is the number of invocations observed for one function and status.
type Count struct {
	Function string
	Status   string
	Total    uint64
}

// Counts gathers the invocation counter, sorted by function then status.
func (c *Collector) Counts() ([]Count, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	var counts []Count
	for _, mf := range families {
		if mf.GetName() != c.invocationsName || mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			cnt := Count{Total: uint64(m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "function":
					cnt.Function = lp.GetValue()
				case "status":
					cnt.Status = lp.GetValue()
				}
			}
			counts = append(counts, cnt)
		}
	}

	slices.SortFunc(counts, func(a, b Count) int {
		if n := strings.Compare(a.Function, b.Function); n != 0 {
			return n
		}
		return strings.Compare(a.Status, b.Status)
	})
	return counts, nil
}

// WriteSummary writes one "function status total" line per counter series.
func (c *Collector) WriteSummary(w io.Writer) error {
	counts, err := c.Counts()
	if err != nil {
		return err
	}
	for _, cnt := range counts {
		if _, err := fmt.Fprintf(w, "%-28s %-9s %d\n", cnt.Function, cnt.Status, cnt.Total); err != nil {
			return err
		}
	}
	return nil
}
