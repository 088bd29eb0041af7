// Package metrics records registry invocations as Prometheus metrics.
//
// A Collector owns its own prometheus.Registry so several modules can run in
// one process without colliding on the default registerer.
//
//	c := metrics.NewCollector()
//	registry, err := mod.Registry(hostfuncs.WithMiddleware(c.Middleware()))
//	http.Handle("/metrics", c.Handler())
package metrics
