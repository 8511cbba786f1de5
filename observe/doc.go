// Package observe provides the tracing, metrics and logging used across the
// query pipeline.
//
// It is an instrumentation library: no search, no storage, no I/O beyond
// exporter setup. The search package wraps provider calls with Middleware and
// the cache and guard paths report through Metrics.
package observe
