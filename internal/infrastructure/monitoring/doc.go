/*
Package monitoring provides Prometheus metrics for trussfs.

# Overview

Every context and the HTTP bridge record into a Metrics value built against
an explicit prometheus.Registerer. Standalone contexts get a private
registry; the bridge shares one registry across all sessions and exposes it
on /metrics.

# Features

- Live handles by kind, with allocate/free/reject counters (handle.Observer)
- Context operations by name and outcome, with a duration histogram
- Archive mounts by format and bytes read
- Watcher change records and overflow drops
- HTTP request metrics (latency, throughput, size)
- Session and WebSocket gauges

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time operations
	timer := monitoring.NewTimer(metrics, "archive_mount")
	h, err := mount()
	timer.Stop(err)

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
*/
package monitoring
