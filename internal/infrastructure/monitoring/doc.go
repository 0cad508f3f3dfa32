/*
Package monitoring provides Prometheus metrics for the file sharing server.

# Overview

Metrics are registered on a private registry owned by Metrics, so several
instances (for example one per test) can coexist.

# Metrics

- HTTP requests: count, latency and sizes by method, route and status
- Namespace operations: count by operation and outcome, latency by operation
- Uploaded bytes
- Logins by outcome and chat messages posted
- Process uptime

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	svc := namespace.NewService(resolver, namespace.WithMetrics(metrics))
*/
package monitoring
