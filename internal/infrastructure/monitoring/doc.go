/*
Package monitoring provides pipeline metrics collection.

# Overview

This package implements Prometheus-based metrics for the producer, consumer,
supervisor and watchdog, plus request metrics for the status endpoint. Every
collector is registered on an injected prometheus.Registerer so tests can use
a private registry.

# Features

- Record flow (sent, dropped, received, allocation failures, slot depth)
- Consumer escalation (timeouts, streak, alerts, recoveries)
- Supervisor classification counters and a one-hot status gauge
- Watchdog feeds and expiries per task
- Task cycle durations
- A JSON-friendly snapshot of the headline counters

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	router.Use(monitoring.Middleware(metrics))

	timer := monitoring.NewTimer(metrics, "consumer")
	// ... run one cycle ...
	timer.Stop("received")

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
