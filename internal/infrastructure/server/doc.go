/*
Package server exposes pipeline status over HTTP.

Routes:

	GET /         service banner
	GET /health   latest supervision report, pending flags, pool and
	              watchdog state; 503 after a failed window
	GET /metrics  Prometheus exposition

Every request passes through recovery, trace tagging, request metrics and,
when enabled, a process-wide rate limit.
*/
package server
