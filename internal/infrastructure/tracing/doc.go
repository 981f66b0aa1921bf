/*
Package tracing tags status API requests with a trace ID.

The ID is taken from an incoming X-Trace-ID header or generated as a
prefixed ULID, echoed on the response and stored in the request context so
handlers can log it.

	router.Use(tracing.Middleware(logger))
*/
package tracing
