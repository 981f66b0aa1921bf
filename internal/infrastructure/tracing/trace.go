package tracing

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/shared/id"
)

// Header carries the trace ID in both directions.
const Header = "X-Trace-ID"

// TraceID identifies one request flow
type TraceID string

type contextKey struct{}

// WithTraceID returns a context carrying traceID
func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, contextKey{}, traceID)
}

// FromContext returns the trace ID stored in ctx, if any
func FromContext(ctx context.Context) (TraceID, bool) {
	traceID, ok := ctx.Value(contextKey{}).(TraceID)
	return traceID, ok && traceID != ""
}

// Middleware assigns a trace ID to every request and logs it at debug level
// once the request completes.
func Middleware(logger *logging.Logger) gin.HandlerFunc {
	log := logger.Named("http")

	return func(c *gin.Context) {
		traceID := TraceID(c.GetHeader(Header))
		if traceID == "" {
			traceID = TraceID(id.NewRequestID())
		}

		c.Request = c.Request.WithContext(WithTraceID(c.Request.Context(), traceID))
		c.Header(Header, string(traceID))

		start := time.Now()
		c.Next()

		log.Debug("Request served",
			zap.String("trace_id", string(traceID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
