package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		// Process request
		c.Next()

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())

		metrics.RecordHTTPRequest(method, path, status, duration)
	}
}

// Timer measures task cycle duration
type Timer struct {
	start   time.Time
	metrics *Metrics
	task    string
}

// NewTimer creates a new timer for one cycle of task
func NewTimer(metrics *Metrics, task string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		task:    task,
	}
}

// Stop stops the timer and records the duration under outcome
func (t *Timer) Stop(outcome string) {
	duration := time.Since(t.start)
	t.metrics.CycleDuration.WithLabelValues(t.task, outcome).Observe(duration.Seconds())
}
