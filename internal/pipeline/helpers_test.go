package pipeline

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/rtpipe/internal/domain/record"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
)

const testTick = 10 * time.Millisecond

type countingFeeder struct {
	n atomic.Int64
}

func (f *countingFeeder) Reset() { f.n.Add(1) }

func (f *countingFeeder) Count() int64 { return f.n.Load() }

func newTestDeps(t *testing.T, capacity int) (Deps, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	return Deps{
		Channel:  NewChannel[*record.Record](),
		Liveness: NewLiveness(),
		Pool:     record.NewPool(capacity),
		Logger:   logging.Wrap(zap.New(core), "{test}"),
		Metrics:  monitoring.NewMetrics(prometheus.NewRegistry()),
	}, logs
}

// categories returns the category of every category line, in order.
func categories(logs *observer.ObservedLogs) []string {
	var out []string
	for _, entry := range logs.All() {
		if cat, ok := entry.ContextMap()["category"].(string); ok {
			out = append(out, cat)
		}
	}
	return out
}

func byCategory(logs *observer.ObservedLogs, cat logging.Category) []observer.LoggedEntry {
	return logs.FilterField(zap.String("category", string(cat))).All()
}
