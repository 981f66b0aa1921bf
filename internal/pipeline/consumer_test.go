package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
)

func fastConsumerSettings() ConsumerSettings {
	return ConsumerSettings{
		ReceiveTimeout:    time.Millisecond,
		AlertThreshold:    DefaultAlertThreshold,
		RecoveryThreshold: DefaultRecoveryThreshold,
	}
}

func TestConsumerProcessesRecord(t *testing.T) {
	ctx := context.Background()
	deps, logs := newTestDeps(t, 0)
	feeder := &countingFeeder{}
	c := NewConsumer(deps, fastConsumerSettings(), feeder)

	rec, err := deps.Pool.New(9)
	require.NoError(t, err)
	require.True(t, deps.Channel.TrySend(rec))

	require.NoError(t, c.Cycle(ctx))

	rx := byCategory(logs, logging.CategoryRX)
	require.Len(t, rx, 1)
	fields := rx[0].ContextMap()
	assert.Equal(t, int64(9), fields["id"])
	assert.Equal(t, int64(9), fields["value"])
	assert.Equal(t, true, fields["copied"])
	assert.Equal(t, "{test}", fields["tag"])

	stats := deps.Pool.Stats()
	assert.Equal(t, uint64(2), stats.Allocated, "original plus working copy")
	assert.Equal(t, 0, stats.Live)
	assert.True(t, rec.Released())

	assert.Equal(t, FlagConsumer, deps.Liveness.Peek())
	assert.Equal(t, int64(1), feeder.Count())
	assert.Equal(t, 0, c.TimeoutCount())
}

func TestConsumerCopyFailure(t *testing.T) {
	ctx := context.Background()
	deps, logs := newTestDeps(t, 1)
	c := NewConsumer(deps, fastConsumerSettings(), nil)

	rec, err := deps.Pool.New(1)
	require.NoError(t, err)
	require.True(t, deps.Channel.TrySend(rec))

	require.NoError(t, c.Cycle(ctx))

	assert.Len(t, byCategory(logs, logging.CategoryError), 1)
	rx := byCategory(logs, logging.CategoryRX)
	require.Len(t, rx, 1)
	assert.Equal(t, false, rx[0].ContextMap()["copied"])

	assert.Equal(t, 0, deps.Pool.Stats().Live, "original is released even without a copy")
	assert.Equal(t, FlagConsumer, deps.Liveness.Peek())
}

func TestConsumerEscalation(t *testing.T) {
	ctx := context.Background()
	deps, logs := newTestDeps(t, 0)
	feeder := &countingFeeder{}
	c := NewConsumer(deps, fastConsumerSettings(), feeder)

	for i := 1; i <= 4; i++ {
		require.NoError(t, c.Cycle(ctx))
		assert.Equal(t, i, c.TimeoutCount())
	}
	require.NoError(t, c.Cycle(ctx))
	assert.Equal(t, 0, c.TimeoutCount(), "recovery restarts the count")

	queue := byCategory(logs, logging.CategoryQueue)
	require.Len(t, queue, 5)
	for i, entry := range queue {
		assert.Equal(t, int64(i+1), entry.ContextMap()["attempt"])
	}

	alerts := byCategory(logs, logging.CategoryAlert)
	require.Len(t, alerts, 1)
	assert.Equal(t, zapcore.WarnLevel, alerts[0].Level)
	assert.Equal(t, int64(3), alerts[0].ContextMap()["attempt"])

	recoveries := byCategory(logs, logging.CategoryRecovery)
	require.Len(t, recoveries, 1)
	assert.Equal(t, int64(5), recoveries[0].ContextMap()["attempt"])

	assert.Equal(t, []string{"FILA", "FILA", "FILA", "ALERTA", "FILA", "FILA", "RECUPERAÇÃO"}, categories(logs))
	assert.Equal(t, int64(0), feeder.Count(), "empty windows do not feed the watchdog")
	assert.Equal(t, FlagNone, deps.Liveness.Peek())

	assert.Equal(t, 5.0, testutil.ToFloat64(deps.Metrics.ReceiveTimeouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.ConsumerAlerts))
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.Recoveries))

	// The next empty window starts a fresh streak.
	require.NoError(t, c.Cycle(ctx))
	assert.Equal(t, 1, c.TimeoutCount())
}

func TestConsumerSuccessResetsStreak(t *testing.T) {
	ctx := context.Background()
	deps, logs := newTestDeps(t, 0)
	c := NewConsumer(deps, fastConsumerSettings(), nil)

	require.NoError(t, c.Cycle(ctx))
	require.NoError(t, c.Cycle(ctx))
	require.Equal(t, 2, c.TimeoutCount())

	rec, err := deps.Pool.New(1)
	require.NoError(t, err)
	require.True(t, deps.Channel.TrySend(rec))
	require.NoError(t, c.Cycle(ctx))
	assert.Equal(t, 0, c.TimeoutCount())

	require.NoError(t, c.Cycle(ctx))
	queue := byCategory(logs, logging.CategoryQueue)
	require.Len(t, queue, 3)
	assert.Equal(t, int64(1), queue[2].ContextMap()["attempt"])
	assert.Empty(t, byCategory(logs, logging.CategoryAlert))
}

func TestConsumerRecoveryReleasesDrained(t *testing.T) {
	ctx := context.Background()
	deps, logs := newTestDeps(t, 0)
	c := NewConsumer(deps, fastConsumerSettings(), nil)

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Cycle(ctx))
	}

	// A record arriving just as the fifth window closes is discarded.
	rec, err := deps.Pool.New(1)
	require.NoError(t, err)
	require.True(t, deps.Channel.TrySend(rec))
	c.timedOut()

	assert.True(t, rec.Released())
	assert.Equal(t, 0, deps.Pool.Stats().Live)
	assert.Equal(t, 0, deps.Channel.Len())

	recoveries := byCategory(logs, logging.CategoryRecovery)
	require.Len(t, recoveries, 1)
	assert.Equal(t, int64(1), recoveries[0].ContextMap()["discarded"])
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.RecordsReset))
}

func TestConsumerFeedOnTimeout(t *testing.T) {
	deps, _ := newTestDeps(t, 0)
	feeder := &countingFeeder{}
	settings := fastConsumerSettings()
	settings.FeedOnTimeout = true
	c := NewConsumer(deps, settings, feeder)

	require.NoError(t, c.Cycle(context.Background()))
	assert.Equal(t, int64(1), feeder.Count())
}

func TestConsumerCycleCancelled(t *testing.T) {
	deps, logs := newTestDeps(t, 0)
	c := NewConsumer(deps, DefaultConsumerSettings(time.Second), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Cycle(ctx), context.Canceled)
	assert.Equal(t, 0, c.TimeoutCount())
	assert.Empty(t, categories(logs))
}

// Three empty windows raise an alert; the next produced record is still id 1.
func TestScenarioAlertThenFirstRecord(t *testing.T) {
	ctx := context.Background()
	deps, logs := newTestDeps(t, 0)
	p := NewProducer(deps, DefaultProducerSettings(testTick), nil)
	c := NewConsumer(deps, fastConsumerSettings(), nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Cycle(ctx))
	}
	require.Len(t, byCategory(logs, logging.CategoryAlert), 1)

	p.Cycle(ctx)
	require.NoError(t, c.Cycle(ctx))

	rx := byCategory(logs, logging.CategoryRX)
	require.Len(t, rx, 1)
	assert.Equal(t, int64(1), rx[0].ContextMap()["id"])
	assert.Equal(t, 0, c.TimeoutCount())
}

// Five empty windows reset the channel; the slot then accepts a send.
func TestScenarioRecoveryFreesSlot(t *testing.T) {
	ctx := context.Background()
	deps, logs := newTestDeps(t, 0)
	c := NewConsumer(deps, fastConsumerSettings(), nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Cycle(ctx))
	}
	require.Len(t, byCategory(logs, logging.CategoryRecovery), 1)
	assert.Equal(t, 0, c.TimeoutCount())
	assert.Equal(t, 0, deps.Channel.Len())

	rec, err := deps.Pool.New(1)
	require.NoError(t, err)
	assert.True(t, deps.Channel.TrySend(rec))
}
