package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/rtpipe/internal/domain/record"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/resilience"
)

// Consumer drains the channel, processes a transient copy of every record
// and escalates on consecutive empty windows.
type Consumer struct {
	deps      Deps
	settings  ConsumerSettings
	feeder    Feeder
	logger    *logging.Logger
	escalator *resilience.Escalator
}

// NewConsumer creates a consumer with an empty timeout streak.
func NewConsumer(deps Deps, settings ConsumerSettings, feeder Feeder) *Consumer {
	if feeder == nil {
		feeder = NopFeeder
	}
	logger := deps.Logger.Named("consumer")

	return &Consumer{
		deps:     deps,
		settings: settings,
		feeder:   feeder,
		logger:   logger,
		escalator: resilience.New("consumer", resilience.Settings{
			AlertAt:   settings.AlertThreshold,
			RecoverAt: settings.RecoveryThreshold,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Debug("escalation state changed",
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

// Run consumes until ctx is done. The receive window is the only wait.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := c.Cycle(ctx); err != nil {
			return nil
		}
	}
}

// Cycle waits for one record. It only fails when ctx is done.
func (c *Consumer) Cycle(ctx context.Context) error {
	timer := monitoring.NewTimer(c.deps.Metrics, "consumer")

	rec, err := c.deps.Channel.Receive(ctx, c.settings.ReceiveTimeout)
	switch {
	case err == nil:
		c.process(rec)
		timer.Stop("received")
	case errors.Is(err, ErrTimedOut):
		c.timedOut()
		timer.Stop("timed_out")
	default:
		return err
	}
	return nil
}

// TimeoutCount returns the current number of consecutive empty windows.
func (c *Consumer) TimeoutCount() int {
	return c.escalator.Streak()
}

// process works on an independent copy of rec, then releases both.
func (c *Consumer) process(rec *record.Record) {
	id, value := rec.ID, rec.Value

	work, err := c.deps.Pool.Copy(rec)
	if err != nil {
		c.logger.Event(logging.CategoryError, "copy allocation failed in consumer",
			zap.Int("id", id),
			zap.Error(err),
		)
		c.deps.Metrics.RecordAllocFailure("consumer")
		c.logger.Event(logging.CategoryRX, "record received",
			zap.Int("id", id),
			zap.Int("value", value),
			zap.Bool("copied", false),
		)
	} else {
		c.logger.Event(logging.CategoryRX, "record received",
			zap.Int("id", work.ID),
			zap.Int("value", work.Value),
			zap.Bool("copied", true),
		)
		c.release(work)
	}
	c.release(rec)

	c.deps.Metrics.RecordReceived()
	c.deps.Metrics.SetChannelDepth(c.deps.Channel.Len())
	c.deps.Liveness.Mark(FlagConsumer)
	c.escalator.Success()
	c.deps.Metrics.ResetStreak()
	c.feeder.Reset()
}

// timedOut advances the escalation after an empty window.
func (c *Consumer) timedOut() {
	attempt, action := c.escalator.Failure()
	c.deps.Metrics.RecordTimeout(attempt)

	c.logger.Event(logging.CategoryQueue, "no record received",
		zap.Int("attempt", attempt),
	)

	switch action {
	case resilience.ActionAlert:
		c.deps.Metrics.RecordAlert()
		c.logger.Event(logging.CategoryAlert, "consumer failing to receive",
			zap.Int("attempt", attempt),
		)
	case resilience.ActionRecover:
		drained := c.deps.Channel.Reset()
		for _, r := range drained {
			c.release(r)
		}
		c.deps.Metrics.RecordRecovery(len(drained))
		c.deps.Metrics.SetChannelDepth(c.deps.Channel.Len())
		c.logger.Event(logging.CategoryRecovery, "resetting channel state",
			zap.Int("attempt", attempt),
			zap.Int("discarded", len(drained)),
		)
	}

	if c.settings.FeedOnTimeout {
		c.feeder.Reset()
	}
}

func (c *Consumer) release(r *record.Record) {
	if err := c.deps.Pool.Release(r); err != nil {
		c.logger.Event(logging.CategoryError, "failed to release record",
			zap.Int("id", r.ID),
			zap.Error(err),
		)
	}
}
