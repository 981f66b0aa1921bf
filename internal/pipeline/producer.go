package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
)

// Producer generates sequential records and offers them to the channel.
type Producer struct {
	deps     Deps
	settings ProducerSettings
	feeder   Feeder
	logger   *logging.Logger

	seq int // owned by the goroutine calling Cycle
}

// NewProducer creates a producer whose first record has id 1.
func NewProducer(deps Deps, settings ProducerSettings, feeder Feeder) *Producer {
	if feeder == nil {
		feeder = NopFeeder
	}
	return &Producer{
		deps:     deps,
		settings: settings,
		feeder:   feeder,
		logger:   deps.Logger.Named("producer"),
		seq:      1,
	}
}

// Run produces until ctx is done.
func (p *Producer) Run(ctx context.Context) error {
	for {
		if err := sleep(ctx, p.Cycle(ctx)); err != nil {
			return nil
		}
	}
}

// Cycle generates one record and offers it. It returns how long to sleep
// before the next cycle.
func (p *Producer) Cycle(ctx context.Context) time.Duration {
	timer := monitoring.NewTimer(p.deps.Metrics, "producer")

	rec, err := p.deps.Pool.New(p.seq)
	if err != nil {
		// The sequence number is retried on the next cycle.
		p.logger.Event(logging.CategoryError, "record allocation failed in producer",
			zap.Int("seq", p.seq),
			zap.Error(err),
		)
		p.deps.Metrics.RecordAllocFailure("producer")
		timer.Stop("alloc_failed")
		return p.settings.AllocBackoff
	}
	p.seq++

	id, value := rec.ID, rec.Value
	outcome := "sent"
	if p.deps.Channel.TrySend(rec) {
		p.deps.Liveness.Mark(FlagProducer)
		p.deps.Metrics.RecordSent()
		p.logger.Event(logging.CategoryTX, "record sent",
			zap.Int("id", id),
			zap.Int("value", value),
		)
	} else {
		outcome = "dropped"
		if err := p.deps.Pool.Release(rec); err != nil {
			p.logger.Event(logging.CategoryError, "failed to release dropped record",
				zap.Int("id", id),
				zap.Error(err),
			)
		}
		p.deps.Metrics.RecordDropped()
		p.logger.Event(logging.CategoryQueue, "channel full, record dropped",
			zap.Int("id", id),
			zap.Int("value", value),
		)
	}
	p.deps.Metrics.SetChannelDepth(p.deps.Channel.Len())

	p.feeder.Reset()
	timer.Stop(outcome)
	return p.settings.Cadence
}

// Next returns the sequence number the next record will carry.
func (p *Producer) Next() int {
	return p.seq
}
