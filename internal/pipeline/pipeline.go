package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/rtpipe/internal/domain/record"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/config"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rtpipe/internal/watchdog"
)

// ErrStartup wraps every failure to create the pipeline's resources. It is
// fatal: the process is expected to restart.
var ErrStartup = errors.New("pipeline startup failed")

// Task names, also used as watchdog liaison names.
const (
	TaskProducer   = "producer"
	TaskConsumer   = "consumer"
	TaskSupervisor = "supervisor"
)

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	watchdog []watchdog.Option
}

// WithWatchdogOptions passes options through to the task watchdog.
func WithWatchdogOptions(opts ...watchdog.Option) Option {
	return func(o *options) {
		o.watchdog = append(o.watchdog, opts...)
	}
}

// Pipeline owns the shared resources and the three tasks.
type Pipeline struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics

	channel  *Channel[*record.Record]
	liveness *Liveness
	pool     *record.Pool
	watchdog *watchdog.Watchdog

	producer   *Producer
	consumer   *Consumer
	supervisor *Supervisor
}

// New creates the channel, signal, pool and watchdog and wires them into the
// producer, consumer and supervisor.
func New(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pipeline{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		channel:  NewChannel[*record.Record](),
		liveness: NewLiveness(),
		pool:     record.NewPool(cfg.Pipeline.PoolCapacity),
	}

	feeders := map[string]Feeder{
		TaskProducer:   NopFeeder,
		TaskConsumer:   NopFeeder,
		TaskSupervisor: NopFeeder,
	}
	if cfg.Watchdog.Enabled {
		wd, err := watchdog.New(watchdog.Config{
			Timeout:      cfg.Units(cfg.Watchdog.Timeout),
			IdleSlots:    cfg.Watchdog.IdleSlots,
			TriggerPanic: cfg.Watchdog.TriggerPanic,
		}, logger, metrics, o.watchdog...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStartup, err)
		}
		for _, task := range []string{TaskProducer, TaskConsumer, TaskSupervisor} {
			liaison, err := wd.Add(task)
			if err != nil {
				return nil, fmt.Errorf("%w: register %s: %w", ErrStartup, task, err)
			}
			feeders[task] = liaison
		}
		p.watchdog = wd
	}

	deps := p.Deps()
	p.producer = NewProducer(deps, ProducerSettings{
		Cadence:      cfg.Units(cfg.Pipeline.ProducerCadence),
		AllocBackoff: cfg.Units(cfg.Pipeline.AllocBackoff),
	}, feeders[TaskProducer])
	p.consumer = NewConsumer(deps, ConsumerSettings{
		ReceiveTimeout:    cfg.Units(cfg.Consumer.ReceiveTimeout),
		AlertThreshold:    cfg.Consumer.AlertThreshold,
		RecoveryThreshold: cfg.Consumer.RecoveryThreshold,
		FeedOnTimeout:     cfg.Consumer.FeedOnTimeout,
	}, feeders[TaskConsumer])
	p.supervisor = NewSupervisor(deps, SupervisorSettings{
		Window:  cfg.Units(cfg.Pipeline.SupervisorWindow),
		Cadence: cfg.Units(cfg.Pipeline.SupervisorCadence),
	}, feeders[TaskSupervisor])

	return p, nil
}

// Run starts the watchdog and the three tasks and blocks until ctx is done.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("Starting pipeline tasks",
		zap.Duration("tick", p.cfg.Pipeline.Tick),
		zap.Int("channel_capacity", p.channel.Cap()),
		zap.Bool("watchdog", p.watchdog != nil),
	)

	g, ctx := errgroup.WithContext(ctx)
	if p.watchdog != nil {
		g.Go(func() error { return p.watchdog.Run(ctx) })
	}
	g.Go(func() error { return p.producer.Run(ctx) })
	g.Go(func() error { return p.consumer.Run(ctx) })
	g.Go(func() error { return p.supervisor.Run(ctx) })

	err := g.Wait()
	p.logger.Info("Pipeline tasks stopped", zap.Error(err))
	return err
}

// Deps returns the shared resources handed to each task.
func (p *Pipeline) Deps() Deps {
	return Deps{
		Channel:  p.channel,
		Liveness: p.liveness,
		Pool:     p.pool,
		Logger:   p.logger,
		Metrics:  p.metrics,
	}
}

// Producer returns the producer task.
func (p *Pipeline) Producer() *Producer { return p.producer }

// Consumer returns the consumer task.
func (p *Pipeline) Consumer() *Consumer { return p.consumer }

// Supervisor returns the supervisor task.
func (p *Pipeline) Supervisor() *Supervisor { return p.supervisor }

// Watchdog returns the task watchdog, nil when disabled.
func (p *Pipeline) Watchdog() *watchdog.Watchdog { return p.watchdog }
