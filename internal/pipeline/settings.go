package pipeline

import (
	"context"
	"time"

	"github.com/GriffinCanCode/rtpipe/internal/domain/record"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
)

// Reference cadences and thresholds, in time units.
const (
	DefaultProducerCadence   = 1
	DefaultAllocBackoff      = 1
	DefaultReceiveTimeout    = 1
	DefaultSupervisorWindow  = 2
	DefaultSupervisorCadence = 2
	DefaultAlertThreshold    = 3
	DefaultRecoveryThreshold = 5
	DefaultWatchdogTimeout   = 5
)

// ProducerSettings controls the producer cadence.
type ProducerSettings struct {
	Cadence      time.Duration // sleep after every cycle
	AllocBackoff time.Duration // sleep after an allocation failure
}

// ConsumerSettings controls the receive window and escalation.
type ConsumerSettings struct {
	ReceiveTimeout    time.Duration
	AlertThreshold    int
	RecoveryThreshold int
	// FeedOnTimeout also resets the consumer's watchdog liaison after an
	// empty window. Off by default: only a received record counts as progress.
	FeedOnTimeout bool
}

// SupervisorSettings controls the observation window.
type SupervisorSettings struct {
	Window  time.Duration
	Cadence time.Duration // sleep after every cycle, on top of the window
}

// DefaultProducerSettings returns the reference producer timing for tick.
func DefaultProducerSettings(tick time.Duration) ProducerSettings {
	return ProducerSettings{
		Cadence:      DefaultProducerCadence * tick,
		AllocBackoff: DefaultAllocBackoff * tick,
	}
}

// DefaultConsumerSettings returns the reference consumer timing for tick.
func DefaultConsumerSettings(tick time.Duration) ConsumerSettings {
	return ConsumerSettings{
		ReceiveTimeout:    DefaultReceiveTimeout * tick,
		AlertThreshold:    DefaultAlertThreshold,
		RecoveryThreshold: DefaultRecoveryThreshold,
	}
}

// DefaultSupervisorSettings returns the reference supervisor timing for tick.
func DefaultSupervisorSettings(tick time.Duration) SupervisorSettings {
	return SupervisorSettings{
		Window:  DefaultSupervisorWindow * tick,
		Cadence: DefaultSupervisorCadence * tick,
	}
}

// Feeder is the per-task watchdog liaison.
type Feeder interface {
	Reset()
}

type nopFeeder struct{}

func (nopFeeder) Reset() {}

// NopFeeder is used when no watchdog is configured.
var NopFeeder Feeder = nopFeeder{}

// Deps are the shared resources injected into every task.
type Deps struct {
	Channel  *Channel[*record.Record]
	Liveness *Liveness
	Pool     *record.Pool
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
