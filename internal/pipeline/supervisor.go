package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
)

// Supervisor samples the liveness flags and classifies system health.
type Supervisor struct {
	liveness *Liveness
	metrics  *monitoring.Metrics
	settings SupervisorSettings
	feeder   Feeder
	logger   *logging.Logger

	mu     sync.RWMutex
	last   Report
	cycles uint64
}

// NewSupervisor creates a supervisor over the signal in deps.
func NewSupervisor(deps Deps, settings SupervisorSettings, feeder Feeder) *Supervisor {
	if feeder == nil {
		feeder = NopFeeder
	}
	return &Supervisor{
		liveness: deps.Liveness,
		metrics:  deps.Metrics,
		settings: settings,
		feeder:   feeder,
		logger:   deps.Logger.Named("supervisor"),
	}
}

// Run supervises until ctx is done.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if _, err := s.Cycle(ctx); err != nil {
			return nil
		}
		if err := sleep(ctx, s.settings.Cadence); err != nil {
			return nil
		}
	}
}

// Cycle observes one window and emits exactly one classification.
func (s *Supervisor) Cycle(ctx context.Context) (Report, error) {
	timer := monitoring.NewTimer(s.metrics, "supervisor")

	bits := s.liveness.WaitAny(ctx, FlagAll, true, s.settings.Window)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	status := Classify(bits)
	s.logger.Event(status.Category(), status.Describe(),
		zap.String("status", status.String()),
		zap.Stringer("flags", bits),
	)
	s.metrics.RecordStatus(status.String())

	s.mu.Lock()
	s.cycles++
	s.last = Report{
		Cycle:  s.cycles,
		Status: status,
		Label:  status.String(),
		Flags:  bits.String(),
		At:     time.Now(),
	}
	report := s.last
	s.mu.Unlock()

	s.feeder.Reset()
	timer.Stop(status.String())
	return report, nil
}

// Last returns the latest report; false until the first cycle completes.
func (s *Supervisor) Last() (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.cycles > 0
}
