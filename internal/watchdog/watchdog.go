package watchdog

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
)

var (
	ErrDuplicate = errors.New("task already registered with watchdog")
	ErrUnknown   = errors.New("liaison not registered with watchdog")
	ErrNoTimeout = errors.New("watchdog timeout must be positive")
)

// idlePrefix names the idle-slot liaisons.
const idlePrefix = "idle"

// Config defines watchdog behavior.
type Config struct {
	// Timeout is how long a liaison may go without a Reset.
	Timeout time.Duration
	// IdleSlots is the number of idle liaisons fed by dedicated goroutines.
	// They expire only when the scheduler starves them.
	IdleSlots int
	// TriggerPanic aborts the process on expiry instead of only logging.
	TriggerPanic bool
	// CheckInterval defaults to Timeout/5.
	CheckInterval time.Duration
}

// Option configures a Watchdog.
type Option func(*Watchdog)

// WithAbort replaces the expiry action used when TriggerPanic is set.
func WithAbort(abort func(expired []string)) Option {
	return func(w *Watchdog) {
		w.abort = abort
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Watchdog) {
		w.now = now
	}
}

// Liaison is one task's registration. The owning task calls Reset to prove
// progress.
type Liaison struct {
	id      uuid.UUID
	name    string
	idle    bool
	wd      *Watchdog
	lastFed atomic.Int64 // unix nanoseconds
}

// ID returns the registration handle.
func (l *Liaison) ID() uuid.UUID { return l.id }

// Name returns the task name.
func (l *Liaison) Name() string { return l.name }

// Reset feeds the watchdog for this task.
func (l *Liaison) Reset() {
	l.lastFed.Store(l.wd.now().UnixNano())
	l.wd.metrics.RecordFeed(l.name)
}

// LiaisonState is a snapshot of one registration.
type LiaisonState struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Idle    bool      `json:"idle"`
	LastFed time.Time `json:"last_fed"`
}

// Watchdog aborts the process when a registered task stops feeding it.
type Watchdog struct {
	cfg     Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	abort   func(expired []string)
	now     func() time.Time

	mu       sync.Mutex
	liaisons map[uuid.UUID]*Liaison
	names    map[string]uuid.UUID
	running  atomic.Bool
}

// New creates a watchdog. Tasks register with Add; monitoring starts with Run.
func New(cfg Config, logger *logging.Logger, metrics *monitoring.Metrics, opts ...Option) (*Watchdog, error) {
	if cfg.Timeout <= 0 {
		return nil, ErrNoTimeout
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = cfg.Timeout / 5
	}
	if cfg.IdleSlots < 0 {
		cfg.IdleSlots = 0
	}

	w := &Watchdog{
		cfg:      cfg,
		logger:   logger.Named("watchdog"),
		metrics:  metrics,
		abort:    panicAbort,
		now:      time.Now,
		liaisons: make(map[uuid.UUID]*Liaison),
		names:    make(map[string]uuid.UUID),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add registers a task. The liaison starts fed.
func (w *Watchdog) Add(name string) (*Liaison, error) {
	return w.add(name, false)
}

func (w *Watchdog) add(name string, idle bool) (*Liaison, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.names[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	l := &Liaison{id: uuid.New(), name: name, idle: idle, wd: w}
	l.lastFed.Store(w.now().UnixNano())
	w.liaisons[l.id] = l
	w.names[name] = l.id
	return l, nil
}

// Delete unregisters a liaison.
func (w *Watchdog) Delete(l *Liaison) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if l == nil || w.liaisons[l.id] != l {
		return ErrUnknown
	}
	delete(w.liaisons, l.id)
	delete(w.names, l.name)
	return nil
}

// Run arms every liaison, starts the idle feeders and checks for expiry
// until ctx is done.
func (w *Watchdog) Run(ctx context.Context) error {
	w.running.Store(true)
	defer w.running.Store(false)

	w.arm()

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.IdleSlots; i++ {
		l, err := w.add(fmt.Sprintf("%s%d", idlePrefix, i), true)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer w.Delete(l)
			w.feedIdle(ctx, l)
		}()
	}
	defer wg.Wait()

	w.logger.Info("Task watchdog started",
		zap.Duration("timeout", w.cfg.Timeout),
		zap.Int("idle_slots", w.cfg.IdleSlots),
		zap.Bool("trigger_panic", w.cfg.TriggerPanic),
	)

	ticker := time.NewTicker(w.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check expires every liaison not fed within the timeout. It returns the
// expired task names.
func (w *Watchdog) Check() []string {
	now := w.now()
	deadline := now.Add(-w.cfg.Timeout).UnixNano()

	w.mu.Lock()
	var expired []*Liaison
	for _, l := range w.liaisons {
		if l.lastFed.Load() < deadline {
			expired = append(expired, l)
		}
	}
	w.mu.Unlock()

	if len(expired) == 0 {
		return nil
	}

	names := make([]string, 0, len(expired))
	for _, l := range expired {
		names = append(names, l.name)
		w.metrics.RecordExpiry(l.name)
	}
	sort.Strings(names)

	w.logger.Event(logging.CategoryFailure, "task watchdog expired",
		zap.Strings("tasks", names),
		zap.Duration("timeout", w.cfg.Timeout),
	)

	if w.cfg.TriggerPanic {
		w.abort(names)
		return names
	}

	// Re-arm so a stuck task is reported once per timeout window.
	for _, l := range expired {
		l.lastFed.Store(now.UnixNano())
	}
	return names
}

// Snapshot lists the registered liaisons ordered by name.
func (w *Watchdog) Snapshot() []LiaisonState {
	w.mu.Lock()
	defer w.mu.Unlock()

	states := make([]LiaisonState, 0, len(w.liaisons))
	for _, l := range w.liaisons {
		states = append(states, LiaisonState{
			ID:      l.id.String(),
			Name:    l.name,
			Idle:    l.idle,
			LastFed: time.Unix(0, l.lastFed.Load()),
		})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states
}

// Running reports whether Run is active.
func (w *Watchdog) Running() bool {
	return w.running.Load()
}

// arm feeds every liaison so time spent between Add and Run is not counted.
func (w *Watchdog) arm() {
	now := w.now().UnixNano()

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, l := range w.liaisons {
		l.lastFed.Store(now)
	}
}

// feedIdle yields and feeds l once per check interval.
func (w *Watchdog) feedIdle(ctx context.Context, l *Liaison) {
	ticker := time.NewTicker(w.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runtime.Gosched()
			l.Reset()
		}
	}
}

func panicAbort(expired []string) {
	panic(fmt.Sprintf("task watchdog: %v did not reset within timeout", expired))
}
