package resilience

import (
	"sync"
)

// State represents the escalation state
type State int

const (
	StateNormal State = iota
	StateAlerted
	StateRecovering
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateAlerted:
		return "alerted"
	case StateRecovering:
		return "recovering"
	default:
		return "unknown"
	}
}

// Action is what the caller must do after reporting a failure
type Action int

const (
	ActionNone Action = iota
	ActionAlert
	ActionRecover
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionAlert:
		return "alert"
	case ActionRecover:
		return "recover"
	default:
		return "unknown"
	}
}

// Default thresholds
const (
	DefaultAlertAt   = 3
	DefaultRecoverAt = 5
)

// Settings configures the escalator behavior
type Settings struct {
	// AlertAt is the consecutive failure count that raises a single alert
	AlertAt int
	// RecoverAt is the consecutive failure count that demands recovery;
	// the streak restarts from zero afterwards
	RecoverAt int
	// OnStateChange is called whenever the state changes. It runs with the
	// escalator locked and must not call back into it.
	OnStateChange func(name string, from State, to State)
}

// Counts holds the statistics for the escalator
type Counts struct {
	Consecutive    int
	TotalFailures  uint64
	TotalSuccesses uint64
	Alerts         uint64
	Recoveries     uint64
}

// Escalator turns a stream of failures into escalating actions: nothing,
// one alert at AlertAt, recovery at RecoverAt.
type Escalator struct {
	name     string
	settings Settings

	mu     sync.Mutex
	state  State
	counts Counts
}

// New creates a new escalator with the given settings
func New(name string, settings Settings) *Escalator {
	// Set default values
	if settings.AlertAt <= 0 {
		settings.AlertAt = DefaultAlertAt
	}
	if settings.RecoverAt <= 0 {
		settings.RecoverAt = DefaultRecoverAt
	}

	return &Escalator{
		name:     name,
		settings: settings,
		state:    StateNormal,
	}
}

// Name returns the name of the escalator
func (e *Escalator) Name() string {
	return e.name
}

// State returns the current state of the escalator
func (e *Escalator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Counts returns a copy of the internal counts
func (e *Escalator) Counts() Counts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts
}

// Failure records one failure. It returns the attempt number within the
// current streak and the action it triggered.
func (e *Escalator) Failure() (int, Action) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.counts.TotalFailures++
	e.counts.Consecutive++
	attempt := e.counts.Consecutive

	switch {
	case attempt >= e.settings.RecoverAt:
		e.counts.Recoveries++
		e.counts.Consecutive = 0
		e.setState(StateRecovering)
		e.setState(StateNormal)
		return attempt, ActionRecover
	case attempt == e.settings.AlertAt:
		e.counts.Alerts++
		e.setState(StateAlerted)
		return attempt, ActionAlert
	default:
		return attempt, ActionNone
	}
}

// Success records a success and clears the failure streak
func (e *Escalator) Success() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.counts.TotalSuccesses++
	e.counts.Consecutive = 0
	e.setState(StateNormal)
}

// Streak returns the current consecutive failure count
func (e *Escalator) Streak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts.Consecutive
}

// setState changes the state of the escalator
func (e *Escalator) setState(state State) {
	if e.state == state {
		return
	}

	prev := e.state
	e.state = state

	if e.settings.OnStateChange != nil {
		e.settings.OnStateChange(e.name, prev, state)
	}
}
