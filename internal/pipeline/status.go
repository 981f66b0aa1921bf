package pipeline

import (
	"time"

	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
)

// Status is the supervisor's classification of one observation window.
type Status int

const (
	StatusOK Status = iota
	StatusProducerOnly
	StatusConsumerOnly
	StatusFailure
)

// Classify maps the flags observed in a window to a status.
func Classify(bits Flag) Status {
	switch {
	case bits.Has(FlagProducer) && bits.Has(FlagConsumer):
		return StatusOK
	case bits.Has(FlagProducer):
		return StatusProducerOnly
	case bits.Has(FlagConsumer):
		return StatusConsumerOnly
	default:
		return StatusFailure
	}
}

// String returns the metric label for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusProducerOnly:
		return "producer_only"
	case StatusConsumerOnly:
		return "consumer_only"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Describe returns the operator-facing log message.
func (s Status) Describe() string {
	switch s {
	case StatusOK:
		return "system OK, producer and consumer active"
	case StatusProducerOnly:
		return "system partially OK, only producer signaled"
	case StatusConsumerOnly:
		return "system partially OK, only consumer signaled"
	case StatusFailure:
		return "no task signaled in window"
	default:
		return "unknown status"
	}
}

// Category returns the log category the status is reported under.
func (s Status) Category() logging.Category {
	if s == StatusFailure {
		return logging.CategoryFailure
	}
	return logging.CategoryStatus
}

// Healthy reports whether at least one task made progress.
func (s Status) Healthy() bool {
	return s != StatusFailure
}

// Report is the outcome of one supervision cycle.
type Report struct {
	Cycle  uint64    `json:"cycle"`
	Status Status    `json:"-"`
	Label  string    `json:"status"`
	Flags  string    `json:"flags"`
	At     time.Time `json:"at"`
}
