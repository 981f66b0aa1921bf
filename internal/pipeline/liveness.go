package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Flag is a set of liveness bits.
type Flag uint32

const (
	FlagProducer Flag = 1 << iota
	FlagConsumer

	FlagNone Flag = 0
	FlagAll       = FlagProducer | FlagConsumer
)

// Has reports whether every bit of g is set in f.
func (f Flag) Has(g Flag) bool {
	return g != 0 && f&g == g
}

// String lists the set bits, e.g. "producer|consumer".
func (f Flag) String() string {
	if f == FlagNone {
		return "none"
	}
	var parts []string
	if f.Has(FlagProducer) {
		parts = append(parts, "producer")
	}
	if f.Has(FlagConsumer) {
		parts = append(parts, "consumer")
	}
	if rest := f &^ FlagAll; rest != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}

// Liveness holds sticky progress flags. Marks are OR-combined; only WaitAny
// with clearOnExit removes them.
type Liveness struct {
	mu      sync.Mutex
	bits    Flag
	changed chan struct{} // closed and replaced whenever a new bit is set
}

// NewLiveness creates a signal with no flags set.
func NewLiveness() *Liveness {
	return &Liveness{changed: make(chan struct{})}
}

// Mark sets flag. It never waits on observers.
func (l *Liveness) Mark(flag Flag) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.bits&flag == flag {
		return
	}
	l.bits |= flag
	close(l.changed)
	l.changed = make(chan struct{})
}

// Peek returns the flags currently set without clearing them.
func (l *Liveness) Peek() Flag {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bits
}

// WaitAny blocks up to window until at least one bit of mask is set. On wake,
// by a mark or by the window closing, it returns the set subset of mask and
// clears exactly that subset when clearOnExit is true. If ctx is done first
// it returns FlagNone and leaves the flags alone.
func (l *Liveness) WaitAny(ctx context.Context, mask Flag, clearOnExit bool, window time.Duration) Flag {
	timer := time.NewTimer(window)
	defer timer.Stop()

	for {
		got, changed := l.take(mask, clearOnExit)
		if got != FlagNone {
			return got
		}

		select {
		case <-changed:
		case <-timer.C:
			got, _ = l.take(mask, clearOnExit)
			return got
		case <-ctx.Done():
			return FlagNone
		}
	}
}

// take reads the masked bits, clearing them if asked, and returns the
// channel to wait on when none were set.
func (l *Liveness) take(mask Flag, reset bool) (Flag, <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	got := l.bits & mask
	if got != FlagNone && reset {
		l.bits &^= got
	}
	return got, l.changed
}
