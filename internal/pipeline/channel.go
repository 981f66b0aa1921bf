package pipeline

import (
	"context"
	"errors"
	"time"
)

// ErrTimedOut is returned by Receive when no item arrives within the window.
var ErrTimedOut = errors.New("receive timed out")

// ChannelCapacity is fixed at one so overlap between producer and consumer
// surfaces as drops and empty windows instead of queueing.
const ChannelCapacity = 1

// Channel is a single-slot handoff buffer. Sending never blocks; receiving
// blocks up to a timeout. Ownership of an item moves with it.
type Channel[T any] struct {
	slot chan T
}

// NewChannel creates an empty channel.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{slot: make(chan T, ChannelCapacity)}
}

// TrySend stores item if the slot is free. On false the caller still owns
// item and must dispose of it.
func (c *Channel[T]) TrySend(item T) bool {
	select {
	case c.slot <- item:
		return true
	default:
		return false
	}
}

// Receive waits up to timeout for an item. It returns ErrTimedOut when the
// window closes empty and ctx.Err() when ctx is done first; neither touches
// the slot.
func (c *Channel[T]) Receive(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	select {
	case item := <-c.slot:
		return item, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case item := <-c.slot:
		return item, nil
	case <-timer.C:
		return zero, ErrTimedOut
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Reset drains the slot and hands the discarded items back so the caller can
// dispose of them. Resetting an empty channel is a no-op.
func (c *Channel[T]) Reset() []T {
	var drained []T
	for {
		select {
		case item := <-c.slot:
			drained = append(drained, item)
		default:
			return drained
		}
	}
}

// Len returns the number of items currently held.
func (c *Channel[T]) Len() int {
	return len(c.slot)
}

// Cap returns the channel capacity.
func (c *Channel[T]) Cap() int {
	return cap(c.slot)
}
