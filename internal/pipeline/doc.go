/*
Package pipeline implements a supervised producer/consumer pipeline.

# Topology

	Producer --TrySend--> Channel (1 slot) --Receive--> Consumer
	    |                                                  |
	    +------Mark--------> Liveness <--------Mark--------+
	                           |
	                        WaitAny
	                           |
	                       Supervisor

No task calls another. The Channel and the Liveness signal are the only
shared state and each synchronizes itself, so no task ever holds a lock
across operations.

# Tasks

The Producer allocates a record per cycle with id and value equal to a
private sequence starting at 1. A full slot is not waited on: the record is
released and logged as a drop.

The Consumer waits one receive window per cycle. A received record is
copied, logged and both the copy and the original are released. Empty
windows feed an escalator: the third raises an alert, the fifth resets the
channel and restarts the count.

The Supervisor waits for either flag, clears what it saw and classifies the
window as OK, producer only, consumer only or failure.

# Watchdog

Each task feeds its own liaison. The consumer only feeds on a received
record unless ConsumerSettings.FeedOnTimeout is set, so sustained
starvation is visible to the watchdog even below the recovery threshold.
*/
package pipeline
