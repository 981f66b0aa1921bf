// Package record defines the pipeline's unit of data and the pool that
// enforces exclusive ownership of it.
//
// A Record is owned by exactly one stage at a time: the producer while it
// is generated, the channel slot while in transit, the consumer while it is
// processed. Whoever owns it last releases it to the Pool. The pool counts
// allocations and releases, rejects a second release of the same record and
// can be given a live budget to exercise allocation failure.
package record
