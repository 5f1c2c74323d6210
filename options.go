// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

// Options configures queue creation.
type Options struct {
	// Exact number of elements the queue holds
	capacity int

	// Spin iterations before parking (0 = park immediately)
	spins int
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Plain queue of 8 messages
//	q := msgq.Build[msgq.Message](msgq.New(8))
//
//	// Spin briefly before parking; useful when sender and receiver
//	// run on separate cores and hand-offs are frequent
//	q := msgq.Build[msgq.Message](msgq.New(64).Spin(128))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Unlike power-of-two ring buffers, capacity is used exactly as given,
// so a capacity of 1 yields a single-slot mailbox.
//
// Panics if capacity < 1.
func New(capacity int) *Builder {
	if capacity < 1 {
		panic("msgq: capacity must be >= 1")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// Spin sets how many times a would-block caller re-checks occupancy,
// pausing the CPU between checks, before it parks. Spinning callers are
// not yet parked and have no place in the FIFO admission order.
// Time spent spinning counts against the caller's timeout.
//
// Panics if n < 0.
func (b *Builder) Spin(n int) *Builder {
	if n < 0 {
		panic("msgq: spin count must be >= 0")
	}
	b.opts.spins = n
	return b
}

// Build creates a Bounded[T] from the builder's options.
func Build[T any](b *Builder) *Bounded[T] {
	return &Bounded[T]{
		buf:   make([]T, b.opts.capacity),
		spins: b.opts.spins,
	}
}

// MessageQueue is the Bounded queue of Messages shared by a Producer and
// a Consumer.
type MessageQueue = Bounded[Message]

// NewMessageQueue creates a MessageQueue holding at most capacity messages.
func NewMessageQueue(capacity int) *MessageQueue {
	return NewBounded[Message](capacity)
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte
