// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

import (
	"context"
	"time"
)

// Forever is a timeout that never expires.
const Forever time.Duration = 1<<63 - 1

// Queue is the combined sender-receiver interface for a bounded FIFO.
//
// Example:
//
//	q := msgq.NewBounded[msgq.Message](8)
//
//	// Send, waiting at most 10ms for space
//	if err := q.Send(msg, 10*time.Millisecond); msgq.IsTimeout(err) {
//	    // Drop or retry
//	}
//
//	// Receive, waiting as long as it takes
//	msg, err := q.Receive(msgq.Forever)
type Queue[T any] interface {
	Sender[T]
	Receiver[T]
	Len() int
	Cap() int
}

// Sender is the interface for sending elements.
//
// Elements are copied into the queue. The timeout is interpreted as:
//
//   - 0: never block; return ErrFull if there is no space
//   - Forever: wait until there is space
//   - otherwise: wait at most timeout, then return ErrTimeout
type Sender[T any] interface {
	// Send appends elem at the tail, waiting for space per timeout.
	Send(elem T, timeout time.Duration) error

	// SendContext is Send that also gives up with ctx.Err() if ctx is
	// done while waiting. A send that can complete at once succeeds
	// even when ctx is already cancelled.
	SendContext(ctx context.Context, elem T, timeout time.Duration) error

	// TrySend is Send with a zero timeout.
	TrySend(elem T) error
}

// Receiver is the interface for receiving elements.
//
// Elements are returned by value and the slot they occupied is cleared.
// The timeout is interpreted as for Sender, with ErrEmpty in place of
// ErrFull.
type Receiver[T any] interface {
	// Receive removes and returns the head element, waiting per timeout.
	Receive(timeout time.Duration) (T, error)

	// ReceiveContext is Receive that also gives up with ctx.Err() if ctx
	// is done while waiting. A receive that can complete at once
	// succeeds even when ctx is already cancelled.
	ReceiveContext(ctx context.Context, timeout time.Duration) (T, error)

	// TryReceive is Receive with a zero timeout.
	TryReceive() (T, error)
}
