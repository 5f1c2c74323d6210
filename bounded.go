// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

import (
	"context"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Bounded is a fixed-capacity FIFO queue safe for any number of senders
// and receivers.
//
// Elements live in a ring buffer guarded by a mutex. Callers that cannot
// proceed park on one of two FIFO wait lists:
//
//   - Parked senders exist only while the buffer is full. Each receive
//     moves the oldest parked sender's element into the freed slot.
//   - Parked receivers exist only while the buffer is empty. Each send
//     hands its element straight to the oldest parked receiver.
//
// Service is therefore strictly in parking order, and a newly arriving
// caller can never overtake a parked one.
//
// Occupancy is mirrored in an atomic so Len and the optional spin phase
// never touch the mutex.
//
// Memory: capacity slots of T plus one small waiter per parked caller.
type Bounded[T any] struct {
	_      pad
	length atomix.Int64 // Mirror of count, lock-free reads
	_      pad
	closed atomix.Bool // Set once by Close
	_      pad

	mu        sync.Mutex
	buf       []T
	head      int
	count     int
	senders   waitList[T]
	receivers waitList[T]

	spins int
	stats counters
}

// NewBounded creates a Bounded queue holding at most capacity elements.
// Capacity is used as given. Panics if capacity < 1.
func NewBounded[T any](capacity int) *Bounded[T] {
	return Build[T](New(capacity))
}

// Send appends elem, waiting for space per timeout.
// A negative timeout waits like Forever.
func (q *Bounded[T]) Send(elem T, timeout time.Duration) error {
	return q.send(context.Background(), elem, timeout)
}

// SendContext is Send that also gives up with ctx.Err() if ctx is done
// while the call is waiting. ctx is not consulted when elem can be
// placed at once, so a send with room succeeds even under a cancelled ctx.
func (q *Bounded[T]) SendContext(ctx context.Context, elem T, timeout time.Duration) error {
	return q.send(ctx, elem, timeout)
}

// TrySend appends elem or returns ErrFull without blocking.
func (q *Bounded[T]) TrySend(elem T) error {
	return q.send(context.Background(), elem, 0)
}

// Receive removes and returns the head element, waiting per timeout.
// A negative timeout waits like Forever.
func (q *Bounded[T]) Receive(timeout time.Duration) (T, error) {
	return q.receive(context.Background(), timeout)
}

// ReceiveContext is Receive that also gives up with ctx.Err() if ctx is
// done while the call is waiting. ctx is not consulted when an element is
// ready, so a receive on a non-empty queue succeeds even under a
// cancelled ctx.
func (q *Bounded[T]) ReceiveContext(ctx context.Context, timeout time.Duration) (T, error) {
	return q.receive(ctx, timeout)
}

// TryReceive removes and returns the head element or returns ErrEmpty
// without blocking.
func (q *Bounded[T]) TryReceive() (T, error) {
	return q.receive(context.Background(), 0)
}

// Len returns the number of buffered elements. The value is advisory
// under concurrent use.
func (q *Bounded[T]) Len() int {
	return int(q.length.Load())
}

// Cap returns the queue capacity.
func (q *Bounded[T]) Cap() int {
	return len(q.buf)
}

// Close tears the queue down and returns the elements still buffered,
// oldest first.
//
// Parked senders and receivers are woken with ErrClosed; a parked sender
// keeps the element it was sending. Any call made after Close panics.
// Calling Close again returns nil.
func (q *Bounded[T]) Close() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed.LoadAcquire() {
		return nil
	}
	q.closed.StoreRelease(true)

	for w := q.senders.pop(); w != nil; w = q.senders.pop() {
		w.wake(ErrClosed)
	}
	for w := q.receivers.pop(); w != nil; w = q.receivers.pop() {
		w.wake(ErrClosed)
	}

	rest := make([]T, 0, q.count)
	var zero T
	for q.count > 0 {
		rest = append(rest, q.buf[q.head])
		q.buf[q.head] = zero
		q.head = (q.head + 1) % len(q.buf)
		q.count--
	}
	q.length.Add(-int64(len(rest)))
	return rest
}

func (q *Bounded[T]) send(ctx context.Context, elem T, timeout time.Duration) error {
	if timeout < 0 {
		timeout = Forever
	}
	spun := q.spins == 0 || timeout == 0
	deadline := deadlineOf(timeout)
	for {
		q.mu.Lock()
		if q.closed.LoadAcquire() {
			q.mu.Unlock()
			usePanic("send")
		}
		if q.offerLocked(elem) {
			q.mu.Unlock()
			return nil
		}
		if timeout == 0 {
			q.stats.full.Add(1)
			q.mu.Unlock()
			return ErrFull
		}
		if !spun {
			q.mu.Unlock()
			spun = true
			q.spinUntil(func() bool { return q.length.Load() < int64(len(q.buf)) }, deadline)
			continue
		}
		left, ok := remaining(timeout, deadline)
		if !ok {
			q.stats.timeouts.Add(1)
			q.mu.Unlock()
			return ErrTimeout
		}

		w := &waiter[T]{elem: elem, ready: make(chan struct{})}
		q.senders.push(w)
		q.mu.Unlock()

		return q.park(ctx, w, &q.senders, left)
	}
}

func (q *Bounded[T]) receive(ctx context.Context, timeout time.Duration) (T, error) {
	if timeout < 0 {
		timeout = Forever
	}
	spun := q.spins == 0 || timeout == 0
	deadline := deadlineOf(timeout)
	for {
		q.mu.Lock()
		if q.closed.LoadAcquire() {
			q.mu.Unlock()
			usePanic("receive")
		}
		if elem, ok := q.pollLocked(); ok {
			q.mu.Unlock()
			return elem, nil
		}
		if timeout == 0 {
			q.stats.empty.Add(1)
			q.mu.Unlock()
			var zero T
			return zero, ErrEmpty
		}
		if !spun {
			q.mu.Unlock()
			spun = true
			q.spinUntil(func() bool { return q.length.Load() > 0 }, deadline)
			continue
		}
		left, ok := remaining(timeout, deadline)
		if !ok {
			q.stats.timeouts.Add(1)
			q.mu.Unlock()
			var zero T
			return zero, ErrTimeout
		}

		w := &waiter[T]{ready: make(chan struct{})}
		q.receivers.push(w)
		q.mu.Unlock()

		if err := q.park(ctx, w, &q.receivers, left); err != nil {
			var zero T
			return zero, err
		}
		return w.elem, nil
	}
}

// offerLocked places elem, preferring a parked receiver.
// Reports false if the buffer is full.
//
// Transfers are counted here and in pollLocked, by whoever completes
// them, so a parked caller has nothing left to update once woken.
func (q *Bounded[T]) offerLocked(elem T) bool {
	// Receivers only park on an empty buffer, so handing off keeps order.
	if r := q.receivers.pop(); r != nil {
		r.elem = elem
		r.wake(nil)
		q.stats.sent.Add(1)
		q.stats.received.Add(1)
		return true
	}
	if q.count == len(q.buf) {
		return false
	}
	q.buf[(q.head+q.count)%len(q.buf)] = elem
	q.count++
	q.length.Add(1)
	q.stats.sent.Add(1)
	return true
}

// pollLocked removes the head element and refills the freed slot from
// the oldest parked sender.
func (q *Bounded[T]) pollLocked() (T, bool) {
	var zero T
	if q.count == 0 {
		return zero, false
	}
	elem := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.stats.received.Add(1)

	if s := q.senders.pop(); s != nil {
		q.buf[(q.head+q.count-1)%len(q.buf)] = s.elem
		s.elem = zero
		s.wake(nil)
		q.stats.sent.Add(1)
		return elem, true
	}
	q.count--
	q.length.Add(-1)
	return elem, true
}

// park waits for w to be serviced, the timeout to expire, or ctx to be
// done. On expiry w is unlinked from list unless it was serviced first.
func (q *Bounded[T]) park(ctx context.Context, w *waiter[T], list *waitList[T], timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout != Forever {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	var err error
	select {
	case <-w.ready:
		return w.err
	case <-expired:
		err = ErrTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if w.done {
		// Serviced between expiry and taking the lock.
		return w.err
	}
	list.remove(w)
	if err == ErrTimeout {
		q.stats.timeouts.Add(1)
	}
	return err
}

// spinUntil stops early once deadline passes; a zero deadline never does.
func (q *Bounded[T]) spinUntil(cond func() bool, deadline time.Time) {
	sw := spin.Wait{}
	for range q.spins {
		if cond() || q.closed.LoadAcquire() {
			return
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return
		}
		sw.Once()
	}
}

// deadlineOf fixes the end of a finite, non-zero timeout when the call
// starts, so that spinning is charged against it.
func deadlineOf(timeout time.Duration) time.Time {
	if timeout <= 0 || timeout == Forever {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

// remaining is the part of timeout still left to park for.
// Reports false once a finite deadline has passed.
func remaining(timeout time.Duration, deadline time.Time) (time.Duration, bool) {
	if deadline.IsZero() {
		return timeout, true
	}
	left := time.Until(deadline)
	return left, left > 0
}
