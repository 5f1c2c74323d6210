// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

// waiter is a caller parked on a Bounded queue.
//
// All fields except ready are guarded by the queue mutex. The waker sets
// elem/err and done before closing ready, so a waiter that observes
// ready closed may read them without the lock.
type waiter[T any] struct {
	elem  T
	err   error
	done  bool
	ready chan struct{}

	prev, next *waiter[T]
}

// waitList is an intrusive FIFO of parked callers.
type waitList[T any] struct {
	head, tail *waiter[T]
	n          int
}

func (l *waitList[T]) push(w *waiter[T]) {
	w.prev = l.tail
	w.next = nil
	if l.tail == nil {
		l.head = w
	} else {
		l.tail.next = w
	}
	l.tail = w
	l.n++
}

// pop unlinks and returns the oldest waiter, or nil.
func (l *waitList[T]) pop() *waiter[T] {
	w := l.head
	if w != nil {
		l.remove(w)
	}
	return w
}

// remove unlinks w. w must be on l.
func (l *waitList[T]) remove(w *waiter[T]) {
	if w.prev == nil {
		l.head = w.next
	} else {
		w.prev.next = w.next
	}
	if w.next == nil {
		l.tail = w.prev
	} else {
		w.next.prev = w.prev
	}
	w.prev, w.next = nil, nil
	l.n--
}

func (l *waitList[T]) len() int {
	return l.n
}

// wake completes w with err. Caller holds the queue mutex and has
// already unlinked w.
func (w *waiter[T]) wake(err error) {
	w.err = err
	w.done = true
	close(w.ready)
}
