// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package msgq provides a bounded FIFO message queue and the producer and
// consumer tasks that communicate through it.
//
// The package models the classic RTOS inter-task pattern: a periodic
// producer stamps small fixed-size records with the scheduler tick and
// sends them to a fixed-capacity queue, and a consumer receives and
// processes them. The pieces are:
//
//   - [Message]: immutable record of id, value and creation tick
//   - [Bounded]: fixed-capacity queue with blocking, timed and
//     non-blocking send/receive
//   - [Producer]: periodic task building and sending Messages
//   - [Consumer]: task receiving Messages and passing them to a [Handler]
//
// Scheduler services (tick counter, delay, task creation) come from
// package [code.hybscloud.com/msgq/sched].
//
// # Quick Start
//
//	k := sched.NewKernel(sched.Config{})
//	k.Start()
//
//	q := msgq.NewMessageQueue(8)
//	agg := msgq.NewAggregator(k)
//
//	prod := msgq.NewProducer(q, k, msgq.Counter(0, 1), msgq.DefaultProducerOptions())
//	cons := msgq.NewConsumer(q, agg, msgq.DefaultConsumerOptions())
//
//	k.Spawn(sched.TaskSpec{Name: "producer", Priority: 2}, prod.Run)
//	k.Spawn(sched.TaskSpec{Name: "consumer", Priority: 1}, cons.Run)
//
//	// ... later
//	k.Shutdown(ctx)
//	leftover := q.Close()
//
// # Timeouts
//
// Every send and receive takes a timeout:
//
//	q.Send(msg, 0)                     // never block: ErrFull if full
//	q.Send(msg, 10*time.Millisecond)   // wait up to 10ms: ErrTimeout
//	q.Send(msg, msgq.Forever)          // wait until there is space
//	q.SendContext(ctx, msg, msgq.Forever) // ... or until ctx is done
//
// TrySend and TryReceive are the zero-timeout forms. A timeout is a
// normal outcome, not a fault: the queue is left exactly as it was and
// the caller decides whether to retry or drop. The queue never retries
// on its own.
//
// # Ordering and Fairness
//
// Delivery is FIFO: the k-th successful receive returns the k-th
// successfully sent element. Admission is FIFO too: among callers parked
// on a full queue, the one that parked first is serviced first, and the
// same holds for receivers parked on an empty queue. A freed slot is
// handed to the oldest parked sender before anyone else can see it, so
// newcomers cannot overtake parked callers.
//
// # Error Handling
//
// Non-blocking failures wrap [ErrWouldBlock], which is sourced from
// [code.hybscloud.com/iox] for ecosystem consistency:
//
//	msgq.IsWouldBlock(err)  // ErrFull or ErrEmpty
//	msgq.IsTimeout(err)     // ErrTimeout
//	msgq.IsRecoverable(err) // either of the above
//
// # Teardown
//
// [Bounded.Close] returns the elements still buffered, so nothing is lost
// or delivered twice across teardown. Callers parked at that moment get
// [ErrClosed]. Calling any queue operation after Close is a lifecycle bug
// and panics with an error wrapping ErrClosed.
//
// # Length
//
// Len reads an atomic occupancy mirror without locking. Under concurrent
// use the value may be stale by the time the caller acts on it; treat it
// as advisory.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// backoff, [code.hybscloud.com/atomix] for atomic counters,
// [code.hybscloud.com/spin] for the optional spin-before-park phase and
// [go.uber.org/zap] for task logging.
package msgq
