// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

import "code.hybscloud.com/atomix"

// counters are the queue's monotonically increasing event counts.
// They are only updated with the queue mutex held.
type counters struct {
	sent     atomix.Int64
	received atomix.Int64
	full     atomix.Int64
	empty    atomix.Int64
	timeouts atomix.Int64
}

// Stats is a point-in-time view of a Bounded queue.
type Stats struct {
	Capacity int
	Len      int

	Sent     int64 // Successful sends
	Received int64 // Successful receives
	Full     int64 // Non-blocking sends rejected with ErrFull
	Empty    int64 // Non-blocking receives rejected with ErrEmpty
	Timeouts int64 // Timed waits that expired

	SendersWaiting   int
	ReceiversWaiting int
	Closed           bool
}

// Stats returns a consistent snapshot of the queue's counters and wait
// lists.
func (q *Bounded[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Capacity:         len(q.buf),
		Len:              q.count,
		Sent:             q.stats.sent.Load(),
		Received:         q.stats.received.Load(),
		Full:             q.stats.full.Load(),
		Empty:            q.stats.empty.Load(),
		Timeouts:         q.stats.timeouts.Load(),
		SendersWaiting:   q.senders.len(),
		ReceiversWaiting: q.receivers.len(),
		Closed:           q.closed.LoadAcquire(),
	}
}
