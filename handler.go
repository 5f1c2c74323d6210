// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"code.hybscloud.com/msgq/sched"
	"go.uber.org/zap"
)

// Handler processes one received Message. The Message is a copy owned
// by the call; a Handler must not keep it past returning unless it
// copies it again.
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(ctx context.Context, msg Message) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// LogHandler logs every message at info level with its latency in ticks.
// clock may be nil, in which case latency is omitted.
func LogHandler(log *zap.Logger, clock sched.Clock) Handler {
	return HandlerFunc(func(_ context.Context, msg Message) error {
		fields := []zap.Field{
			zap.Uint32("id", msg.ID()),
			zap.Int32("value", msg.Value()),
			zap.Uint64("tick", uint64(msg.CreatedAt())),
		}
		if clock != nil {
			fields = append(fields, zap.Uint64("latency_ticks", uint64(msg.Age(clock))))
		}
		log.Info("message received", fields...)
		return nil
	})
}

// Forwarder sends every message on to q, waiting at most timeout.
// A forward that times out is reported as the handler's error.
func Forwarder(q Sender[Message], timeout time.Duration) Handler {
	return HandlerFunc(func(ctx context.Context, msg Message) error {
		if err := q.SendContext(ctx, msg, timeout); err != nil {
			return fmt.Errorf("forward %d: %w", msg.ID(), err)
		}
		return nil
	})
}

// Chain runs handlers in order and stops at the first error.
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(ctx context.Context, msg Message) error {
		for _, h := range handlers {
			if err := h.Handle(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot is the running summary kept by an Aggregator.
type Snapshot struct {
	Count   int64
	Sum     int64
	Min     int32
	Max     int32
	FirstID uint32
	LastID  uint32

	// Missing counts ids skipped between consecutive messages, which is
	// how producer drops show up downstream.
	Missing uint64

	// Reordered counts messages whose id did not advance.
	Reordered uint64

	// MaxLatency is the largest age in ticks seen at receive time.
	MaxLatency sched.Tick
}

// Mean returns Sum/Count, or 0 before the first message.
func (s Snapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Count)
}

// Aggregator is a Handler that summarises the message stream.
// It is safe for concurrent use.
type Aggregator struct {
	clock sched.Clock

	mu   sync.Mutex
	snap Snapshot
}

// NewAggregator creates an Aggregator. clock may be nil, in which case
// latency is not tracked.
func NewAggregator(clock sched.Clock) *Aggregator {
	return &Aggregator{
		clock: clock,
		snap:  Snapshot{Min: math.MaxInt32, Max: math.MinInt32},
	}
}

// Handle folds msg into the summary.
func (a *Aggregator) Handle(_ context.Context, msg Message) error {
	var age sched.Tick
	if a.clock != nil {
		age = msg.Age(a.clock)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s := &a.snap
	switch delta := msg.ID() - s.LastID; {
	case s.Count == 0:
		s.FirstID = msg.ID()
		s.LastID = msg.ID()
	case delta == 0 || delta > math.MaxInt32:
		// Ids are uint32 counters compared by forward distance, so a
		// wraparound still reads as progress.
		s.Reordered++
	default:
		s.Missing += uint64(delta - 1)
		s.LastID = msg.ID()
	}
	s.Count++
	s.Sum += int64(msg.Value())
	s.Min = min(s.Min, msg.Value())
	s.Max = max(s.Max, msg.Value())
	s.MaxLatency = max(s.MaxLatency, age)
	return nil
}

// Snapshot returns a copy of the current summary.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}
