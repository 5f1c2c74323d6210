// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/msgq/sched"
	"go.uber.org/zap"
)

// OverflowPolicy decides what a Producer does when the queue stays full.
type OverflowPolicy int

const (
	// OverflowDrop waits up to SendTimeout, then drops the message.
	OverflowDrop OverflowPolicy = iota

	// OverflowBlock waits until there is space or the task is cancelled.
	OverflowBlock
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowDrop:
		return "drop"
	case OverflowBlock:
		return "block"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy parses "drop" or "block", case-insensitively.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop", "":
		return OverflowDrop, nil
	case "block":
		return OverflowBlock, nil
	default:
		return 0, fmt.Errorf("msgq: unknown overflow policy %q", s)
	}
}

// ValueSource supplies message payloads. A source is used by one
// Producer at a time and need not be safe for concurrent use.
type ValueSource interface {
	Next() int32
}

// ValueFunc adapts a function to a ValueSource, e.g. a sensor read.
type ValueFunc func() int32

// Next calls f.
func (f ValueFunc) Next() int32 { return f() }

// Counter returns a source yielding start, start+step, start+2*step, ...
// wrapping on overflow.
func Counter(start, step int32) ValueSource {
	next := start
	return ValueFunc(func() int32 {
		v := next
		next += step
		return v
	})
}

// Random returns a seeded source of values uniformly drawn from [lo, hi].
// Panics if lo > hi.
func Random(seed uint64, lo, hi int32) ValueSource {
	if lo > hi {
		panic("msgq: Random requires lo <= hi")
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	span := uint64(int64(hi)-int64(lo)) + 1
	return ValueFunc(func() int32 {
		return int32(int64(lo) + int64(r.Uint64N(span)))
	})
}

// ProducerOptions configures a Producer. Start from DefaultProducerOptions.
type ProducerOptions struct {
	// Period is the delay between two messages.
	// Default: 100ms
	Period time.Duration

	// SendTimeout bounds how long a send waits for space under
	// OverflowDrop. Zero drops immediately when the queue is full.
	// Default: 10ms
	SendTimeout time.Duration

	// Overflow selects drop-after-timeout or block-until-space.
	// Default: OverflowDrop
	Overflow OverflowPolicy

	// FirstID is the id of the first message.
	// Default: 1
	FirstID uint32

	// Logger receives drop and lifecycle events.
	// Default: no-op
	Logger *zap.Logger
}

// DefaultProducerOptions returns the default producer options.
func DefaultProducerOptions() ProducerOptions {
	return ProducerOptions{
		Period:      100 * time.Millisecond,
		SendTimeout: 10 * time.Millisecond,
		Overflow:    OverflowDrop,
		FirstID:     1,
		Logger:      zap.NewNop(),
	}
}

// ProducerStats counts what a Producer has done.
type ProducerStats struct {
	Produced int64 // Messages built
	Sent     int64 // Messages accepted by the queue
	Dropped  int64 // Messages that never reached the queue
}

// Producer is the periodic task that builds Messages and sends them.
//
// Every iteration builds one Message with the next id, the next payload
// and the current tick, sends it according to the overflow policy and
// then delays for Period. Ids advance per built message, so a dropped
// message leaves a gap the consumer can see.
type Producer struct {
	q    Sender[Message]
	s    sched.Scheduler
	src  ValueSource
	opts ProducerOptions
	log  *zap.Logger

	nextID uint32 // Owned by Run

	produced atomix.Int64
	sent     atomix.Int64
	dropped  atomix.Int64
}

// NewProducer creates a Producer sending to q, stamping messages with s.
func NewProducer(q Sender[Message], s sched.Scheduler, src ValueSource, opts ProducerOptions) *Producer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Producer{
		q:      q,
		s:      s,
		src:    src,
		opts:   opts,
		log:    opts.Logger.With(zap.String("task", "producer")),
		nextID: opts.FirstID,
	}
}

// Run is the task entry point. It returns nil once ctx is done, or an
// error if the queue reports something other than a timeout or a full
// queue. Run must not be called concurrently with itself.
func (p *Producer) Run(ctx context.Context) error {
	p.log.Info("producer started",
		zap.Duration("period", p.opts.Period),
		zap.Stringer("overflow", p.opts.Overflow),
	)
	err := sched.Loop(ctx, p.step)
	p.log.Info("producer stopped",
		zap.Int64("sent", p.sent.Load()),
		zap.Int64("dropped", p.dropped.Load()),
	)
	if err != nil {
		return fmt.Errorf("msgq: producer: %w", err)
	}
	return nil
}

func (p *Producer) step(ctx context.Context) error {
	msg := NewMessage(p.s, p.nextID, p.src.Next())
	p.nextID++
	p.produced.Add(1)

	err := p.send(ctx, msg)
	switch {
	case err == nil:
		p.sent.Add(1)
	case IsRecoverable(err):
		p.dropped.Add(1)
		p.log.Debug("message dropped", zap.Uint32("id", msg.ID()), zap.Error(err))
	default:
		// Cancelled mid-send or a queue fault; the message is lost
		// either way.
		p.dropped.Add(1)
		return err
	}
	return p.s.Delay(ctx, p.opts.Period)
}

func (p *Producer) send(ctx context.Context, msg Message) error {
	if p.opts.Overflow == OverflowBlock {
		return p.q.SendContext(ctx, msg, Forever)
	}
	return p.q.SendContext(ctx, msg, p.opts.SendTimeout)
}

// Stats returns the producer's counters.
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		Produced: p.produced.Load(),
		Sent:     p.sent.Load(),
		Dropped:  p.dropped.Load(),
	}
}
