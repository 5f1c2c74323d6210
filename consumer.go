// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

import (
	"context"
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/msgq/sched"
	"go.uber.org/zap"
)

// ConsumerOptions configures a Consumer. Start from DefaultConsumerOptions.
type ConsumerOptions struct {
	// ReceiveTimeout bounds each wait for a message. On timeout the
	// consumer simply waits again; the bound only sets how often it
	// wakes up without work. Zero switches to polling with backoff.
	// Default: Forever
	ReceiveTimeout time.Duration

	// Logger receives handler failures and lifecycle events.
	// Default: no-op
	Logger *zap.Logger
}

// DefaultConsumerOptions returns the default consumer options.
func DefaultConsumerOptions() ConsumerOptions {
	return ConsumerOptions{
		ReceiveTimeout: Forever,
		Logger:         zap.NewNop(),
	}
}

// ConsumerStats counts what a Consumer has done.
type ConsumerStats struct {
	Received int64 // Messages taken from the queue
	Handled  int64 // Messages the handler accepted
	Failed   int64 // Messages the handler returned an error for
}

// Consumer is the task that receives Messages and hands each one to a
// Handler. Handler errors are logged and counted; they never stop the
// consumer.
type Consumer struct {
	q    Receiver[Message]
	h    Handler
	opts ConsumerOptions
	log  *zap.Logger

	received atomix.Int64
	handled  atomix.Int64
	failed   atomix.Int64
}

// NewConsumer creates a Consumer receiving from q.
func NewConsumer(q Receiver[Message], h Handler, opts ConsumerOptions) *Consumer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Consumer{
		q:    q,
		h:    h,
		opts: opts,
		log:  opts.Logger.With(zap.String("task", "consumer")),
	}
}

// Run is the task entry point. It returns nil once ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("consumer started", zap.Duration("receive_timeout", c.opts.ReceiveTimeout))
	backoff := iox.Backoff{}
	err := sched.Loop(ctx, func(ctx context.Context) error {
		msg, err := c.receive(ctx)
		switch {
		case err == nil:
			backoff.Reset()
		case IsWouldBlock(err):
			backoff.Wait()
			return nil
		case IsTimeout(err):
			return nil
		default:
			return err
		}
		c.handle(ctx, msg)
		return nil
	})
	c.log.Info("consumer stopped",
		zap.Int64("handled", c.handled.Load()),
		zap.Int64("failed", c.failed.Load()),
	)
	if err != nil {
		return fmt.Errorf("msgq: consumer: %w", err)
	}
	return nil
}

func (c *Consumer) receive(ctx context.Context) (Message, error) {
	if c.opts.ReceiveTimeout == 0 {
		return c.q.TryReceive()
	}
	return c.q.ReceiveContext(ctx, c.opts.ReceiveTimeout)
}

func (c *Consumer) handle(ctx context.Context, msg Message) {
	c.received.Add(1)
	if err := c.h.Handle(ctx, msg); err != nil {
		c.failed.Add(1)
		c.log.Warn("handler failed", zap.Uint32("id", msg.ID()), zap.Error(err))
		return
	}
	c.handled.Add(1)
}

// Stats returns the consumer's counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Received: c.received.Load(),
		Handled:  c.handled.Load(),
		Failed:   c.failed.Load(),
	}
}
