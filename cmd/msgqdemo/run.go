// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"code.hybscloud.com/msgq"
	"code.hybscloud.com/msgq/internal/config"
	"code.hybscloud.com/msgq/internal/logger"
	"code.hybscloud.com/msgq/sched"
	"go.uber.org/zap"
)

// summary is what a finished run reports.
type summary struct {
	Producer msgq.ProducerStats
	Consumer msgq.ConsumerStats
	Queue    msgq.Stats
	Agg      msgq.Snapshot
	Leftover int
}

func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	log, err := logger.NewWriter(cfg.Logger, out)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	s, err := runTasks(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.Info("run finished",
		zap.Int64("produced", s.Producer.Produced),
		zap.Int64("sent", s.Producer.Sent),
		zap.Int64("dropped", s.Producer.Dropped),
		zap.Int64("handled", s.Consumer.Handled),
		zap.Int64("failed", s.Consumer.Failed),
		zap.Int64("queue_timeouts", s.Queue.Timeouts),
		zap.Int("leftover", s.Leftover),
		zap.Int64("count", s.Agg.Count),
		zap.Float64("mean", s.Agg.Mean()),
		zap.Uint64("missing_ids", s.Agg.Missing),
		zap.Uint64("max_latency_ticks", uint64(s.Agg.MaxLatency)),
	)
	return nil
}

// runTasks spawns the producer and consumer, waits for ctx or the
// configured duration, then tears everything down.
func runTasks(ctx context.Context, cfg config.Config, log *zap.Logger) (summary, error) {
	overflow, err := msgq.ParseOverflowPolicy(cfg.Producer.Overflow)
	if err != nil {
		return summary{}, err
	}

	k := sched.NewKernel(sched.Config{TickRate: cfg.Scheduler.TickRate, Logger: log})
	k.Start()

	q := msgq.Build[msgq.Message](msgq.New(cfg.Queue.Capacity).Spin(cfg.Queue.Spin))
	agg := msgq.NewAggregator(k)

	prod := msgq.NewProducer(q, k, valueSource(cfg.Producer), msgq.ProducerOptions{
		Period:      cfg.Producer.Period,
		SendTimeout: cfg.Producer.SendTimeout,
		Overflow:    overflow,
		FirstID:     cfg.Producer.FirstID,
		Logger:      log,
	})
	cons := msgq.NewConsumer(q, handler(cfg.Consumer.Handler, log, k, agg), msgq.ConsumerOptions{
		ReceiveTimeout: cfg.Consumer.ReceiveTimeout,
		Logger:         log,
	})

	k.Spawn(taskSpec("producer", cfg.Producer.Task), prod.Run)
	k.Spawn(taskSpec("consumer", cfg.Consumer.Task), cons.Run)

	if cfg.Run.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Run.Duration)
		defer cancel()
	}
	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Run.ShutdownTimeout)
	defer cancel()
	if err := k.Shutdown(sctx); err != nil {
		return summary{}, fmt.Errorf("shutdown: %w", err)
	}

	leftover := q.Close()
	for _, m := range leftover {
		log.Info("undelivered message", zap.Stringer("msg", m))
	}
	return summary{
		Producer: prod.Stats(),
		Consumer: cons.Stats(),
		Queue:    q.Stats(),
		Agg:      agg.Snapshot(),
		Leftover: len(leftover),
	}, nil
}

func taskSpec(name string, t config.Task) sched.TaskSpec {
	return sched.TaskSpec{Name: name, StackSize: t.StackSize, Priority: sched.Priority(t.Priority)}
}

func valueSource(p config.Producer) msgq.ValueSource {
	if p.Source == "random" {
		return msgq.Random(p.Seed, p.Min, p.Max)
	}
	return msgq.Counter(0, 1)
}

func handler(name string, log *zap.Logger, clock sched.Clock, agg *msgq.Aggregator) msgq.Handler {
	switch name {
	case "log":
		return msgq.LogHandler(log, clock)
	case "both":
		return msgq.Chain(msgq.LogHandler(log, clock), agg)
	default:
		return agg
	}
}

