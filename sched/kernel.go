// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"go.uber.org/zap"
)

// Config configures a Kernel.
type Config struct {
	// TickRate is the wall time of one tick. Default: DefaultTickRate.
	TickRate time.Duration

	// Logger receives task lifecycle events. Default: no-op.
	Logger *zap.Logger
}

// Kernel is a goroutine-backed Scheduler.
//
// The tick count is derived from the monotonic clock since Start, so it
// never drifts under load the way a ticker-incremented counter would.
// Before Start the tick count stays at 0.
type Kernel struct {
	rate time.Duration
	log  *zap.Logger

	start   time.Time
	started atomix.Bool
	stopped atomix.Bool

	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	mu        sync.Mutex
	tasks     []*Handle
	wg        sync.WaitGroup
}

// NewKernel creates a Kernel. Call Start to begin counting ticks.
func NewKernel(cfg Config) *Kernel {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Kernel{
		rate:   cfg.TickRate,
		log:    cfg.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the tick count. Calling Start again has no effect.
func (k *Kernel) Start() {
	k.startOnce.Do(func() {
		k.start = time.Now()
		k.started.StoreRelease(true)
		k.log.Info("kernel started", zap.Duration("tick_rate", k.rate))
	})
}

// Now returns the number of whole ticks since Start.
func (k *Kernel) Now() Tick {
	if !k.started.LoadAcquire() {
		return 0
	}
	return Tick(time.Since(k.start) / k.rate)
}

// TickRate returns the wall time of one tick.
func (k *Kernel) TickRate() time.Duration {
	return k.rate
}

// Delay sleeps for d or until ctx is done.
func (k *Kernel) Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		runtime.Gosched()
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// DelayTicks sleeps for n ticks or until ctx is done.
func (k *Kernel) DelayTicks(ctx context.Context, n Tick) error {
	return k.Delay(ctx, Ticks(n, k.rate))
}

// Spawn starts entry in its own goroutine.
//
// The task's context is cancelled by Handle.Cancel or Shutdown. A panic
// inside entry is recovered and reported by Handle.Wait as an error
// wrapping ErrTaskPanic. Spawning after Shutdown returns a Handle that
// is already done with ErrKernelStopped.
func (k *Kernel) Spawn(spec TaskSpec, entry Task) *Handle {
	ctx, cancel := context.WithCancel(k.ctx)
	h := &Handle{spec: spec, cancel: cancel, done: make(chan struct{})}

	k.mu.Lock()
	if k.stopped.LoadAcquire() {
		k.mu.Unlock()
		cancel()
		h.err = ErrKernelStopped
		close(h.done)
		return h
	}
	k.tasks = append(k.tasks, h)
	k.wg.Add(1)
	k.mu.Unlock()

	log := k.log.With(zap.String("task", spec.Name))
	log.Info("task created",
		zap.Int("priority", int(spec.Priority)),
		zap.Int("stack_size", spec.StackSize),
	)

	go func() {
		defer k.wg.Done()
		defer close(h.done)
		defer cancel()
		h.err = runTask(ctx, spec, entry)
		if h.err != nil {
			log.Error("task failed", zap.Error(h.err))
			return
		}
		log.Info("task exited")
	}()
	return h
}

func runTask(ctx context.Context, spec TaskSpec, entry Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrTaskPanic, spec.Name, r)
		}
	}()
	return entry(ctx)
}

// Shutdown cancels every task and waits for them to return, or for ctx
// to be done. It returns the joined errors of tasks that failed.
func (k *Kernel) Shutdown(ctx context.Context) error {
	k.mu.Lock()
	k.stopped.StoreRelease(true)
	tasks := k.tasks
	k.mu.Unlock()

	k.cancel()

	done := make(chan struct{})
	go func() {
		k.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	var errs []error
	for _, h := range tasks {
		if h.err != nil {
			errs = append(errs, h.err)
		}
	}
	k.log.Info("kernel stopped", zap.Int("tasks", len(tasks)), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}
