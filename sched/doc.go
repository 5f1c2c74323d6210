// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sched models the real-time scheduler that msgq tasks run under.
//
// The core only needs three things from a scheduler: a monotonic tick
// counter, a cooperative delay, and a way to start task entry points.
// [Clock] and [Scheduler] capture the first two; [Kernel] adds task
// creation on top of goroutines.
//
// Two implementations are provided:
//
//   - [Kernel]: ticks advance in real time at a fixed TickRate (1ms by
//     default, a 1000 Hz tick). Tasks run as goroutines with cooperative
//     cancellation.
//   - [Manual]: ticks advance only through Advance or Delay. Loops driven
//     by Manual never sleep, which makes them deterministic in tests.
//
// # Task Bodies
//
// A task body is a [Task], a func(ctx) error. Long-running bodies are
// written with [Loop], which checks ctx once per iteration:
//
//	k := sched.NewKernel(sched.Config{})
//	k.Start()
//	defer k.Shutdown(context.Background())
//
//	h := k.Spawn(sched.TaskSpec{Name: "blink", Priority: 1}, func(ctx context.Context) error {
//	    return sched.Loop(ctx, func(ctx context.Context) error {
//	        toggle()
//	        return k.Delay(ctx, 500*time.Millisecond)
//	    })
//	})
//
// # Priorities and Stacks
//
// TaskSpec carries Priority and StackSize so that code written against a
// fixed-priority RTOS keeps its task table. The Go runtime grows goroutine
// stacks on demand and has no task priorities; both values are recorded
// and logged, nothing more.
package sched
