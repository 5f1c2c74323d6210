// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"context"
	"errors"
)

var (
	// ErrKernelStopped is reported by tasks spawned after Shutdown.
	ErrKernelStopped = errors.New("sched: kernel stopped")

	// ErrTaskPanic wraps the value recovered from a panicking task.
	ErrTaskPanic = errors.New("sched: task panicked")
)

// Task is a task entry point. It runs until ctx is done or it returns.
type Task func(ctx context.Context) error

// Priority is a task priority; higher runs first on a fixed-priority RTOS.
type Priority int

// TaskSpec describes a task the way create_task does on an RTOS.
type TaskSpec struct {
	Name      string
	StackSize int // bytes; advisory
	Priority  Priority
}

// Handle controls a spawned task.
type Handle struct {
	spec   TaskSpec
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Spec returns the TaskSpec the task was spawned with.
func (h *Handle) Spec() TaskSpec {
	return h.spec
}

// Cancel asks the task to stop. It does not wait.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed when the task has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task has returned and reports its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}
