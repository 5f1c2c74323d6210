// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// ErrWouldBlock is a control flow signal, not a failure. It is never
// returned bare: ErrFull and ErrEmpty wrap it so callers can test either
// the specific condition or the general one.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

var (
	// ErrFull is returned by a non-blocking send on a full queue.
	ErrFull = fmt.Errorf("msgq: queue full: %w", ErrWouldBlock)

	// ErrEmpty is returned by a non-blocking receive on an empty queue.
	ErrEmpty = fmt.Errorf("msgq: queue empty: %w", ErrWouldBlock)

	// ErrTimeout is returned when a timed send or receive gives up.
	// The queue is left unchanged.
	ErrTimeout = errors.New("msgq: timed out")

	// ErrClosed reports use of a queue after Close.
	//
	// Calls made after Close panic with an error wrapping ErrClosed.
	// Calls already parked when Close runs return ErrClosed instead, and
	// keep ownership of the element they were sending.
	ErrClosed = errors.New("msgq: queue closed")
)

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsTimeout reports whether err is, or wraps, ErrTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsRecoverable reports whether err is an expected outcome under load:
// a would-block condition or a timeout. The caller decides whether to
// retry or drop.
func IsRecoverable(err error) bool {
	return IsWouldBlock(err) || IsTimeout(err)
}

// IsNonFailure reports whether err is nil or recoverable.
func IsNonFailure(err error) bool {
	return err == nil || IsRecoverable(err)
}

// usePanic panics with an error wrapping ErrClosed.
func usePanic(op string) {
	panic(fmt.Errorf("%w: %s after Close", ErrClosed, op))
}
