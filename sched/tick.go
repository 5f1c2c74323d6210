// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"context"
	"time"
)

// Tick is a monotonic scheduler tick count.
type Tick uint64

// DefaultTickRate is the tick period of a 1000 Hz scheduler.
const DefaultTickRate = time.Millisecond

// Clock reports the current scheduler tick.
type Clock interface {
	// Now returns the current tick count. Successive calls never decrease.
	Now() Tick
}

// Scheduler is the part of a real-time scheduler that task bodies use.
type Scheduler interface {
	Clock

	// Delay suspends the caller for at least d, or until ctx is done.
	// Returns nil after the full delay, ctx.Err() when interrupted.
	// A non-positive d yields without suspending.
	Delay(ctx context.Context, d time.Duration) error
}

// Since returns the number of ticks elapsed between t and c.Now().
// A t ahead of the clock yields 0.
func Since(c Clock, t Tick) Tick {
	now := c.Now()
	if now < t {
		return 0
	}
	return now - t
}

// Ticks converts n ticks to wall time at the given tick rate.
func Ticks(n Tick, rate time.Duration) time.Duration {
	return time.Duration(n) * rate
}

// DurationToTicks converts d to whole ticks at the given tick rate,
// rounding up so a positive delay always spans at least one tick.
func DurationToTicks(d, rate time.Duration) Tick {
	if d <= 0 || rate <= 0 {
		return 0
	}
	return Tick((d + rate - 1) / rate)
}
