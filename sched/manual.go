// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"context"
	"runtime"
	"time"

	"code.hybscloud.com/atomix"
)

// Manual is a Scheduler whose clock moves only when told to.
//
// Delay advances the clock by the delay's tick count and yields the
// processor instead of sleeping, so periodic loops run at full speed
// while still observing consistent tick stamps.
//
// Manual is safe for concurrent use.
type Manual struct {
	now  atomix.Uint64
	rate time.Duration
}

// NewManual creates a Manual scheduler starting at tick 0.
// A non-positive rate selects DefaultTickRate.
func NewManual(rate time.Duration) *Manual {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &Manual{rate: rate}
}

// Now returns the current tick.
func (m *Manual) Now() Tick {
	return Tick(m.now.LoadAcquire())
}

// Advance moves the clock forward by n ticks and returns the new tick.
func (m *Manual) Advance(n Tick) Tick {
	return Tick(m.now.AddAcqRel(uint64(n)))
}

// Set moves the clock to t. Set never moves the clock backwards.
func (m *Manual) Set(t Tick) {
	for {
		cur := m.now.LoadAcquire()
		if uint64(t) <= cur || m.now.CompareAndSwapAcqRel(cur, uint64(t)) {
			return
		}
	}
}

// TickRate returns the wall time one tick stands for.
func (m *Manual) TickRate() time.Duration {
	return m.rate
}

// Delay advances the clock by d rounded up to whole ticks.
func (m *Manual) Delay(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Advance(DurationToTicks(d, m.rate))
	runtime.Gosched()
	return nil
}
