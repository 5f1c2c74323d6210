// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq_test

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"code.hybscloud.com/msgq"
	"code.hybscloud.com/msgq/sched"
)

// =============================================================================
// Uncontended
// =============================================================================

func BenchmarkBounded_SingleOp(b *testing.B) {
	q := msgq.NewBounded[int](1024)

	b.ResetTimer()
	for i := range b.N {
		_ = q.TrySend(i)
		_, _ = q.TryReceive()
	}
}

func BenchmarkMessageQueue_SingleOp(b *testing.B) {
	q := msgq.NewMessageQueue(5)
	clock := sched.NewManual(0)

	b.ResetTimer()
	for i := range b.N {
		_ = q.TrySend(msgq.NewMessage(clock, uint32(i), int32(i)))
		_, _ = q.TryReceive()
	}
}

// =============================================================================
// Blocking Producer/Consumer
// =============================================================================

// benchmarkPipeline moves b.N elements from numP blocking senders to
// numC blocking receivers through q.
func benchmarkPipeline(b *testing.B, q *msgq.Bounded[int], numP, numC int) {
	opsPerProducer := max(b.N/numP, 1)
	total := opsPerProducer * numP

	b.ResetTimer()

	var wg sync.WaitGroup
	for c := range numC {
		share := total / numC
		if c == 0 {
			share += total % numC
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range share {
				if _, err := q.Receive(msgq.Forever); err != nil {
					b.Error(err)
					return
				}
			}
		}()
	}
	for p := range numP {
		wg.Add(1)
		go func() {
			defer wg.Done()
			base := p * opsPerProducer
			for i := range opsPerProducer {
				if err := q.Send(base+i, msgq.Forever); err != nil {
					b.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkBounded_Pipeline(b *testing.B) {
	procs := max(runtime.GOMAXPROCS(0)/2, 1)
	for _, capacity := range []int{1, 5, 64} {
		b.Run(fmt.Sprintf("cap=%d/1x1", capacity), func(b *testing.B) {
			benchmarkPipeline(b, msgq.NewBounded[int](capacity), 1, 1)
		})
		b.Run(fmt.Sprintf("cap=%d/%dx%d", capacity, procs, procs), func(b *testing.B) {
			benchmarkPipeline(b, msgq.NewBounded[int](capacity), procs, procs)
		})
	}
}

func BenchmarkBounded_PipelineSpin(b *testing.B) {
	for _, spins := range []int{0, 64, 512} {
		b.Run(fmt.Sprintf("spin=%d", spins), func(b *testing.B) {
			benchmarkPipeline(b, msgq.Build[int](msgq.New(64).Spin(spins)), 1, 1)
		})
	}
}
