// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"code.hybscloud.com/msgq"
	"code.hybscloud.com/msgq/sched"
)

// =============================================================================
// Bounded - Basic Operations
// =============================================================================

func TestBoundedBasic(t *testing.T) {
	q := msgq.NewBounded[int](3)

	if q.Cap() != 3 {
		t.Fatalf("Cap: got %d, want 3", q.Cap())
	}
	if q.Len() != 0 {
		t.Fatalf("Len: got %d, want 0", q.Len())
	}

	// Fill to capacity
	for i := range 3 {
		if err := q.TrySend(i + 100); err != nil {
			t.Fatalf("TrySend(%d): %v", i, err)
		}
		if q.Len() != i+1 {
			t.Fatalf("Len after %d sends: got %d, want %d", i+1, q.Len(), i+1)
		}
	}

	// Full queue returns ErrFull, which is a would-block condition
	err := q.TrySend(999)
	if !errors.Is(err, msgq.ErrFull) {
		t.Fatalf("TrySend on full: got %v, want ErrFull", err)
	}
	if !errors.Is(err, msgq.ErrWouldBlock) {
		t.Fatalf("ErrFull does not wrap ErrWouldBlock")
	}

	// Receive in FIFO order
	for i := range 3 {
		v, err := q.TryReceive()
		if err != nil {
			t.Fatalf("TryReceive(%d): %v", i, err)
		}
		if v != i+100 {
			t.Fatalf("TryReceive(%d): got %d, want %d", i, v, i+100)
		}
	}

	// Empty queue returns ErrEmpty
	if _, err := q.TryReceive(); !errors.Is(err, msgq.ErrEmpty) {
		t.Fatalf("TryReceive on empty: got %v, want ErrEmpty", err)
	}
}

// TestSingleSlotMessages walks a one-slot mailbox through full and empty.
func TestSingleSlotMessages(t *testing.T) {
	clock := sched.NewManual(0)
	q := msgq.NewMessageQueue(1)

	m1 := msgq.NewMessage(clock, 1, 42)
	m2 := msgq.NewMessage(clock, 2, 7)

	if err := q.Send(m1, msgq.Forever); err != nil {
		t.Fatalf("Send m1: %v", err)
	}
	if err := q.Send(m2, 0); !errors.Is(err, msgq.ErrFull) {
		t.Fatalf("Send m2 on full: got %v, want ErrFull", err)
	}

	got, err := q.Receive(msgq.Forever)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got.ID() != 1 || got.Value() != 42 {
		t.Fatalf("Receive: got %v, want id=1 value=42", got)
	}

	if err := q.Send(m2, msgq.Forever); err != nil {
		t.Fatalf("Send m2: %v", err)
	}
	got, err = q.Receive(msgq.Forever)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got != m2 {
		t.Fatalf("Receive: got %v, want %v", got, m2)
	}
}

func TestWrapAround(t *testing.T) {
	q := msgq.NewBounded[int](3)
	next := 0
	for round := range 10 {
		for range 2 {
			if err := q.TrySend(next); err != nil {
				t.Fatalf("round %d TrySend(%d): %v", round, next, err)
			}
			next++
		}
		for k := range 2 {
			want := next - 2 + k
			v, err := q.TryReceive()
			if err != nil || v != want {
				t.Fatalf("round %d TryReceive: got (%d, %v), want %d", round, v, err, want)
			}
		}
	}
}

func TestZeroValueElement(t *testing.T) {
	q := msgq.NewBounded[msgq.Message](2)
	var zero msgq.Message
	if err := q.TrySend(zero); err != nil {
		t.Fatalf("TrySend zero: %v", err)
	}
	got, err := q.TryReceive()
	if err != nil || got != zero {
		t.Fatalf("TryReceive: got (%v, %v), want zero Message", got, err)
	}
}

func TestPanicOnSmallCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("NewBounded(%d): expected panic", capacity)
				}
			}()
			msgq.NewBounded[int](capacity)
		}()
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("Spin(-1): expected panic")
		}
	}()
	msgq.New(4).Spin(-1)
}

// =============================================================================
// Timeouts
// =============================================================================

func TestSendTimeoutLeavesQueueUnchanged(t *testing.T) {
	q := msgq.NewBounded[int](2)
	_ = q.TrySend(1)
	_ = q.TrySend(2)

	start := time.Now()
	err := q.Send(3, 5*time.Millisecond)
	if !errors.Is(err, msgq.ErrTimeout) {
		t.Fatalf("Send on full: got %v, want ErrTimeout", err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Fatalf("Send returned before its timeout")
	}

	s := q.Stats()
	if s.Len != 2 || s.SendersWaiting != 0 || s.Timeouts != 1 {
		t.Fatalf("Stats after timeout: got %+v", s)
	}
	for want := 1; want <= 2; want++ {
		if v, err := q.TryReceive(); err != nil || v != want {
			t.Fatalf("TryReceive: got (%d, %v), want %d", v, err, want)
		}
	}
}

func TestReceiveTimeout(t *testing.T) {
	q := msgq.NewBounded[int](1)
	if _, err := q.Receive(5 * time.Millisecond); !msgq.IsTimeout(err) {
		t.Fatalf("Receive on empty: got %v, want ErrTimeout", err)
	}
	if s := q.Stats(); s.ReceiversWaiting != 0 {
		t.Fatalf("ReceiversWaiting after timeout: got %d, want 0", s.ReceiversWaiting)
	}

	// The queue still works after a timed-out receiver left.
	_ = q.TrySend(9)
	if v, err := q.TryReceive(); err != nil || v != 9 {
		t.Fatalf("TryReceive: got (%d, %v), want 9", v, err)
	}
}

func TestSpinCountsAgainstTimeout(t *testing.T) {
	// A spin budget far longer than the timeout must not outlast it.
	q := msgq.Build[int](msgq.New(1).Spin(math.MaxInt))
	_ = q.TrySend(1)

	start := time.Now()
	if err := q.Send(2, 20*time.Millisecond); !errors.Is(err, msgq.ErrTimeout) {
		t.Fatalf("Send on full: got %v, want ErrTimeout", err)
	}
	if d := time.Since(start); d < 20*time.Millisecond || d > 2*time.Second {
		t.Fatalf("Send took %v, want about 20ms", d)
	}

	_, _ = q.TryReceive()
	start = time.Now()
	if _, err := q.Receive(20 * time.Millisecond); !errors.Is(err, msgq.ErrTimeout) {
		t.Fatalf("Receive on empty: got %v, want ErrTimeout", err)
	}
	if d := time.Since(start); d < 20*time.Millisecond || d > 2*time.Second {
		t.Fatalf("Receive took %v, want about 20ms", d)
	}

	s := q.Stats()
	if s.Timeouts != 2 || s.SendersWaiting != 0 || s.ReceiversWaiting != 0 {
		t.Fatalf("Stats after timeouts: got %+v", s)
	}
}

func TestCancelledContextCompletesImmediateOps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := msgq.NewBounded[int](1)
	if err := q.SendContext(ctx, 7, msgq.Forever); err != nil {
		t.Fatalf("SendContext with room: got %v, want nil", err)
	}
	if v, err := q.ReceiveContext(ctx, msgq.Forever); err != nil || v != 7 {
		t.Fatalf("ReceiveContext with element: got (%d, %v), want 7", v, err)
	}

	// With nothing to do at once, the same ctx ends the wait.
	if _, err := q.ReceiveContext(ctx, msgq.Forever); !errors.Is(err, context.Canceled) {
		t.Fatalf("ReceiveContext on empty: got %v, want context.Canceled", err)
	}
}

func TestStatsCounters(t *testing.T) {
	q := msgq.NewBounded[int](1)
	_ = q.TrySend(1)
	_ = q.TrySend(2)
	_, _ = q.TryReceive()
	_, _ = q.TryReceive()

	s := q.Stats()
	want := msgq.Stats{Capacity: 1, Sent: 1, Received: 1, Full: 1, Empty: 1}
	if s != want {
		t.Fatalf("Stats: got %+v, want %+v", s, want)
	}
}

// =============================================================================
// Teardown
// =============================================================================

func TestCloseDrains(t *testing.T) {
	q := msgq.NewBounded[int](4)
	for i := range 3 {
		_ = q.TrySend(i)
	}
	_, _ = q.TryReceive()

	rest := q.Close()
	if len(rest) != 2 || rest[0] != 1 || rest[1] != 2 {
		t.Fatalf("Close: got %v, want [1 2]", rest)
	}
	if q.Len() != 0 {
		t.Fatalf("Len after Close: got %d, want 0", q.Len())
	}
	if !q.Stats().Closed {
		t.Fatalf("Stats.Closed: got false, want true")
	}
	if rest := q.Close(); rest != nil {
		t.Fatalf("second Close: got %v, want nil", rest)
	}
}

func TestUseAfterClosePanics(t *testing.T) {
	ops := map[string]func(q *msgq.Bounded[int]){
		"TrySend":    func(q *msgq.Bounded[int]) { _ = q.TrySend(1) },
		"Send":       func(q *msgq.Bounded[int]) { _ = q.Send(1, msgq.Forever) },
		"TryReceive": func(q *msgq.Bounded[int]) { _, _ = q.TryReceive() },
		"Receive":    func(q *msgq.Bounded[int]) { _, _ = q.Receive(time.Second) },
	}
	for name, op := range ops {
		q := msgq.NewBounded[int](1)
		q.Close()
		func() {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, msgq.ErrClosed) {
					t.Fatalf("%s after Close: got panic %v, want ErrClosed", name, r)
				}
			}()
			op(q)
		}()
	}
}
