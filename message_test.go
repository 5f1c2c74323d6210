// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq_test

import (
	"testing"

	"code.hybscloud.com/msgq"
	"code.hybscloud.com/msgq/sched"
)

func TestNewMessage(t *testing.T) {
	clock := sched.NewManual(0)
	clock.Advance(17)

	m := msgq.NewMessage(clock, 3, -40)
	if m.ID() != 3 || m.Value() != -40 || m.CreatedAt() != 17 {
		t.Fatalf("NewMessage: got id=%d value=%d tick=%d, want 3 -40 17", m.ID(), m.Value(), m.CreatedAt())
	}
	if got, want := m.String(), "msg{id=3, value=-40, tick=17}"; got != want {
		t.Fatalf("String: got %q, want %q", got, want)
	}

	clock.Advance(8)
	if m.Age(clock) != 8 {
		t.Fatalf("Age: got %d, want 8", m.Age(clock))
	}
	if m.CreatedAt() != 17 {
		t.Fatalf("CreatedAt changed: got %d, want 17", m.CreatedAt())
	}
}

func TestMessageCopiedThroughQueue(t *testing.T) {
	clock := sched.NewManual(0)
	q := msgq.NewMessageQueue(2)

	sent := msgq.NewMessage(clock, 1, 5)
	if err := q.TrySend(sent); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	clock.Advance(50)
	got, err := q.TryReceive()
	if err != nil {
		t.Fatalf("TryReceive: %v", err)
	}
	if got != sent {
		t.Fatalf("TryReceive: got %v, want %v", got, sent)
	}
	if got.CreatedAt() != 0 {
		t.Fatalf("CreatedAt: got %d, want 0", got.CreatedAt())
	}
}
