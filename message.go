// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq

import (
	"fmt"

	"code.hybscloud.com/msgq/sched"
)

// Message is the record carried between tasks.
//
// A Message is a small value type. Its fields can only be set by
// NewMessage, so once built it never changes; queues copy it in and out
// by value and no two tasks ever share one.
type Message struct {
	id        uint32
	value     int32
	createdAt sched.Tick
}

// NewMessage builds a Message stamped with the current tick of clock.
func NewMessage(clock sched.Clock, id uint32, value int32) Message {
	return Message{id: id, value: value, createdAt: clock.Now()}
}

// ID returns the sender-assigned sequence number.
func (m Message) ID() uint32 { return m.id }

// Value returns the payload.
func (m Message) Value() int32 { return m.value }

// CreatedAt returns the tick at which the message was built.
func (m Message) CreatedAt() sched.Tick { return m.createdAt }

// Age returns the ticks elapsed since the message was built.
func (m Message) Age(clock sched.Clock) sched.Tick {
	return sched.Since(clock, m.createdAt)
}

func (m Message) String() string {
	return fmt.Sprintf("msg{id=%d, value=%d, tick=%d}", m.id, m.value, m.createdAt)
}
