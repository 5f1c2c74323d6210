// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"context"
	"errors"
)

// ErrStop ends a Loop without reporting a failure.
var ErrStop = errors.New("sched: stop loop")

// Loop runs body until ctx is done or body returns an error.
//
// ctx is checked before every iteration. Loop returns nil when ctx is
// done or body returns ErrStop (or an error wrapping it). A body error
// caused by the cancellation itself (ctx.Err() after ctx is done) also
// counts as a clean exit. Any other error is returned as is.
func Loop(ctx context.Context, body func(ctx context.Context) error) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := body(ctx); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
	}
}
