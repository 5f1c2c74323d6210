// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msgq_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/msgq"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wouldBlock  bool
		timeout     bool
		recoverable bool
		nonFailure  bool
	}{
		{"nil", nil, false, false, false, true},
		{"full", msgq.ErrFull, true, false, true, true},
		{"empty", msgq.ErrEmpty, true, false, true, true},
		{"timeout", msgq.ErrTimeout, false, true, true, true},
		{"wrapped timeout", fmt.Errorf("send 3: %w", msgq.ErrTimeout), false, true, true, true},
		{"wrapped full", fmt.Errorf("forward 3: %w", msgq.ErrFull), true, false, true, true},
		{"closed", msgq.ErrClosed, false, false, false, false},
		{"cancelled", context.Canceled, false, false, false, false},
	}
	for tt := range slices.Values(tests) {
		if got := msgq.IsWouldBlock(tt.err); got != tt.wouldBlock {
			t.Fatalf("%s: IsWouldBlock: got %v, want %v", tt.name, got, tt.wouldBlock)
		}
		if got := msgq.IsTimeout(tt.err); got != tt.timeout {
			t.Fatalf("%s: IsTimeout: got %v, want %v", tt.name, got, tt.timeout)
		}
		if got := msgq.IsRecoverable(tt.err); got != tt.recoverable {
			t.Fatalf("%s: IsRecoverable: got %v, want %v", tt.name, got, tt.recoverable)
		}
		if got := msgq.IsNonFailure(tt.err); got != tt.nonFailure {
			t.Fatalf("%s: IsNonFailure: got %v, want %v", tt.name, got, tt.nonFailure)
		}
	}
}

func TestErrWouldBlockIsIox(t *testing.T) {
	if msgq.ErrWouldBlock != iox.ErrWouldBlock {
		t.Fatalf("ErrWouldBlock is not iox.ErrWouldBlock")
	}
	for _, err := range []error{msgq.ErrFull, msgq.ErrEmpty} {
		if !errors.Is(err, iox.ErrWouldBlock) {
			t.Fatalf("%v does not wrap iox.ErrWouldBlock", err)
		}
	}
	if errors.Is(msgq.ErrFull, msgq.ErrEmpty) {
		t.Fatalf("ErrFull matches ErrEmpty")
	}
}
