// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fios

import (
	"time"

	"github.com/fiosemu/fiosemu/internal/logger"
)

// LOCKS_EXCLUDED(l.mu)
func (l *Library) wait(name string, op Op) (int64, bool) {
	l.mu.Lock()
	v, ok := l.registry.Wait(op)
	l.mu.Unlock()

	if !ok {
		logger.Errorf("%s: bad op handle %d", name, op)
		return int64(ErrBadOp), false
	}
	l.metricHandle.PendingResults(-1)
	return v, true
}

// OpWait consumes op's result. Size results are truncated to 32 bits.
func (l *Library) OpWait(op Op) Result {
	v, _ := l.wait("OpWait", op)
	return Result(v)
}

// OpSyncWait is OpWait.
func (l *Library) OpSyncWait(op Op) Result {
	v, _ := l.wait("OpSyncWait", op)
	return Result(v)
}

// OpSyncWaitForIO consumes op's result at full width.
func (l *Library) OpSyncWaitForIO(op Op) Size {
	v, _ := l.wait("OpSyncWaitForIO", op)
	return Size(v)
}

// OpDelete drops op's result. Deleting an unknown op is not an error.
func (l *Library) OpDelete(op Op) Result {
	l.mu.Lock()
	deleted := l.registry.Delete(op)
	l.mu.Unlock()

	if deleted {
		l.metricHandle.PendingResults(-1)
	}
	logger.Tracef("OpDelete: op=%d deleted=%t", op, deleted)
	return OK
}

// OpGetError returns op's status without consuming it. Ops holding a size
// report ErrBadOp.
func (l *Library) OpGetError(op Op) Result {
	l.mu.Lock()
	code, ok := l.registry.GetError(op)
	l.mu.Unlock()

	if !ok {
		logger.Debugf("OpGetError: bad or old op handle %d", op)
		return ErrBadOp
	}
	return code
}

// OpGetActualCount returns op's size without consuming it. Ops holding a
// status report ErrBadOp.
func (l *Library) OpGetActualCount(op Op) Size {
	l.mu.Lock()
	size, ok := l.registry.GetActualCount(op)
	l.mu.Unlock()

	if !ok {
		logger.Warnf("OpGetActualCount: bad op handle %d", op)
		return Size(ErrBadOp)
	}
	return size
}

// OpGetRequestCount reports the recorded size of op, as OpGetActualCount.
func (l *Library) OpGetRequestCount(op Op) Size {
	return l.OpGetActualCount(op)
}

// OpIsDone reports whether op holds an unconsumed result.
func (l *Library) OpIsDone(op Op) bool {
	l.mu.Lock()
	done := l.registry.IsDone(op)
	l.mu.Unlock()

	if !done {
		logger.Errorf("OpIsDone: bad op handle %d", op)
	}
	return done
}

// Pending returns the number of unconsumed results.
func (l *Library) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.registry.Pending()
}

////////////////////////////////////////////////////////////////////////
// Scheduling
////////////////////////////////////////////////////////////////////////

// Requests complete before they return, so there is nothing to cancel,
// reschedule or suspend. These calls are accepted and have no effect.

func (l *Library) OpCancel(op Op) Result {
	logger.Tracef("OpCancel: op=%d", op)
	return OK
}

func (l *Library) CancelAllOps() Result {
	return OK
}

func (l *Library) OpIsCancelled(op Op) bool {
	return false
}

func (l *Library) OpReschedule(op Op, deadline time.Duration) Result {
	return OK
}

func (l *Library) OpRescheduleWithPriority(op Op, deadline time.Duration, priority int8) Result {
	return OK
}

func (l *Library) Suspend() Result {
	return OK
}

func (l *Library) Resume() Result {
	return OK
}

func (l *Library) IsSuspended() bool {
	return false
}

func (l *Library) GetSuspendCount() int32 {
	return 0
}
