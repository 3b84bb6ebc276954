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

package locker

import (
	"sync"
)

type RWLocker interface {
	sync.Locker
	RLock()
	RUnlock()
}

// NewRW returns a reader/writer locker with the same optional debugging as
// New. Hold-time reporting covers the writer lock only.
func NewRW(name string, check func()) RWLocker {
	var l RWLocker = &sync.RWMutex{}

	if gEnableInvariantsCheck {
		l = &rwChecker{
			RWLocker: l,
			check:    check,
		}
	}

	if gEnableDebugMessages {
		l = &rwDebugger{
			RWLocker: l,
			writer:   debugger{locker: writerOnly{l}, name: name},
		}
	}

	return l
}

type rwChecker struct {
	RWLocker
	check func()
}

func (c *rwChecker) Lock() {
	c.RWLocker.Lock()
	c.check()
}

func (c *rwChecker) Unlock() {
	c.check()
	c.RWLocker.Unlock()
}

func (c *rwChecker) RLock() {
	c.RWLocker.RLock()
	c.check()
}

func (c *rwChecker) RUnlock() {
	c.check()
	c.RWLocker.RUnlock()
}

// writerOnly narrows an RWLocker to its exclusive half.
type writerOnly struct {
	rw RWLocker
}

func (w writerOnly) Lock()   { w.rw.Lock() }
func (w writerOnly) Unlock() { w.rw.Unlock() }

// rwDebugger reports long writer holds. Readers pass straight through.
type rwDebugger struct {
	RWLocker
	writer debugger
}

func (d *rwDebugger) Lock()   { d.writer.Lock() }
func (d *rwDebugger) Unlock() { d.writer.Unlock() }
