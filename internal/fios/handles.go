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
	"fmt"

	"github.com/fiosemu/fiosemu/internal/kernel"
)

// handleTable maps live handles to the virtual path they were opened with.
type handleTable struct {
	// INVARIANT: For each k, k >= 0
	paths map[Handle]string
}

func newHandleTable() handleTable {
	return handleTable{paths: make(map[Handle]string)}
}

func (t *handleTable) checkInvariants() {
	for h := range t.paths {
		if h < 0 {
			panic(fmt.Sprintf("negative handle %d in path table", h))
		}
	}
}

func (t *handleTable) add(h Handle, virtual string) {
	t.paths[h] = virtual
}

func (t *handleTable) remove(h Handle) {
	delete(t.paths, h)
}

func (t *handleTable) path(h Handle) (string, bool) {
	p, ok := t.paths[h]
	return p, ok
}

type existenceEntry struct {
	exists bool
	stat   kernel.Stat
}

// existenceCache remembers the stat verdict of translated paths. Entries are
// never invalidated, so later changes to the backend are not observed.
type existenceCache struct {
	entries map[string]existenceEntry
}

func newExistenceCache() existenceCache {
	return existenceCache{entries: make(map[string]existenceEntry)}
}

func (c *existenceCache) lookup(p string) (existenceEntry, bool) {
	e, ok := c.entries[p]
	return e, ok
}

func (c *existenceCache) store(p string, e existenceEntry) {
	c.entries[p] = e
}
