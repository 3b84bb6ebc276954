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

// Package kerneltest provides kernel doubles for tests.
package kerneltest

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/fiosemu/fiosemu/internal/kernel"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

// NewMemory returns an in-memory kernel seeded with files, keyed by absolute
// path. A key ending in "/" creates an empty directory.
func NewMemory(files map[string]string) (kernel.Kernel, error) {
	fs := memfs.New()
	for p, contents := range files {
		if strings.HasSuffix(p, "/") {
			if err := fs.MkdirAll(path.Clean(p), 0755); err != nil {
				return nil, fmt.Errorf("MkdirAll %q: %w", p, err)
			}
			continue
		}
		if err := util.WriteFile(fs, p, []byte(contents), os.FileMode(0644)); err != nil {
			return nil, fmt.Errorf("WriteFile %q: %w", p, err)
		}
	}
	return kernel.NewBilly(fs), nil
}

// CountingKernel wraps a kernel and counts calls per primitive.
type CountingKernel struct {
	Wrapped kernel.Kernel

	mu    sync.Mutex
	calls map[string]int
}

func NewCounting(wrapped kernel.Kernel) *CountingKernel {
	return &CountingKernel{
		Wrapped: wrapped,
		calls:   make(map[string]int),
	}
}

// Calls returns how often the named primitive ("Open", "Stat", ...) ran.
func (c *CountingKernel) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

// Total returns the number of calls across all primitives.
func (c *CountingKernel) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

func (c *CountingKernel) count(name string) {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
}

func (c *CountingKernel) Open(path string, flags kernel.OpenFlag, mode uint32) int32 {
	c.count("Open")
	return c.Wrapped.Open(path, flags, mode)
}

func (c *CountingKernel) Close(fd int32) int32 {
	c.count("Close")
	return c.Wrapped.Close(fd)
}

func (c *CountingKernel) Read(fd int32, buf []byte) int64 {
	c.count("Read")
	return c.Wrapped.Read(fd, buf)
}

func (c *CountingKernel) Readv(fd int32, iov [][]byte) int64 {
	c.count("Readv")
	return c.Wrapped.Readv(fd, iov)
}

func (c *CountingKernel) Pread(fd int32, buf []byte, off int64) int64 {
	c.count("Pread")
	return c.Wrapped.Pread(fd, buf, off)
}

func (c *CountingKernel) Lseek(fd int32, off int64, whence int) int64 {
	c.count("Lseek")
	return c.Wrapped.Lseek(fd, off, whence)
}

func (c *CountingKernel) Stat(path string, st *kernel.Stat) int32 {
	c.count("Stat")
	return c.Wrapped.Stat(path, st)
}

func (c *CountingKernel) Fstat(fd int32, st *kernel.Stat) int32 {
	c.count("Fstat")
	return c.Wrapped.Fstat(fd, st)
}

func (c *CountingKernel) ReadDirEntry(fd int32, ent *kernel.DirEntry) int32 {
	c.count("ReadDirEntry")
	return c.Wrapped.ReadDirEntry(fd, ent)
}
