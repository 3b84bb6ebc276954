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

package replay

import (
	"context"
	"fmt"

	"github.com/fiosemu/fiosemu/internal/fios"
	"github.com/fiosemu/fiosemu/internal/logger"
)

// Outcome is the value consumed by one wait step.
type Outcome struct {
	Step  int    `yaml:"step"`
	Label string `yaml:"label"`
	Value int64  `yaml:"value"`

	// Name of a negative value that is a known result code.
	Result string `yaml:"result,omitempty"`

	// Entry path of a successful dh-read.
	Path string `yaml:"path,omitempty"`
}

type runner struct {
	lib *fios.Library

	handles map[string]fios.Handle
	ops     map[string]fios.Op
	entries map[string]*fios.DirEntry
}

// Run executes s against lib and returns the outcomes of its wait steps in
// order. It stops early when ctx is done.
func Run(ctx context.Context, lib *fios.Library, s *Script) ([]Outcome, error) {
	r := &runner{
		lib:     lib,
		handles: make(map[string]fios.Handle),
		ops:     make(map[string]fios.Op),
		entries: make(map[string]*fios.DirEntry),
	}

	var outcomes []Outcome
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, fmt.Errorf("replay %q stopped at step %d: %w", s.Name, i, err)
		}

		switch st.Op {
		case OpWait:
			outcomes = append(outcomes, r.wait(i, st.Target))
		case OpDelete:
			lib.OpDelete(r.ops[st.Target])
			delete(r.ops, st.Target)
			delete(r.entries, st.Target)
		default:
			op := r.start(ctx, st)
			if st.Label != "" {
				r.ops[st.Label] = op
			}
		}
	}
	return outcomes, nil
}

func (r *runner) wait(i int, label string) Outcome {
	op, ok := r.ops[label]
	if !ok {
		// Consumed by an earlier wait; the library reports a bad op.
		op = 0
	}
	delete(r.ops, label)

	v := r.lib.OpSyncWaitForIO(op)
	o := Outcome{Step: i, Label: label, Value: int64(v)}
	if v < 0 {
		o.Result = fios.Result(v).String()
	}
	if ent := r.entries[label]; ent != nil && v == 0 {
		o.Path = ent.FullPath
	}
	delete(r.entries, label)
	return o
}

func (r *runner) start(ctx context.Context, st Step) fios.Op {
	lib := r.lib
	h := r.handles[st.Handle]

	switch st.Op {
	case OpOpen:
		fh, op := lib.FHOpen(ctx, nil, st.Path, nil)
		r.handles[st.Bind] = fh
		return op
	case OpRead:
		return lib.FHRead(ctx, nil, h, make([]byte, st.Size))
	case OpPread:
		return lib.FHPread(ctx, nil, h, make([]byte, st.Size), fios.Offset(st.Offset))
	case OpReadv:
		iov := make([][]byte, len(st.Sizes))
		for i, n := range st.Sizes {
			iov[i] = make([]byte, n)
		}
		return lib.FHReadv(ctx, nil, h, iov)
	case OpClose:
		return lib.FHClose(ctx, nil, h)
	case OpStat:
		return lib.Stat(ctx, nil, st.Path, &fios.Stat{})
	case OpExists:
		_, op := lib.Exists(ctx, nil, st.Path)
		return op
	case OpSize:
		return lib.FileGetSize(ctx, nil, st.Path)
	case OpFileRead:
		return lib.FileRead(ctx, nil, st.Path, make([]byte, st.Size), fios.Offset(st.Offset))
	case OpDHOpen:
		dh, op := lib.DHOpen(ctx, nil, st.Path)
		r.handles[st.Bind] = dh
		return op
	case OpDHRead:
		ent := &fios.DirEntry{}
		op := lib.DHRead(ctx, nil, h, ent)
		if st.Label != "" {
			r.entries[st.Label] = ent
		}
		return op
	case OpDHClose:
		return lib.DHClose(ctx, nil, h)
	}

	logger.Errorf("replay: unexpected op %q", st.Op)
	return 0
}
