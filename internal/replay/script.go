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

// Package replay runs scripted request sequences against a Library.
//
// A script is a YAML document:
//
//	name: load-level
//	steps:
//	  - {op: open, path: /app0/data/level1.bin, bind: level, label: opened}
//	  - {op: wait, target: opened}
//	  - {op: read, handle: level, size: 4096, label: chunk}
//	  - {op: wait, target: chunk}
//	  - {op: close, handle: level}
//
// Every step except wait and delete starts one asynchronous request. A
// labelled request can later be waited on or deleted; unlabelled ones stay
// pending.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	OpOpen     = "open"
	OpRead     = "read"
	OpPread    = "pread"
	OpReadv    = "readv"
	OpClose    = "close"
	OpStat     = "stat"
	OpExists   = "exists"
	OpSize     = "size"
	OpFileRead = "file-read"
	OpDHOpen   = "dh-open"
	OpDHRead   = "dh-read"
	OpDHClose  = "dh-close"
	OpWait     = "wait"
	OpDelete   = "delete"
)

type Step struct {
	Op string `yaml:"op"`

	// Virtual path of path-based requests.
	Path string `yaml:"path,omitempty"`

	// Name under which open and dh-open bind the handle they return.
	Bind string `yaml:"bind,omitempty"`

	// Name of a handle bound by an earlier step.
	Handle string `yaml:"handle,omitempty"`

	// Name of the request this step starts.
	Label string `yaml:"label,omitempty"`

	// Label waited on or deleted.
	Target string `yaml:"target,omitempty"`

	// Buffer length of read, pread and file-read.
	Size int `yaml:"size,omitempty"`

	// Buffer lengths of readv.
	Sizes []int `yaml:"sizes,omitempty"`

	Offset int64 `yaml:"offset,omitempty"`
}

type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Parse decodes a script. Unknown fields are rejected.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return Parse(data)
}

// StepError reports an invalid step.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

var (
	ErrUnknownOp     = errors.New("unknown op")
	ErrMissingField  = errors.New("missing field")
	ErrUnboundHandle = errors.New("handle not bound by an earlier step")
	ErrUnknownTarget = errors.New("target not labelled by an earlier step")
	ErrDuplicateName = errors.New("name already used")
)

func needsPath(op string) bool {
	switch op {
	case OpOpen, OpStat, OpExists, OpSize, OpFileRead, OpDHOpen:
		return true
	}
	return false
}

func needsHandle(op string) bool {
	switch op {
	case OpRead, OpPread, OpReadv, OpClose, OpDHRead, OpDHClose:
		return true
	}
	return false
}

// Validate checks that every step is well formed and only refers to names
// introduced by earlier steps.
func (s *Script) Validate() error {
	bound := make(map[string]bool)
	labelled := make(map[string]bool)

	for i, st := range s.Steps {
		fail := func(err error) error {
			return &StepError{Index: i, Op: st.Op, Err: err}
		}

		switch st.Op {
		case OpOpen, OpRead, OpPread, OpReadv, OpClose, OpStat, OpExists,
			OpSize, OpFileRead, OpDHOpen, OpDHRead, OpDHClose:
		case OpWait, OpDelete:
			if st.Target == "" {
				return fail(fmt.Errorf("%w: target", ErrMissingField))
			}
			if !labelled[st.Target] {
				return fail(fmt.Errorf("%w: %q", ErrUnknownTarget, st.Target))
			}
			continue
		default:
			return fail(ErrUnknownOp)
		}

		if needsPath(st.Op) && st.Path == "" {
			return fail(fmt.Errorf("%w: path", ErrMissingField))
		}
		if needsHandle(st.Op) && !bound[st.Handle] {
			return fail(fmt.Errorf("%w: %q", ErrUnboundHandle, st.Handle))
		}
		switch st.Op {
		case OpRead, OpPread, OpFileRead:
			if st.Size <= 0 {
				return fail(fmt.Errorf("%w: size", ErrMissingField))
			}
		case OpReadv:
			if len(st.Sizes) == 0 {
				return fail(fmt.Errorf("%w: sizes", ErrMissingField))
			}
		case OpOpen, OpDHOpen:
			if st.Bind == "" {
				return fail(fmt.Errorf("%w: bind", ErrMissingField))
			}
			if bound[st.Bind] {
				return fail(fmt.Errorf("%w: %q", ErrDuplicateName, st.Bind))
			}
			bound[st.Bind] = true
		}

		if st.Label != "" {
			if labelled[st.Label] {
				return fail(fmt.Errorf("%w: %q", ErrDuplicateName, st.Label))
			}
			labelled[st.Label] = true
		}
	}
	return nil
}
