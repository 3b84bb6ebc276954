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

	"github.com/fiosemu/fiosemu/internal/logger"
)

type resultKind uint8

const (
	statusKind resultKind = iota + 1
	sizeKind
)

type result struct {
	kind  resultKind
	value int64
}

// Registry mints operation ids and holds each id's result until it is
// consumed or deleted. An id holds either a status or a size, never both.
//
// Registry is not safe for concurrent use; Library serializes access.
type Registry struct {
	// The last id handed out. Ids are never reused.
	last Op

	// INVARIANT: For each k, 1 <= k <= last
	// INVARIANT: For each v, v.kind is statusKind or sizeKind
	results map[Op]result
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Init allocates the result table. Calling it again has no effect.
func (r *Registry) Init() {
	if r.results == nil {
		r.results = make(map[Op]result)
	}
}

func (r *Registry) initialized() bool {
	return r.results != nil
}

func (r *Registry) CheckInvariants() {
	for op, res := range r.results {
		if op < 1 || op > r.last {
			panic(fmt.Sprintf("op %d outside of [1, %d]", op, r.last))
		}
		if res.kind != statusKind && res.kind != sizeKind {
			panic(fmt.Sprintf("op %d has unknown result kind %d", op, res.kind))
		}
	}
}

// NewOperation returns the next id.
func (r *Registry) NewOperation() Op {
	r.last++
	return r.last
}

func (r *Registry) RecordStatus(op Op, code Result) {
	r.Init()
	r.results[op] = result{kind: statusKind, value: int64(code)}
}

func (r *Registry) RecordSize(op Op, size Size) {
	r.Init()
	r.results[op] = result{kind: sizeKind, value: int64(size)}
}

func (r *Registry) take(op Op, kind resultKind) (int64, bool) {
	res, ok := r.results[op]
	if !ok || res.kind != kind {
		return 0, false
	}
	delete(r.results, op)
	return res.value, true
}

// TakeStatus removes and returns op's status.
func (r *Registry) TakeStatus(op Op) (Result, bool) {
	v, ok := r.take(op, statusKind)
	return Result(v), ok
}

// TakeSize removes and returns op's size.
func (r *Registry) TakeSize(op Op) (Size, bool) {
	v, ok := r.take(op, sizeKind)
	return Size(v), ok
}

// Wait removes and returns op's result, whichever kind it holds.
func (r *Registry) Wait(op Op) (int64, bool) {
	res, ok := r.results[op]
	if !ok {
		return 0, false
	}
	delete(r.results, op)
	return res.value, true
}

// Delete drops op's result. It reports whether there was one.
func (r *Registry) Delete(op Op) bool {
	_, ok := r.results[op]
	delete(r.results, op)
	return ok
}

// GetError peeks at op's status. Size results are not visible.
func (r *Registry) GetError(op Op) (Result, bool) {
	res, ok := r.results[op]
	if !ok || res.kind != statusKind {
		return 0, false
	}
	return Result(res.value), true
}

// GetActualCount peeks at op's size. Status results are not visible.
func (r *Registry) GetActualCount(op Op) (Size, bool) {
	res, ok := r.results[op]
	if !ok || res.kind != sizeKind {
		return 0, false
	}
	return Size(res.value), true
}

func (r *Registry) IsDone(op Op) bool {
	_, ok := r.results[op]
	return ok
}

// Pending returns the number of results not yet consumed or deleted.
func (r *Registry) Pending() int {
	return len(r.results)
}

// Last returns the most recently minted id, or 0.
func (r *Registry) Last() Op {
	return r.last
}

// Clear drops every result while keeping the id counter.
func (r *Registry) Clear() int {
	n := len(r.results)
	clear(r.results)
	return n
}

// Notify dispatches event for op to attr's callback, if any. It must not be
// called with the library lock held.
func Notify(attr *OpAttr, op Op, event OpEvent, code int32) {
	if !attr.hasCallback() {
		return
	}
	if ret := attr.Callback(attr.CallbackContext, op, event, code); ret != 0 {
		logger.Warnf("Callback for op %d returned %d", op, ret)
	}
}
