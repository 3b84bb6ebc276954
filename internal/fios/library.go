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

// Package fios implements an asynchronous-looking file I/O request API whose
// requests complete synchronously.
//
// Every request runs its backend call on the calling goroutine, mints an Op,
// records the outcome in the Registry and dispatches the caller's completion
// callback before returning the Op. Waiting on an Op is therefore a lookup:
// the result is always already there. Results are held until consumed by a
// wait or dropped by OpDelete; an Op that is unknown, consumed or deleted
// reports ErrBadOp from every accessor.
//
// Each request also has a Sync variant that issues the request and
// immediately waits on it. Because the Sync variant consumes its own result,
// the Op it used is gone once it returns.
package fios

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fiosemu/fiosemu/cfg"
	"github.com/fiosemu/fiosemu/internal/kernel"
	"github.com/fiosemu/fiosemu/internal/locker"
	"github.com/fiosemu/fiosemu/internal/logger"
	"github.com/fiosemu/fiosemu/internal/mount"
	"github.com/fiosemu/fiosemu/metrics"
	"github.com/fiosemu/fiosemu/tracing"
	"github.com/jacobsa/timeutil"
	"go.opentelemetry.io/otel/trace"
)

type LibraryConfig struct {
	// The blocking file system requests run against.
	Kernel kernel.Kernel

	// Rewrites the virtual paths of requests into kernel paths. Defaults to
	// mount.ToApp0 alone.
	Translator mount.Translator

	// An optional registry, mainly for tests. A new one is used when nil.
	Registry *Registry

	// The clock used to measure request latency.
	Clock timeutil.Clock

	MetricHandle metrics.MetricHandle
	TraceHandle  tracing.TraceHandle

	// Permission bits used by creating opens that pass a native mode of -1.
	// Zero means cfg.DefaultCreateMode.
	CreateMode uint32
}

// Library serves requests. It is safe for concurrent use; requests are
// serialized by one lock, so ops are minted in a global order.
type Library struct {
	/////////////////////////
	// Dependencies
	/////////////////////////

	kernel       kernel.Kernel
	translator   mount.Translator
	clock        timeutil.Clock
	metricHandle metrics.MetricHandle
	traceHandle  tracing.TraceHandle

	/////////////////////////
	// Constant data
	/////////////////////////

	createMode uint32

	/////////////////////////
	// Mutable state
	/////////////////////////

	// Guards the registry and the bookkeeping tables. Held across the backend
	// call of every request; never held while a callback runs.
	mu sync.Locker

	// GUARDED_BY(mu)
	initialized bool

	// GUARDED_BY(mu)
	registry *Registry

	// Virtual paths of live file and directory handles.
	//
	// GUARDED_BY(mu)
	files handleTable
	dirs  handleTable

	// Keyed by translated path.
	//
	// GUARDED_BY(mu)
	existence existenceCache
}

func NewLibrary(c *LibraryConfig) *Library {
	l := &Library{
		kernel:       c.Kernel,
		translator:   c.Translator,
		clock:        c.Clock,
		metricHandle: c.MetricHandle,
		traceHandle:  c.TraceHandle,
		createMode:   c.CreateMode,
		registry:     c.Registry,
		files:        newHandleTable(),
		dirs:         newHandleTable(),
		existence:    newExistenceCache(),
	}
	if l.translator == nil {
		l.translator = mount.TranslatorFunc(mount.ToApp0)
	}
	if l.clock == nil {
		l.clock = timeutil.RealClock()
	}
	if l.metricHandle == nil {
		l.metricHandle = metrics.NewNoopMetrics()
	}
	if l.traceHandle == nil {
		l.traceHandle = tracing.NewNoopTracer()
	}
	if l.createMode == 0 {
		l.createMode = uint32(cfg.DefaultCreateMode)
	}
	if l.registry == nil {
		l.registry = NewRegistry()
	}
	l.mu = locker.New("Library", l.checkInvariants)
	return l
}

func (l *Library) checkInvariants() {
	l.registry.CheckInvariants()
	l.files.checkInvariants()
	l.dirs.checkInvariants()
}

////////////////////////////////////////////////////////////////////////
// Lifecycle
////////////////////////////////////////////////////////////////////////

// LOCKS_REQUIRED(l.mu)
func (l *Library) initializeLocked() {
	if l.initialized {
		return
	}
	l.registry.Init()
	l.initialized = true
	logger.Debugf("fios: initialized, next op %d", l.registry.Last()+1)
}

// Initialize prepares the library. Requests initialize it on first use, so
// calling this is optional.
func (l *Library) Initialize() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initializeLocked()
	return OK
}

func (l *Library) IsInitialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initialized
}

// Terminate drops every unconsumed result. Op ids keep increasing across a
// Terminate and a later Initialize. Handles and the existence cache are kept.
func (l *Library) Terminate() Result {
	l.mu.Lock()
	n := l.registry.Clear()
	l.initialized = false
	l.mu.Unlock()

	l.metricHandle.PendingResults(-int64(n))
	if n > 0 {
		logger.Infof("fios: terminated with %d unconsumed results", n)
	}
	return OK
}

////////////////////////////////////////////////////////////////////////
// Request plumbing
////////////////////////////////////////////////////////////////////////

type request struct {
	name   string
	fiosOp metrics.FiosOp
	ctx    context.Context
	span   trace.Span
	start  time.Time
}

// begin starts the request's span and clock and takes the lock.
//
// LOCKS_EXCLUDED(l.mu)
func (l *Library) begin(ctx context.Context, name string, fiosOp metrics.FiosOp) *request {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := l.traceHandle.StartSpan(ctx, name)
	l.mu.Lock()
	l.initializeLocked()
	return &request{
		name:   name,
		fiosOp: fiosOp,
		ctx:    ctx,
		span:   span,
		start:  l.clock.Now(),
	}
}

// completeStatus records code under a new op, releases the lock and notifies
// attr's callback.
//
// LOCKS_REQUIRED(l.mu)
func (l *Library) completeStatus(req *request, attr *OpAttr, code Result) Op {
	op := l.registry.NewOperation()
	l.registry.RecordStatus(op, code)
	l.mu.Unlock()

	l.finish(req, op, int64(code))
	Notify(attr, op, EventComplete, int32(code))
	return op
}

// completeSize records size under a new op, releases the lock and notifies
// attr's callback with the size truncated to 32 bits.
//
// LOCKS_REQUIRED(l.mu)
func (l *Library) completeSize(req *request, attr *OpAttr, size Size) Op {
	op := l.registry.NewOperation()
	l.registry.RecordSize(op, size)
	l.mu.Unlock()

	l.finish(req, op, int64(size))
	Notify(attr, op, EventComplete, int32(size))
	return op
}

// LOCKS_EXCLUDED(l.mu)
func (l *Library) finish(req *request, op Op, value int64) {
	category := errorCategory(value)
	metrics.CaptureRequestMetrics(req.ctx, l.metricHandle, req.fiosOp, l.clock.Now().Sub(req.start), category)
	l.metricHandle.PendingResults(1)

	l.traceHandle.SetResultAttributes(req.span, int32(op), value)
	if category != "" {
		l.traceHandle.RecordError(req.span, fmt.Errorf("%s: %v", req.name, describe(value)))
	}
	l.traceHandle.EndSpan(req.span)
}

// measure reports latency of a call that does not mint an op.
func (l *Library) measure(ctx context.Context, start time.Time, value int64) {
	if ctx == nil {
		ctx = context.Background()
	}
	metrics.CaptureRequestMetrics(ctx, l.metricHandle, metrics.FiosOpOthers, l.clock.Now().Sub(start), errorCategory(value))
}

func (l *Library) translate(virtual string) string {
	return l.translator.Translate(virtual)
}

func warnCallbackOnSync(name string, attr *OpAttr) {
	if attr.hasCallback() {
		logger.Warnf("%s: there is a callback to a sync function", name)
	}
}
