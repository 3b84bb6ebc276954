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
	"context"

	"github.com/fiosemu/fiosemu/internal/kernel"
	"github.com/fiosemu/fiosemu/internal/logger"
	"github.com/fiosemu/fiosemu/metrics"
)

// IsValidHandle reports whether h could name an open file or directory.
func IsValidHandle(h Handle) bool {
	return h > 2
}

// nativeOpenFlags maps open flags onto kernel open flags. Nil params open
// for reading.
func nativeOpenFlags(params *OpenParams) kernel.OpenFlag {
	flags := OpenRead
	if params != nil {
		flags = params.OpenFlags
	}

	var native kernel.OpenFlag
	switch flags & OpenReadWrite {
	case OpenWrite:
		native = kernel.WriteOnly
	case OpenReadWrite:
		native = kernel.ReadWrite
	default:
		native = kernel.ReadOnly
	}

	if flags&OpenAppend != 0 {
		native |= kernel.Append
	}
	if flags&OpenCreate != 0 {
		native |= kernel.Create
	}
	if flags&OpenTruncate != 0 {
		native |= kernel.Truncate
	}
	if flags&OpenDirect != 0 {
		native |= kernel.Direct
	}
	return native
}

// nativeCreateMode returns the permission bits for an open. They are zero
// unless the open creates.
func (l *Library) nativeCreateMode(native kernel.OpenFlag, nativeMode int32) uint32 {
	if !native.Has(kernel.Create) {
		return 0
	}
	if nativeMode == -1 {
		return l.createMode
	}
	return uint32(nativeMode)
}

// FHOpen opens path with the default create mode.
func (l *Library) FHOpen(ctx context.Context, attr *OpAttr, path string, params *OpenParams) (Handle, Op) {
	return l.FHOpenWithMode(ctx, attr, path, params, -1)
}

func (l *Library) FHOpenSync(ctx context.Context, attr *OpAttr, path string, params *OpenParams) (Handle, Result) {
	warnCallbackOnSync("FHOpenSync", attr)
	fh, op := l.FHOpen(ctx, attr, path, params)
	return fh, l.OpSyncWait(op)
}

// FHOpenWithMode opens path and returns the kernel's descriptor, which is
// negative on failure. The op records OK or the kernel error.
func (l *Library) FHOpenWithMode(ctx context.Context, attr *OpAttr, path string, params *OpenParams, nativeMode int32) (Handle, Op) {
	req := l.begin(ctx, "FHOpen", metrics.FiosOpOpen)

	native := nativeOpenFlags(params)
	mode := l.nativeCreateMode(native, nativeMode)
	fh := Handle(l.kernel.Open(l.translate(path), native, mode))
	if fh >= 0 {
		l.files.add(fh, path)
	}

	op := l.completeStatus(req, attr, Result(min(fh, 0)))
	logger.Debugf("FHOpen: path=%q flags=%#x mode=%#o fh=%d op=%d", path, native, mode, fh, op)
	return fh, op
}

func (l *Library) FHOpenWithModeSync(ctx context.Context, attr *OpAttr, path string, params *OpenParams, nativeMode int32) (Handle, Result) {
	warnCallbackOnSync("FHOpenWithModeSync", attr)
	fh, op := l.FHOpenWithMode(ctx, attr, path, params, nativeMode)
	return fh, l.OpSyncWait(op)
}

func (l *Library) FHClose(ctx context.Context, attr *OpAttr, fh Handle) Op {
	req := l.begin(ctx, "FHClose", metrics.FiosOpClose)

	ret := Result(l.kernel.Close(int32(fh)))
	l.files.remove(fh)

	op := l.completeStatus(req, attr, ret)
	logger.Debugf("FHClose: fh=%d ret=%v op=%d", fh, ret, op)
	return op
}

func (l *Library) FHCloseSync(ctx context.Context, attr *OpAttr, fh Handle) Result {
	warnCallbackOnSync("FHCloseSync", attr)
	return l.OpSyncWait(l.FHClose(ctx, attr, fh))
}

// FHGetPath returns the virtual path fh was opened with.
func (l *Library) FHGetPath(fh Handle) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.files.path(fh)
	if !ok {
		logger.Errorf("FHGetPath: invalid fh %d", fh)
	}
	return p, ok
}

// FHGetSize returns the size of the open file, -1 for a reserved handle or
// the kernel error of the underlying fstat.
func (l *Library) FHGetSize(ctx context.Context, fh Handle) Size {
	if !IsValidHandle(fh) {
		logger.Errorf("FHGetSize: invalid fh %d", fh)
		return -1
	}

	start := l.clock.Now()
	l.mu.Lock()
	var st kernel.Stat
	ret := l.kernel.Fstat(int32(fh), &st)
	l.mu.Unlock()

	size := Size(st.Size)
	if ret < 0 {
		size = Size(ret)
	}
	l.measure(ctx, start, int64(size))
	logger.Tracef("FHGetSize: fh=%d size=%d", fh, size)
	return size
}

// FHSeek moves the file position and returns the new offset or a kernel
// error.
func (l *Library) FHSeek(ctx context.Context, fh Handle, off Offset, whence Whence) Offset {
	start := l.clock.Now()
	l.mu.Lock()
	pos := Offset(l.kernel.Lseek(int32(fh), int64(off), int(whence)))
	l.mu.Unlock()

	l.measure(ctx, start, int64(pos))
	logger.Tracef("FHSeek: fh=%d off=%d whence=%d pos=%d", fh, off, whence, pos)
	return pos
}

// FHTell returns the file position.
func (l *Library) FHTell(ctx context.Context, fh Handle) Offset {
	return l.FHSeek(ctx, fh, 0, WhenceCurrent)
}

func (l *Library) FHWrite(ctx context.Context, attr *OpAttr, fh Handle, buf []byte) Op {
	unimplemented("FHWrite")
	return 0
}

func (l *Library) FHPwrite(ctx context.Context, attr *OpAttr, fh Handle, buf []byte, off Offset) Op {
	unimplemented("FHPwrite")
	return 0
}

func (l *Library) FHWritev(ctx context.Context, attr *OpAttr, fh Handle, iov [][]byte) Op {
	unimplemented("FHWritev")
	return 0
}

func (l *Library) FHTruncate(ctx context.Context, attr *OpAttr, fh Handle, size Size) Op {
	unimplemented("FHTruncate")
	return 0
}

func (l *Library) FHSync(ctx context.Context, attr *OpAttr, fh Handle) Op {
	unimplemented("FHSync")
	return 0
}

func (l *Library) FileDelete(ctx context.Context, attr *OpAttr, path string) Op {
	unimplemented("FileDelete")
	return 0
}

func (l *Library) Rename(ctx context.Context, attr *OpAttr, oldPath, newPath string) Op {
	unimplemented("Rename")
	return 0
}
