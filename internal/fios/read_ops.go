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

// LOCKS_EXCLUDED(l.mu)
func (l *Library) reportTransfer(name string, requested int, got Size) {
	if got > 0 {
		l.metricHandle.ReadBytesCount(int64(got))
	}
	if got != Size(requested) {
		logger.Errorf("%s: short read, len: %d, ret: %d", name, requested, got)
	}
}

// FHRead reads into buf at the current position. The op records the number
// of bytes read or a kernel error.
func (l *Library) FHRead(ctx context.Context, attr *OpAttr, fh Handle, buf []byte) Op {
	req := l.begin(ctx, "FHRead", metrics.FiosOpRead)
	n := Size(l.kernel.Read(int32(fh), buf))
	op := l.completeSize(req, attr, n)

	l.reportTransfer("FHRead", len(buf), n)
	logger.Tracef("FHRead: fh=%d len=%d ret=%d op=%d", fh, len(buf), n, op)
	return op
}

func (l *Library) FHReadSync(ctx context.Context, attr *OpAttr, fh Handle, buf []byte) Size {
	warnCallbackOnSync("FHReadSync", attr)
	return l.OpSyncWaitForIO(l.FHRead(ctx, attr, fh, buf))
}

// FHReadv fills the buffers of iov in order from the current position.
func (l *Library) FHReadv(ctx context.Context, attr *OpAttr, fh Handle, iov [][]byte) Op {
	req := l.begin(ctx, "FHReadv", metrics.FiosOpReadv)
	n := Size(l.kernel.Readv(int32(fh), iov))
	op := l.completeSize(req, attr, n)

	total := 0
	for _, b := range iov {
		total += len(b)
	}
	l.reportTransfer("FHReadv", total, n)
	logger.Tracef("FHReadv: fh=%d iovcnt=%d len=%d ret=%d op=%d", fh, len(iov), total, n, op)
	return op
}

func (l *Library) FHReadvSync(ctx context.Context, attr *OpAttr, fh Handle, iov [][]byte) Size {
	warnCallbackOnSync("FHReadvSync", attr)
	return l.OpSyncWaitForIO(l.FHReadv(ctx, attr, fh, iov))
}

// FHPread reads into buf at off without moving the file position.
func (l *Library) FHPread(ctx context.Context, attr *OpAttr, fh Handle, buf []byte, off Offset) Op {
	req := l.begin(ctx, "FHPread", metrics.FiosOpPread)
	n := Size(l.kernel.Pread(int32(fh), buf, int64(off)))
	op := l.completeSize(req, attr, n)

	l.reportTransfer("FHPread", len(buf), n)
	logger.Tracef("FHPread: fh=%d len=%d off=%d ret=%d op=%d", fh, len(buf), off, n, op)
	return op
}

func (l *Library) FHPreadSync(ctx context.Context, attr *OpAttr, fh Handle, buf []byte, off Offset) Size {
	warnCallbackOnSync("FHPreadSync", attr)
	return l.OpSyncWaitForIO(l.FHPread(ctx, attr, fh, buf, off))
}

// FileRead reads from path at off without keeping a handle open. The op
// records the number of bytes read, ErrBadPath when the path cannot be
// opened, or the kernel error of the read.
func (l *Library) FileRead(ctx context.Context, attr *OpAttr, path string, buf []byte, off Offset) Op {
	req := l.begin(ctx, "FileRead", metrics.FiosOpFileRead)

	n := Size(ErrBadPath)
	fd := l.kernel.Open(l.translate(path), kernel.ReadOnly, 0)
	if fd >= 0 {
		n = Size(l.kernel.Pread(fd, buf, int64(off)))
		l.kernel.Close(fd)
	}
	op := l.completeSize(req, attr, n)

	l.reportTransfer("FileRead", len(buf), n)
	logger.Debugf("FileRead: path=%q len=%d off=%d ret=%d op=%d", path, len(buf), off, n, op)
	return op
}

func (l *Library) FileReadSync(ctx context.Context, attr *OpAttr, path string, buf []byte, off Offset) Size {
	warnCallbackOnSync("FileReadSync", attr)
	return l.OpSyncWaitForIO(l.FileRead(ctx, attr, path, buf, off))
}
