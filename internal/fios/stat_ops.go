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

func statFlags(st *kernel.Stat) StatFlags {
	var flags StatFlags
	if st.IsDir() {
		flags |= StatDirectory
	}
	if st.Mode&0o444 != 0 {
		flags |= StatReadable
	}
	if st.Mode&0o222 != 0 {
		flags |= StatWritable
	}
	return flags
}

func fillStat(st *kernel.Stat, out *Stat) {
	*out = Stat{
		FileSize:         Offset(st.Size),
		AccessDate:       st.Atime.UnixNano(),
		ModificationDate: st.Mtime.UnixNano(),
		CreationDate:     st.Birthtime.UnixNano(),
		StatFlags:        statFlags(st),
		Uid:              int64(st.Uid),
		Gid:              int64(st.Gid),
		Dev:              int64(st.Dev),
		Ino:              int64(st.Ino),
		Mode:             int64(st.Mode),
	}
}

// Stat fills out with the attributes of path. The op records OK, or
// ErrBadPath when the kernel stat fails, in which case out is untouched.
func (l *Library) Stat(ctx context.Context, attr *OpAttr, path string, out *Stat) Op {
	req := l.begin(ctx, "Stat", metrics.FiosOpStat)

	var st kernel.Stat
	ret := OK
	if l.kernel.Stat(l.translate(path), &st) < 0 {
		ret = ErrBadPath
	} else if out != nil {
		fillStat(&st, out)
	}

	op := l.completeStatus(req, attr, ret)
	logger.Debugf("Stat: path=%q ret=%v op=%d", path, ret, op)
	return op
}

func (l *Library) StatSync(ctx context.Context, attr *OpAttr, path string, out *Stat) Result {
	warnCallbackOnSync("StatSync", attr)
	return l.OpSyncWait(l.Stat(ctx, attr, path, out))
}

// lookupExistence answers from the existence cache, stating the translated
// path on a miss.
//
// LOCKS_REQUIRED(l.mu)
func (l *Library) lookupExistence(path string) existenceEntry {
	translated := l.translate(path)
	e, hit := l.existence.lookup(translated)
	l.metricHandle.ExistenceCacheCount(1, hit)
	if hit {
		return e
	}

	e.exists = l.kernel.Stat(translated, &e.stat) >= 0
	l.existence.store(translated, e)
	return e
}

// Exists reports whether path exists. The op records 1 or 0. The verdict for
// a path is cached on first use and never refreshed.
func (l *Library) Exists(ctx context.Context, attr *OpAttr, path string) (bool, Op) {
	req := l.begin(ctx, "Exists", metrics.FiosOpExists)
	e := l.lookupExistence(path)

	ret := Result(0)
	if e.exists {
		ret = 1
	}
	op := l.completeStatus(req, attr, ret)
	logger.Tracef("Exists: path=%q exists=%t op=%d", path, e.exists, op)
	return e.exists, op
}

func (l *Library) ExistsSync(ctx context.Context, attr *OpAttr, path string) bool {
	warnCallbackOnSync("ExistsSync", attr)
	_, op := l.Exists(ctx, attr, path)
	return l.OpSyncWait(op) != 0
}

func (l *Library) FileExists(ctx context.Context, attr *OpAttr, path string) Op {
	_, op := l.Exists(ctx, attr, path)
	return op
}

func (l *Library) FileExistsSync(ctx context.Context, attr *OpAttr, path string) bool {
	warnCallbackOnSync("FileExistsSync", attr)
	return l.OpSyncWaitForIO(l.FileExists(ctx, attr, path)) != 0
}

// FileGetSize records the size of path, or ErrBadPath when it does not
// exist. It shares the existence cache with Exists.
func (l *Library) FileGetSize(ctx context.Context, attr *OpAttr, path string) Op {
	req := l.begin(ctx, "FileGetSize", metrics.FiosOpGetSize)
	e := l.lookupExistence(path)

	size := Size(ErrBadPath)
	if e.exists {
		size = Size(e.stat.Size)
	}
	op := l.completeSize(req, attr, size)
	logger.Debugf("FileGetSize: path=%q size=%d op=%d", path, size, op)
	return op
}

func (l *Library) FileGetSizeSync(ctx context.Context, attr *OpAttr, path string) Size {
	warnCallbackOnSync("FileGetSizeSync", attr)
	return l.OpSyncWaitForIO(l.FileGetSize(ctx, attr, path))
}
