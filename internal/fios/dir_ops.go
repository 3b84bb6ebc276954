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
	"path"

	"github.com/fiosemu/fiosemu/internal/kernel"
	"github.com/fiosemu/fiosemu/internal/logger"
	"github.com/fiosemu/fiosemu/metrics"
)

// DHOpen opens path for listing and returns the kernel's descriptor, which
// is negative on failure. The op records the descriptor itself, so waiting
// on it yields the handle or the kernel error.
func (l *Library) DHOpen(ctx context.Context, attr *OpAttr, path string) (Handle, Op) {
	req := l.begin(ctx, "DHOpen", metrics.FiosOpDirOpen)

	dh := Handle(l.kernel.Open(l.translate(path), kernel.ReadOnly|kernel.Directory, 0))
	if dh >= 0 {
		l.dirs.add(dh, path)
	}

	op := l.completeStatus(req, attr, Result(dh))
	logger.Debugf("DHOpen: path=%q dh=%d op=%d", path, dh, op)
	return dh, op
}

// DHOpenSync returns the descriptor and the waited result, which is the same
// descriptor on success.
func (l *Library) DHOpenSync(ctx context.Context, attr *OpAttr, path string) (Handle, Result) {
	warnCallbackOnSync("DHOpenSync", attr)
	dh, op := l.DHOpen(ctx, attr, path)
	return dh, l.OpSyncWait(op)
}

// fillDirEntry describes ent as a child of dir. It returns false when the
// full path does not fit in PathMax.
func fillDirEntry(dir string, ent *kernel.DirEntry, out *DirEntry) bool {
	full := ent.Name
	if dir != "" {
		full = path.Join(dir, ent.Name)
	}
	if len(full) >= PathMax {
		return false
	}

	var flags StatFlags = StatReadable
	if ent.IsDir {
		flags |= StatDirectory
	}
	*out = DirEntry{
		FileSize:       Offset(ent.Size),
		StatFlags:      flags,
		NameLength:     uint16(len(ent.Name)),
		FullPathLength: uint16(len(full)),
		OffsetToName:   uint16(len(full) - len(ent.Name)),
		FullPath:       full,
	}
	return true
}

// DHRead fills out with the next entry of dh. The op records OK, ErrEOF
// after the last entry, ErrBadPath when the entry's path is too long, or the
// kernel error.
func (l *Library) DHRead(ctx context.Context, attr *OpAttr, dh Handle, out *DirEntry) Op {
	req := l.begin(ctx, "DHRead", metrics.FiosOpDirRead)

	var ent kernel.DirEntry
	ret := l.kernel.ReadDirEntry(int32(dh), &ent)
	code := Result(ret)
	switch {
	case ret == 0:
		code = ErrEOF
	case ret > 0:
		code = OK
		dir, _ := l.dirs.path(dh)
		var filled DirEntry
		if !fillDirEntry(dir, &ent, &filled) {
			logger.Errorf("DHRead: path of %q in dh %d exceeds %d bytes", ent.Name, dh, PathMax)
			code = ErrBadPath
		} else if out != nil {
			*out = filled
		}
	}

	op := l.completeStatus(req, attr, code)
	logger.Tracef("DHRead: dh=%d ret=%v op=%d", dh, code, op)
	return op
}

func (l *Library) DHReadSync(ctx context.Context, attr *OpAttr, dh Handle, out *DirEntry) Result {
	warnCallbackOnSync("DHReadSync", attr)
	return l.OpSyncWait(l.DHRead(ctx, attr, dh, out))
}

func (l *Library) DHClose(ctx context.Context, attr *OpAttr, dh Handle) Op {
	req := l.begin(ctx, "DHClose", metrics.FiosOpDirClose)

	ret := Result(l.kernel.Close(int32(dh)))
	l.dirs.remove(dh)

	op := l.completeStatus(req, attr, ret)
	logger.Debugf("DHClose: dh=%d ret=%v op=%d", dh, ret, op)
	return op
}

func (l *Library) DHCloseSync(ctx context.Context, attr *OpAttr, dh Handle) Result {
	warnCallbackOnSync("DHCloseSync", attr)
	return l.OpSyncWait(l.DHClose(ctx, attr, dh))
}

// DHGetPath returns the virtual path dh was opened with.
func (l *Library) DHGetPath(dh Handle) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.dirs.path(dh)
	if !ok {
		logger.Errorf("DHGetPath: invalid dh %d", dh)
	}
	return p, ok
}
