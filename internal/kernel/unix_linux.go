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

package kernel

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// unixKernel issues syscalls against host descriptors. Directory listings
// are snapshotted at open time since getdents records are host specific.
type unixKernel struct {
	mu sync.Mutex

	// GUARDED_BY(mu)
	dirs map[int32]*dirListing
}

type dirListing struct {
	entries []os.DirEntry
	pos     int
}

// NewUnix returns a Kernel that maps every primitive onto the matching host
// syscall.
func NewUnix() (Kernel, error) {
	return &unixKernel{dirs: make(map[int32]*dirListing)}, nil
}

func toUnixFlags(flags OpenFlag) int {
	var f int
	switch flags.Access() {
	case WriteOnly:
		f = unix.O_WRONLY
	case ReadWrite:
		f = unix.O_RDWR
	default:
		f = unix.O_RDONLY
	}
	if flags.Has(NonBlock) {
		f |= unix.O_NONBLOCK
	}
	if flags.Has(Append) {
		f |= unix.O_APPEND
	}
	if flags.Has(Create) {
		f |= unix.O_CREAT
	}
	if flags.Has(Truncate) {
		f |= unix.O_TRUNC
	}
	if flags.Has(Exclusive) {
		f |= unix.O_EXCL
	}
	if flags.Has(Direct) {
		f |= unix.O_DIRECT
	}
	if flags.Has(Directory) {
		f |= unix.O_DIRECTORY
	}
	return f | unix.O_CLOEXEC
}

func (k *unixKernel) Open(path string, flags OpenFlag, mode uint32) int32 {
	fd, err := unix.Open(path, toUnixFlags(flags), mode&ModePerm)
	if err != nil {
		return FromError(err)
	}

	if flags.Has(Directory) {
		entries, err := os.ReadDir(path)
		if err != nil {
			unix.Close(fd)
			return FromError(err)
		}
		k.mu.Lock()
		k.dirs[int32(fd)] = &dirListing{entries: entries}
		k.mu.Unlock()
	}
	return int32(fd)
}

func (k *unixKernel) Close(fd int32) int32 {
	k.mu.Lock()
	delete(k.dirs, fd)
	k.mu.Unlock()

	if err := unix.Close(int(fd)); err != nil {
		return FromError(err)
	}
	return 0
}

func (k *unixKernel) Read(fd int32, buf []byte) int64 {
	n, err := unix.Read(int(fd), buf)
	if err != nil {
		return int64(FromError(err))
	}
	return int64(n)
}

func (k *unixKernel) Readv(fd int32, iov [][]byte) int64 {
	n, err := unix.Readv(int(fd), iov)
	if err != nil {
		return int64(FromError(err))
	}
	return int64(n)
}

func (k *unixKernel) Pread(fd int32, buf []byte, off int64) int64 {
	n, err := unix.Pread(int(fd), buf, off)
	if err != nil {
		return int64(FromError(err))
	}
	return int64(n)
}

func (k *unixKernel) Lseek(fd int32, off int64, whence int) int64 {
	pos, err := unix.Seek(int(fd), off, whence)
	if err != nil {
		return int64(FromError(err))
	}
	return pos
}

func timespec(ts unix.Timespec) time.Time {
	sec, nsec := ts.Unix()
	return time.Unix(sec, nsec)
}

func fromUnixStat(s *unix.Stat_t, st *Stat) {
	*st = Stat{
		Dev:       uint64(s.Dev),
		Ino:       s.Ino,
		Mode:      s.Mode,
		Nlink:     uint32(s.Nlink),
		Uid:       s.Uid,
		Gid:       s.Gid,
		Size:      s.Size,
		Blocks:    s.Blocks,
		BlockSize: uint32(s.Blksize),
		Atime:     timespec(s.Atim),
		Mtime:     timespec(s.Mtim),
		Ctime:     timespec(s.Ctim),
		// Linux has no portable birth time in stat(2).
		Birthtime: timespec(s.Ctim),
	}
}

func (k *unixKernel) Stat(path string, st *Stat) int32 {
	var s unix.Stat_t
	if err := unix.Stat(path, &s); err != nil {
		return FromError(err)
	}
	fromUnixStat(&s, st)
	return 0
}

func (k *unixKernel) Fstat(fd int32, st *Stat) int32 {
	var s unix.Stat_t
	if err := unix.Fstat(int(fd), &s); err != nil {
		return FromError(err)
	}
	fromUnixStat(&s, st)
	return 0
}

func (k *unixKernel) ReadDirEntry(fd int32, ent *DirEntry) int32 {
	k.mu.Lock()
	defer k.mu.Unlock()

	d, ok := k.dirs[fd]
	if !ok {
		return ErrorCode(unix.ENOTDIR)
	}
	if d.pos >= len(d.entries) {
		return 0
	}

	e := d.entries[d.pos]
	d.pos++
	*ent = DirEntry{Name: e.Name(), IsDir: e.IsDir()}
	if info, err := e.Info(); err == nil {
		ent.Size = info.Size()
	}
	return 1
}
