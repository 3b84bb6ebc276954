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

// Package kernel defines the blocking file-system primitives the request
// facade runs against, together with adapters for go-billy file systems and
// raw unix file descriptors.
//
// Every primitive follows the syscall convention: a non-negative return is
// success (a descriptor, a byte count or zero) and a negative return is a
// kernel error code as produced by ErrorCode.
package kernel

import (
	"time"
)

// OpenFlag is the native open(2) flag word. Values follow the BSD numbering
// used by the emulated kernel, not the host's.
type OpenFlag int32

const (
	ReadOnly   OpenFlag = 0x0000
	WriteOnly  OpenFlag = 0x0001
	ReadWrite  OpenFlag = 0x0002
	AccessMode OpenFlag = 0x0003
	NonBlock   OpenFlag = 0x0004
	Append     OpenFlag = 0x0008
	Create     OpenFlag = 0x0200
	Truncate   OpenFlag = 0x0400
	Exclusive  OpenFlag = 0x0800
	Direct     OpenFlag = 0x10000
	Directory  OpenFlag = 0x20000
)

func (f OpenFlag) Access() OpenFlag {
	return f & AccessMode
}

func (f OpenFlag) Has(bit OpenFlag) bool {
	return f&bit != 0
}

// File type bits carried in Stat.Mode.
const (
	ModeTypeMask uint32 = 0o170000
	ModeDir      uint32 = 0o040000
	ModeRegular  uint32 = 0o100000
	ModeSymlink  uint32 = 0o120000
	ModePerm     uint32 = 0o000777
)

// Stat is the payload filled by Stat and Fstat.
type Stat struct {
	Dev       uint64
	Ino       uint64
	Mode      uint32
	Nlink     uint32
	Uid       uint32
	Gid       uint32
	Size      int64
	Blocks    int64
	BlockSize uint32
	Atime     time.Time
	Mtime     time.Time
	Ctime     time.Time
	Birthtime time.Time
}

func (s *Stat) IsDir() bool {
	return s.Mode&ModeTypeMask == ModeDir
}

// DirEntry is one record returned by ReadDirEntry.
type DirEntry struct {
	Name  string
	IsDir bool
	Size  int64
}

// Kernel is a blocking, POSIX-like file system.
type Kernel interface {
	// Open returns a descriptor or a negative error code.
	Open(path string, flags OpenFlag, mode uint32) int32
	Close(fd int32) int32

	// Read, Readv and Pread return the number of bytes transferred, which is
	// zero at end of file, or a negative error code.
	Read(fd int32, buf []byte) int64
	Readv(fd int32, iov [][]byte) int64
	Pread(fd int32, buf []byte, off int64) int64

	// Lseek returns the resulting offset or a negative error code. whence is
	// one of io.SeekStart, io.SeekCurrent and io.SeekEnd.
	Lseek(fd int32, off int64, whence int) int64

	Stat(path string, st *Stat) int32
	Fstat(fd int32, st *Stat) int32

	// ReadDirEntry fills ent with the next entry of a descriptor opened with
	// Directory. It returns 1 when an entry was produced, 0 at the end of the
	// listing, or a negative error code.
	ReadDirEntry(fd int32, ent *DirEntry) int32
}
