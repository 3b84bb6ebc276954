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
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/fiosemu/fiosemu/internal/locker"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// Descriptors 0-2 are reserved for the standard streams.
const firstDescriptor int32 = 3

// billyKernel serves requests from a go-billy file system, handing out
// descriptors from its own table.
type billyKernel struct {
	fs billy.Filesystem

	mu locker.RWLocker

	// INVARIANT: For each k, k >= firstDescriptor
	// INVARIANT: For each v, exactly one of v.file and v.entries is in use
	//
	// GUARDED_BY(mu)
	files map[int32]*openFile
}

type openFile struct {
	path string

	// Set for regular files.
	file billy.File

	// Set for descriptors opened with Directory. A snapshot of the listing
	// taken at open time, consumed from entries[pos].
	dir     bool
	entries []os.FileInfo
	pos     int
}

// NewBilly returns a Kernel backed by fs.
func NewBilly(fs billy.Filesystem) Kernel {
	k := &billyKernel{
		fs:    fs,
		files: make(map[int32]*openFile),
	}
	k.mu = locker.NewRW("BillyKernel", k.checkInvariants)
	return k
}

// NewOS returns a Kernel backed by the host file system. Paths are used as
// given, so callers pass absolute host paths.
func NewOS() Kernel {
	return NewBilly(osfs.New("/"))
}

// NewMemory returns a Kernel backed by an empty in-memory file system.
func NewMemory() Kernel {
	return NewBilly(memfs.New())
}

func (k *billyKernel) checkInvariants() {
	for fd, f := range k.files {
		if fd < firstDescriptor {
			panic("descriptor below the reserved range")
		}
		if f.dir == (f.file != nil) {
			panic("descriptor is neither a file nor a directory")
		}
	}
}

// LOCKS_REQUIRED(k.mu)
func (k *billyKernel) allocate(f *openFile) int32 {
	fd := firstDescriptor
	for {
		if _, ok := k.files[fd]; !ok {
			k.files[fd] = f
			return fd
		}
		fd++
	}
}

func (k *billyKernel) lookup(fd int32) (*openFile, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	f, ok := k.files[fd]
	return f, ok
}

func toOSFlags(flags OpenFlag) int {
	var osFlags int
	switch flags.Access() {
	case WriteOnly:
		osFlags = os.O_WRONLY
	case ReadWrite:
		osFlags = os.O_RDWR
	default:
		osFlags = os.O_RDONLY
	}
	if flags.Has(Append) {
		osFlags |= os.O_APPEND
	}
	if flags.Has(Create) {
		osFlags |= os.O_CREATE
	}
	if flags.Has(Truncate) {
		osFlags |= os.O_TRUNC
	}
	if flags.Has(Exclusive) {
		osFlags |= os.O_EXCL
	}
	return osFlags
}

func (k *billyKernel) Open(path string, flags OpenFlag, mode uint32) int32 {
	fi, statErr := k.fs.Stat(path)
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return FromError(statErr)
	}
	exists := statErr == nil

	if flags.Has(Directory) {
		if !exists {
			return ErrorCode(syscall.ENOENT)
		}
		if !fi.IsDir() {
			return ErrorCode(syscall.ENOTDIR)
		}
		entries, err := k.fs.ReadDir(path)
		if err != nil {
			return FromError(err)
		}

		k.mu.Lock()
		defer k.mu.Unlock()
		return k.allocate(&openFile{path: path, dir: true, entries: entries})
	}

	if exists && fi.IsDir() {
		return ErrorCode(syscall.EISDIR)
	}

	file, err := k.fs.OpenFile(path, toOSFlags(flags), os.FileMode(mode&ModePerm))
	if err != nil {
		return FromError(err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	return k.allocate(&openFile{path: path, file: file})
}

func (k *billyKernel) Close(fd int32) int32 {
	k.mu.Lock()
	f, ok := k.files[fd]
	if ok {
		delete(k.files, fd)
	}
	k.mu.Unlock()

	if !ok {
		return ErrorCode(syscall.EBADF)
	}
	if f.file != nil {
		return FromError(f.file.Close())
	}
	return 0
}

// regular returns the billy file behind fd, or an error code.
func (k *billyKernel) regular(fd int32) (billy.File, int32) {
	f, ok := k.lookup(fd)
	if !ok {
		return nil, ErrorCode(syscall.EBADF)
	}
	if f.dir {
		return nil, ErrorCode(syscall.EISDIR)
	}
	return f.file, 0
}

// transferred converts the outcome of a read into a byte count. End of file
// is not an error.
func transferred(n int, err error) int64 {
	if err != nil && !errors.Is(err, io.EOF) {
		if n > 0 {
			return int64(n)
		}
		return int64(FromError(err))
	}
	return int64(n)
}

func (k *billyKernel) Read(fd int32, buf []byte) int64 {
	file, code := k.regular(fd)
	if code != 0 {
		return int64(code)
	}
	n, err := io.ReadFull(file, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	return transferred(n, err)
}

func (k *billyKernel) Readv(fd int32, iov [][]byte) int64 {
	file, code := k.regular(fd)
	if code != 0 {
		return int64(code)
	}

	var total int64
	for _, buf := range iov {
		n, err := io.ReadFull(file, buf)
		total += int64(n)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if total > 0 {
			break
		}
		return int64(FromError(err))
	}
	return total
}

func (k *billyKernel) Pread(fd int32, buf []byte, off int64) int64 {
	file, code := k.regular(fd)
	if code != 0 {
		return int64(code)
	}
	if off < 0 {
		return int64(ErrorCode(syscall.EINVAL))
	}
	n, err := file.ReadAt(buf, off)
	return transferred(n, err)
}

func (k *billyKernel) Lseek(fd int32, off int64, whence int) int64 {
	file, code := k.regular(fd)
	if code != 0 {
		return int64(code)
	}
	pos, err := file.Seek(off, whence)
	if err != nil {
		return int64(FromError(err))
	}
	return pos
}

func fillStat(fi os.FileInfo, st *Stat) {
	*st = Stat{
		Mode:      fileModeBits(fi.Mode()),
		Nlink:     1,
		Size:      fi.Size(),
		BlockSize: 512,
		Blocks:    (fi.Size() + 511) / 512,
		Atime:     fi.ModTime(),
		Mtime:     fi.ModTime(),
		Ctime:     fi.ModTime(),
		Birthtime: fi.ModTime(),
	}
}

func fileModeBits(m fs.FileMode) uint32 {
	bits := uint32(m.Perm())
	switch {
	case m.IsDir():
		bits |= ModeDir
	case m&fs.ModeSymlink != 0:
		bits |= ModeSymlink
	default:
		bits |= ModeRegular
	}
	return bits
}

func (k *billyKernel) Stat(path string, st *Stat) int32 {
	fi, err := k.fs.Stat(path)
	if err != nil {
		return FromError(err)
	}
	fillStat(fi, st)
	return 0
}

func (k *billyKernel) Fstat(fd int32, st *Stat) int32 {
	f, ok := k.lookup(fd)
	if !ok {
		return ErrorCode(syscall.EBADF)
	}
	return k.Stat(f.path, st)
}

func (k *billyKernel) ReadDirEntry(fd int32, ent *DirEntry) int32 {
	k.mu.Lock()
	defer k.mu.Unlock()

	f, ok := k.files[fd]
	if !ok {
		return ErrorCode(syscall.EBADF)
	}
	if !f.dir {
		return ErrorCode(syscall.ENOTDIR)
	}
	if f.pos >= len(f.entries) {
		return 0
	}

	fi := f.entries[f.pos]
	f.pos++
	*ent = DirEntry{
		Name:  fi.Name(),
		IsDir: fi.IsDir(),
		Size:  fi.Size(),
	}
	return 1
}
