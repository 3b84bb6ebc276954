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

package kernel_test

import (
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/fiosemu/fiosemu/internal/kernel"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
)

func TestBillyKernel(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

const saveContents = "0123456789abcdefghij"

type BillyKernelTest struct {
	fs billy.Filesystem
	k  kernel.Kernel
}

func init() { RegisterTestSuite(&BillyKernelTest{}) }

var _ SetUpInterface = &BillyKernelTest{}

func (t *BillyKernelTest) SetUp(ti *TestInfo) {
	t.fs = memfs.New()
	AssertEq(nil, util.WriteFile(t.fs, "/app0/data/save.bin", []byte(saveContents), 0644))
	AssertEq(nil, util.WriteFile(t.fs, "/app0/data/b.txt", []byte("bb"), 0644))
	AssertEq(nil, t.fs.MkdirAll("/app0/data/sub", 0755))
	t.k = kernel.NewBilly(t.fs)
}

func (t *BillyKernelTest) open(path string) int32 {
	fd := t.k.Open(path, kernel.ReadOnly, 0)
	AssertGe(fd, 3)
	return fd
}

func code(errno syscall.Errno) int64 {
	return int64(kernel.ErrorCode(errno))
}

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (t *BillyKernelTest) DescriptorsStartAfterStandardStreams() {
	fd1 := t.open("/app0/data/save.bin")
	fd2 := t.open("/app0/data/b.txt")

	ExpectEq(3, fd1)
	ExpectEq(4, fd2)
}

func (t *BillyKernelTest) DescriptorsAreReused() {
	fd1 := t.open("/app0/data/save.bin")
	t.open("/app0/data/b.txt")
	AssertEq(0, t.k.Close(fd1))

	fd3 := t.open("/app0/data/b.txt")

	ExpectEq(fd1, fd3)
}

func (t *BillyKernelTest) OpenMissingFile() {
	fd := t.k.Open("/app0/missing", kernel.ReadOnly, 0)

	ExpectEq(kernel.ErrorCode(syscall.ENOENT), fd)
	ExpectLt(fd, 0)
}

func (t *BillyKernelTest) OpenDirectoryWithoutFlag() {
	fd := t.k.Open("/app0/data", kernel.ReadOnly, 0)

	ExpectEq(kernel.ErrorCode(syscall.EISDIR), fd)
}

func (t *BillyKernelTest) OpenFileAsDirectory() {
	fd := t.k.Open("/app0/data/save.bin", kernel.Directory, 0)

	ExpectEq(kernel.ErrorCode(syscall.ENOTDIR), fd)
}

func (t *BillyKernelTest) CreateFile() {
	fd := t.k.Open("/app0/new.bin", kernel.WriteOnly|kernel.Create, 0o644)
	AssertGe(fd, 3)
	AssertEq(0, t.k.Close(fd))

	fi, err := t.fs.Stat("/app0/new.bin")

	AssertEq(nil, err)
	ExpectEq(0, fi.Size())
}

func (t *BillyKernelTest) CloseUnknownDescriptor() {
	ExpectEq(kernel.ErrorCode(syscall.EBADF), t.k.Close(42))
}

func (t *BillyKernelTest) SequentialReads() {
	fd := t.open("/app0/data/save.bin")
	buf := make([]byte, 8)

	ExpectEq(8, t.k.Read(fd, buf))
	ExpectEq("01234567", string(buf))
	ExpectEq(8, t.k.Read(fd, buf))
	ExpectEq("89abcdef", string(buf))
	ExpectEq(4, t.k.Read(fd, buf))
	ExpectEq("ghij", string(buf[:4]))
	ExpectEq(0, t.k.Read(fd, buf))
}

func (t *BillyKernelTest) ReadUnknownDescriptor() {
	ExpectEq(code(syscall.EBADF), t.k.Read(17, make([]byte, 1)))
}

func (t *BillyKernelTest) ReadvFillsBuffersInOrder() {
	fd := t.open("/app0/data/save.bin")
	a := make([]byte, 4)
	b := make([]byte, 6)

	n := t.k.Readv(fd, [][]byte{a, b})

	ExpectEq(10, n)
	ExpectEq("0123", string(a))
	ExpectEq("456789", string(b))
}

func (t *BillyKernelTest) ReadvStopsAtEndOfFile() {
	fd := t.open("/app0/data/b.txt")
	a := make([]byte, 1)
	b := make([]byte, 4)
	c := make([]byte, 4)

	n := t.k.Readv(fd, [][]byte{a, b, c})

	ExpectEq(2, n)
	ExpectEq("b", string(a))
	ExpectEq("b", string(b[:1]))
}

func (t *BillyKernelTest) PreadDoesNotMoveOffset() {
	fd := t.open("/app0/data/save.bin")
	buf := make([]byte, 4)

	ExpectEq(4, t.k.Pread(fd, buf, 10))
	ExpectEq("abcd", string(buf))
	ExpectEq(4, t.k.Read(fd, buf))
	ExpectEq("0123", string(buf))
}

func (t *BillyKernelTest) PreadShortRead() {
	fd := t.open("/app0/data/save.bin")
	buf := make([]byte, 10)

	ExpectEq(7, t.k.Pread(fd, buf, 13))
	ExpectEq("defghij", string(buf[:7]))
}

func (t *BillyKernelTest) PreadPastEnd() {
	fd := t.open("/app0/data/save.bin")

	ExpectEq(0, t.k.Pread(fd, make([]byte, 4), 100))
}

func (t *BillyKernelTest) LseekAndTell() {
	fd := t.open("/app0/data/save.bin")

	ExpectEq(5, t.k.Lseek(fd, 5, io.SeekStart))
	ExpectEq(7, t.k.Lseek(fd, 2, io.SeekCurrent))
	ExpectEq(20, t.k.Lseek(fd, 0, io.SeekEnd))
	ExpectEq(18, t.k.Lseek(fd, -2, io.SeekEnd))
}

func (t *BillyKernelTest) StatFile() {
	var st kernel.Stat

	AssertEq(0, t.k.Stat("/app0/data/save.bin", &st))

	ExpectEq(len(saveContents), st.Size)
	ExpectFalse(st.IsDir())
	ExpectEq(kernel.ModeRegular, st.Mode&kernel.ModeTypeMask)
	ExpectEq(0o644, st.Mode&kernel.ModePerm)
}

func (t *BillyKernelTest) StatDirectory() {
	var st kernel.Stat

	AssertEq(0, t.k.Stat("/app0/data/sub", &st))

	ExpectTrue(st.IsDir())
}

func (t *BillyKernelTest) StatMissing() {
	var st kernel.Stat

	ExpectEq(kernel.ErrorCode(syscall.ENOENT), t.k.Stat("/nope", &st))
}

func (t *BillyKernelTest) FstatMatchesStat() {
	fd := t.open("/app0/data/b.txt")
	var st kernel.Stat

	AssertEq(0, t.k.Fstat(fd, &st))

	ExpectEq(2, st.Size)
}

func (t *BillyKernelTest) ListDirectory() {
	fd := t.k.Open("/app0/data", kernel.Directory, 0)
	AssertGe(fd, 3)

	var names []string
	var ent kernel.DirEntry
	for t.k.ReadDirEntry(fd, &ent) == 1 {
		names = append(names, ent.Name)
	}

	ExpectThat(names, ElementsAre("b.txt", "save.bin", "sub"))
	ExpectEq(0, t.k.ReadDirEntry(fd, &ent))
	ExpectEq(0, t.k.Close(fd))
}

func (t *BillyKernelTest) ReadOnDirectoryDescriptor() {
	fd := t.k.Open("/app0/data", kernel.Directory, 0)
	AssertGe(fd, 3)

	ExpectEq(code(syscall.EISDIR), t.k.Read(fd, make([]byte, 1)))
}

func (t *BillyKernelTest) ReadDirEntryOnFile() {
	fd := t.open("/app0/data/b.txt")
	var ent kernel.DirEntry

	ExpectEq(kernel.ErrorCode(syscall.ENOTDIR), t.k.ReadDirEntry(fd, &ent))
}

func (t *BillyKernelTest) OSBackendReadsHostFiles() {
	dir, err := os.MkdirTemp("", "billy_kernel_test")
	AssertEq(nil, err)
	defer os.RemoveAll(dir)
	AssertEq(nil, os.WriteFile(dir+"/f.txt", []byte("host"), 0644))
	k := kernel.NewOS()

	fd := k.Open(dir+"/f.txt", kernel.ReadOnly, 0)
	AssertGe(fd, 3)
	buf := make([]byte, 8)

	ExpectEq(4, k.Read(fd, buf))
	ExpectEq("host", string(buf[:4]))
	ExpectEq(0, k.Close(fd))
}
