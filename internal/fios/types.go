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
	"time"
)

// Op identifies one request's recorded outcome. Valid ids start at 1.
type Op int32

// Handle is a file or directory handle. Values 0 through 2 are reserved.
type Handle int32

// Result is a status-kind outcome.
type Result int32

// Size is a size-kind outcome: a byte count, a file size or a negative code.
type Size int64

type Offset int64

// PathMax bounds the length of DirEntry.FullPath.
const PathMax = 1024

// Result codes. Kernel errors are passed through unchanged and have the form
// 0x80020000|errno.
const (
	OK   Result = 0
	Fail Result = -1

	ErrBadPath Result = -0x7f7dfffb // 0x80820005
	ErrEOF     Result = -0x7f7dfffa // 0x80820006
	ErrBadOp   Result = -0x7f7dfff6 // 0x8082000A
)

func (r Result) String() string {
	switch r {
	case OK:
		return "OK"
	case Fail:
		return "Fail"
	case ErrBadPath:
		return "ErrBadPath"
	case ErrEOF:
		return "ErrEOF"
	case ErrBadOp:
		return "ErrBadOp"
	}
	return fmt.Sprintf("%#x", uint32(r))
}

type OpEvent uint8

const (
	EventComplete OpEvent = 1
	EventDelete   OpEvent = 2
	EventStart    OpEvent = 3
)

// OpCallback receives completion events. A non-zero return is logged and
// otherwise ignored.
type OpCallback func(ctx any, op Op, event OpEvent, err int32) int32

// OpAttr carries per-request attributes. Only Callback and CallbackContext
// have an effect; the rest are accepted for compatibility.
type OpAttr struct {
	Deadline        time.Duration
	Callback        OpCallback
	CallbackContext any
	Priority        int8
	OpFlags         uint32
	UserTag         uint32
	UserPtr         any
}

func (a *OpAttr) hasCallback() bool {
	return a != nil && a.Callback != nil
}

// OpenFlags is the 32-bit open flag word of OpenParams.
type OpenFlags uint32

const (
	OpenRead      OpenFlags = 0x0001
	OpenWrite     OpenFlags = 0x0002
	OpenReadWrite OpenFlags = OpenRead | OpenWrite
	OpenAppend    OpenFlags = 0x0004
	OpenCreate    OpenFlags = 0x0008
	OpenTruncate  OpenFlags = 0x0010
	OpenDirect    OpenFlags = 0x1000
)

type OpenParams struct {
	OpenFlags OpenFlags
	OpFlags   uint16
	Buffer    []byte
}

type Whence int

const (
	WhenceSet     Whence = 0
	WhenceCurrent Whence = 1
	WhenceEnd     Whence = 2
)

type StatFlags uint32

const (
	StatDirectory StatFlags = 1 << 0
	StatReadable  StatFlags = 1 << 1
	StatWritable  StatFlags = 1 << 2
)

// Stat describes a path. Dates are nanoseconds since the Unix epoch.
type Stat struct {
	FileSize         Offset
	AccessDate       int64
	ModificationDate int64
	CreationDate     int64
	StatFlags        StatFlags
	Uid              int64
	Gid              int64
	Dev              int64
	Ino              int64
	Mode             int64
}

// DirEntry is one record of a directory listing. FullPath is the directory's
// virtual path joined with the entry name; the name starts at OffsetToName.
type DirEntry struct {
	FileSize       Offset
	StatFlags      StatFlags
	NameLength     uint16
	FullPathLength uint16
	OffsetToName   uint16
	FullPath       string
}

func (e *DirEntry) Name() string {
	return e.FullPath[e.OffsetToName:]
}
