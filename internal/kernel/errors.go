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
	"io/fs"
	"syscall"
)

// errorBase is the facility prefix of kernel error codes.
const errorBase uint32 = 0x80020000

// ErrorCode returns the kernel error code for errno. The code is negative
// when viewed as an int32.
func ErrorCode(errno syscall.Errno) int32 {
	return int32(errorBase | uint32(errno))
}

// Errno extracts the errno from a kernel error code. ok is false when code
// is not a kernel error code.
func Errno(code int64) (errno syscall.Errno, ok bool) {
	if code >= 0 || code < -0x80000000 {
		return 0, false
	}
	u := uint32(int32(code))
	if u&0xffff0000 != errorBase {
		return 0, false
	}
	return syscall.Errno(u & 0xffff), true
}

// FromError maps a Go error onto a kernel error code. A nil error maps to 0.
func FromError(err error) int32 {
	if err == nil {
		return 0
	}

	var errno syscall.Errno
	switch {
	case errors.As(err, &errno):
		return ErrorCode(errno)
	case errors.Is(err, fs.ErrNotExist):
		return ErrorCode(syscall.ENOENT)
	case errors.Is(err, fs.ErrExist):
		return ErrorCode(syscall.EEXIST)
	case errors.Is(err, fs.ErrPermission):
		return ErrorCode(syscall.EACCES)
	case errors.Is(err, fs.ErrInvalid):
		return ErrorCode(syscall.EINVAL)
	case errors.Is(err, fs.ErrClosed):
		return ErrorCode(syscall.EBADF)
	default:
		return ErrorCode(syscall.EIO)
	}
}
