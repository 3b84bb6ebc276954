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
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeIsNegative(t *testing.T) {
	c := ErrorCode(syscall.ENOENT)

	assert.Less(t, c, int32(0))
	assert.Equal(t, uint32(0x80020002), uint32(c))
}

func TestErrnoRoundTrip(t *testing.T) {
	errno, ok := Errno(int64(ErrorCode(syscall.EBADF)))

	assert.True(t, ok)
	assert.Equal(t, syscall.EBADF, errno)
}

func TestErrnoRejectsOtherCodes(t *testing.T) {
	for _, c := range []int64{0, 7, -1, int64(int32(-0x7f7dfff6))} {
		_, ok := Errno(c)
		assert.False(t, ok, "code %d", c)
	}
}

func TestFromError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int32
	}{
		{"nil", nil, 0},
		{"errno", syscall.ENOTDIR, ErrorCode(syscall.ENOTDIR)},
		{"wrapped errno", &os.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}, ErrorCode(syscall.EACCES)},
		{"not exist", fs.ErrNotExist, ErrorCode(syscall.ENOENT)},
		{"exist", fmt.Errorf("create: %w", fs.ErrExist), ErrorCode(syscall.EEXIST)},
		{"permission", fs.ErrPermission, ErrorCode(syscall.EACCES)},
		{"invalid", fs.ErrInvalid, ErrorCode(syscall.EINVAL)},
		{"closed", fs.ErrClosed, ErrorCode(syscall.EBADF)},
		{"other", fmt.Errorf("boom"), ErrorCode(syscall.EIO)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FromError(tc.err))
		})
	}
}
