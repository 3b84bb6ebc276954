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
	"math"
	"syscall"

	"github.com/fiosemu/fiosemu/internal/kernel"
	"github.com/fiosemu/fiosemu/metrics"
)

// errorCategory classifies a recorded value for the ops error metric. It is
// empty for successes and for ErrEOF, which ends every directory listing.
func errorCategory(value int64) metrics.ErrorCategory {
	if value >= 0 || value == int64(ErrEOF) {
		return ""
	}

	switch value {
	case int64(ErrBadOp):
		return metrics.ErrorCategoryBADHANDLE
	case int64(ErrBadPath):
		return metrics.ErrorCategoryBADPATH
	}

	errno, ok := kernel.Errno(value)
	if !ok {
		return metrics.ErrorCategoryMISCERROR
	}
	switch errno {
	case syscall.ENOENT:
		return metrics.ErrorCategoryNOFILE
	case syscall.EBADF:
		return metrics.ErrorCategoryBADHANDLE
	case syscall.EISDIR:
		return metrics.ErrorCategoryISADIR
	case syscall.ENOTDIR:
		return metrics.ErrorCategoryNOTADIR
	case syscall.EACCES, syscall.EPERM:
		return metrics.ErrorCategoryPERMERROR
	case syscall.EEXIST:
		return metrics.ErrorCategoryFILEEXISTS
	case syscall.EIO:
		return metrics.ErrorCategoryIOERROR
	default:
		return metrics.ErrorCategoryMISCERROR
	}
}

// describe renders a recorded value for logs and spans.
func describe(value int64) string {
	if value < math.MinInt32 || value > math.MaxInt32 {
		return fmt.Sprintf("%d", value)
	}
	if errno, ok := kernel.Errno(value); ok {
		return fmt.Sprintf("%#x (%v)", uint32(value), errno)
	}
	return Result(value).String()
}

// UnimplementedError is the panic value of entry points that have no
// behavior.
type UnimplementedError struct {
	EntryPoint string
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("fios: %s is not implemented", e.EntryPoint)
}

func unimplemented(entryPoint string) {
	panic(&UnimplementedError{EntryPoint: entryPoint})
}
