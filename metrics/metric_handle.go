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

package metrics

import (
	"context"
	"time"
)

// FiosOp is a request kind reported by the fios_op attribute.
type FiosOp string

// Constants for attribute FiosOp
const (
	FiosOpClose    FiosOp = "Close"
	FiosOpDirClose FiosOp = "DirClose"
	FiosOpDirOpen  FiosOp = "DirOpen"
	FiosOpDirRead  FiosOp = "DirRead"
	FiosOpExists   FiosOp = "Exists"
	FiosOpFileRead FiosOp = "FileRead"
	FiosOpGetSize  FiosOp = "GetSize"
	FiosOpOpen     FiosOp = "Open"
	FiosOpOthers   FiosOp = "Others"
	FiosOpPread    FiosOp = "Pread"
	FiosOpRead     FiosOp = "Read"
	FiosOpReadv    FiosOp = "Readv"
	FiosOpStat     FiosOp = "Stat"
)

// FiosOps lists every FiosOp in attribute order.
var FiosOps = []FiosOp{
	FiosOpClose, FiosOpDirClose, FiosOpDirOpen, FiosOpDirRead, FiosOpExists,
	FiosOpFileRead, FiosOpGetSize, FiosOpOpen, FiosOpOthers, FiosOpPread,
	FiosOpRead, FiosOpReadv, FiosOpStat,
}

// ErrorCategory groups failed results for the fios_error_category attribute.
type ErrorCategory string

// Constants for attribute ErrorCategory
const (
	ErrorCategoryBADHANDLE  ErrorCategory = "BAD_HANDLE"
	ErrorCategoryBADPATH    ErrorCategory = "BAD_PATH"
	ErrorCategoryIOERROR    ErrorCategory = "IO_ERROR"
	ErrorCategoryISADIR     ErrorCategory = "IS_A_DIR"
	ErrorCategoryMISCERROR  ErrorCategory = "MISC_ERROR"
	ErrorCategoryNOFILE     ErrorCategory = "NO_FILE_OR_DIR"
	ErrorCategoryNOTADIR    ErrorCategory = "NOT_A_DIR"
	ErrorCategoryPERMERROR  ErrorCategory = "PERM_ERROR"
	ErrorCategoryFILEEXISTS ErrorCategory = "FILE_EXISTS"
)

// ErrorCategories lists every ErrorCategory in attribute order.
var ErrorCategories = []ErrorCategory{
	ErrorCategoryBADHANDLE, ErrorCategoryBADPATH, ErrorCategoryFILEEXISTS,
	ErrorCategoryIOERROR, ErrorCategoryISADIR, ErrorCategoryMISCERROR,
	ErrorCategoryNOFILE, ErrorCategoryNOTADIR, ErrorCategoryPERMERROR,
}

// MetricHandle provides an interface for recording request metrics.
// The methods of this interface are safe for concurrent use.
type MetricHandle interface {
	// ExistenceCacheCount - The cumulative number of existence cache lookups along with cache hit - true/false.
	ExistenceCacheCount(inc int64, cacheHit bool)

	// OpsCount - The cumulative number of requests processed by the library.
	OpsCount(inc int64, fiosOp FiosOp)

	// OpsErrorCount - The cumulative number of requests that recorded a failure result.
	OpsErrorCount(inc int64, errorCategory ErrorCategory, fiosOp FiosOp)

	// OpsLatency - The cumulative distribution of request latencies.
	OpsLatency(ctx context.Context, latency time.Duration, fiosOp FiosOp)

	// PendingResults - The number of recorded results not yet waited on or deleted.
	PendingResults(inc int64)

	// ReadBytesCount - The cumulative number of bytes transferred by read requests.
	ReadBytesCount(inc int64)
}
