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

// CaptureRequestMetrics records the count and latency of one request, and its
// failure when category is not empty.
func CaptureRequestMetrics(ctx context.Context, metricHandle MetricHandle, fiosOp FiosOp, latency time.Duration, category ErrorCategory) {
	metricHandle.OpsCount(1, fiosOp)
	metricHandle.OpsLatency(ctx, latency, fiosOp)
	if category != "" {
		metricHandle.OpsErrorCount(1, category, fiosOp)
	}
}
