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

package common

import (
	"context"
	"errors"
	"time"
)

// ShutdownFn flushes and stops one telemetry pipeline.
type ShutdownFn func(ctx context.Context) error

// JoinShutdownFunc returns a ShutdownFn that calls every non-nil function,
// last one first, so pipelines stop in the reverse order of their setup. The
// errors of all calls are joined.
func JoinShutdownFunc(shutdownFns ...ShutdownFn) ShutdownFn {
	return func(ctx context.Context) error {
		var errs []error
		for i := len(shutdownFns) - 1; i >= 0; i-- {
			if fn := shutdownFns[i]; fn != nil {
				errs = append(errs, fn(ctx))
			}
		}
		return errors.Join(errs...)
	}
}

// ShutdownWithTimeout calls fn with a context that expires after timeout. A
// nil fn is a no-op.
func ShutdownWithTimeout(fn ShutdownFn, timeout time.Duration) error {
	if fn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return fn(ctx)
}
