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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(msg string) ShutdownFn {
	return func(context.Context) error { return errors.New(msg) }
}

func TestJoinShutdownFunc(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		fns          []ShutdownFn
		expectedErrs []string
	}{
		{"none", nil, nil},
		{"all_ok", []ShutdownFn{ok, ok}, nil},
		{"nil_entries_skipped", []ShutdownFn{nil, ok, nil}, nil},
		{"one_failure", []ShutdownFn{ok, failing("prometheus")}, []string{"prometheus"}},
		{"every_failure_kept", []ShutdownFn{failing("meter"), ok, failing("tracer")}, []string{"meter", "tracer"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := JoinShutdownFunc(tc.fns...)(context.Background())

			if len(tc.expectedErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, e := range tc.expectedErrs {
				assert.ErrorContains(t, err, e)
			}
		})
	}
}

func TestJoinShutdownFuncRunsInReverseOrder(t *testing.T) {
	var calls []string
	record := func(name string) ShutdownFn {
		return func(context.Context) error {
			calls = append(calls, name)
			return nil
		}
	}

	err := JoinShutdownFunc(record("metrics"), record("tracing"), record("exporter"))(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"exporter", "tracing", "metrics"}, calls)
}

func TestShutdownWithTimeout(t *testing.T) {
	var deadline time.Time
	err := ShutdownWithTimeout(func(ctx context.Context) error {
		var ok bool
		deadline, ok = ctx.Deadline()
		assert.True(t, ok)
		return failing("flush")(ctx)
	}, time.Minute)

	assert.EqualError(t, err, "flush")
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 10*time.Second)
}

func TestShutdownWithTimeoutExpires(t *testing.T) {
	err := ShutdownWithTimeout(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, time.Millisecond)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestShutdownWithTimeoutNil(t *testing.T) {
	assert.NoError(t, ShutdownWithTimeout(nil, time.Second))
}
