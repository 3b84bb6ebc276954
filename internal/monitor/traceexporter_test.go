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

package monitor

import (
	"bytes"
	"context"
	"testing"

	"github.com/fiosemu/fiosemu/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupTracingDisabled(t *testing.T) {
	c := &cfg.Config{}

	shutdown := SetupTracing(context.Background(), c, NewSessionID())

	assert.Nil(t, shutdown)
}

func TestSetupTracingStdout(t *testing.T) {
	var buf bytes.Buffer
	saved := traceWriter
	traceWriter = &buf
	t.Cleanup(func() { traceWriter = saved })
	c := &cfg.Config{Monitoring: cfg.MonitoringConfig{ExperimentalTracingMode: cfg.StdoutTracingMode}}

	shutdown := SetupTracing(context.Background(), c, "session-2")
	require.NotNil(t, shutdown)
	_, span := otel.Tracer("monitor_test").Start(context.Background(), "FHOpen")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "\"Name\": \"FHOpen\"")
	assert.Contains(t, buf.String(), "session-2")
}
