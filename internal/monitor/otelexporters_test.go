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
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fiosemu/fiosemu/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func freePort(t *testing.T) int64 {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	defer l.Close()
	return int64(l.Addr().(*net.TCPAddr).Port)
}

func TestSetupOTelMetricExportersWithoutPrometheus(t *testing.T) {
	c := &cfg.Config{AppName: "bench"}

	shutdown := SetupOTelMetricExporters(context.Background(), c, NewSessionID())

	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupOTelMetricExportersServesPrometheus(t *testing.T) {
	port := freePort(t)
	c := &cfg.Config{Metrics: cfg.MetricsConfig{PrometheusPort: port}}
	shutdown := SetupOTelMetricExporters(context.Background(), c, NewSessionID())
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	counter, err := otel.Meter("monitor_test").Int64Counter("fios/test_count")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/metrics", port))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	assert.True(t, strings.Contains(body, "fios_test_count"), body)
}

func TestGetResource(t *testing.T) {
	res, err := getResource(context.Background(), "bench", "session-1")

	require.NoError(t, err)
	attrs := res.Set()
	v, ok := attrs.Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, serviceName, v.AsString())
	v, ok = attrs.Value(semconv.ServiceInstanceIDKey)
	require.True(t, ok)
	assert.Equal(t, "session-1", v.AsString())
	v, ok = attrs.Value(attribute.Key(appNameAttrKey))
	require.True(t, ok)
	assert.Equal(t, "bench", v.AsString())
}

func TestGetResourceWithoutAppName(t *testing.T) {
	res, err := getResource(context.Background(), "", "session-1")

	require.NoError(t, err)
	_, ok := res.Set().Value(attribute.Key(appNameAttrKey))
	assert.False(t, ok)
}

func TestNewSessionIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}

func TestPrometheusServerStopsOnShutdown(t *testing.T) {
	port := freePort(t)
	opts, shutdown := setupPrometheus(port)
	require.Len(t, opts, 1)
	url := fmt.Sprintf("http://localhost:%d/metrics", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, shutdown(context.Background()))

	_, err := http.Get(url)
	assert.Error(t, err)
}

func TestSetupPrometheusDisabled(t *testing.T) {
	opts, shutdown := setupPrometheus(0)

	assert.Empty(t, opts)
	assert.Nil(t, shutdown)
}
