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
	"io"
	"os"

	"github.com/fiosemu/fiosemu/cfg"
	"github.com/fiosemu/fiosemu/common"
	"github.com/fiosemu/fiosemu/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Destination of the stdout tracing mode. Replaced in tests.
var traceWriter io.Writer = os.Stdout

func initPropagators() {
	props := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(props)
}

// SetupTracing bootstraps the OpenTelemetry tracing pipeline. A nil return
// means tracing is disabled.
func SetupTracing(ctx context.Context, c *cfg.Config, sessionID string) common.ShutdownFn {
	tp, shutdown, err := newTraceProvider(ctx, c, sessionID)
	if err != nil {
		logger.Errorf("error occurred while setting up tracing: %v", err)
		return nil
	}
	if tp != nil {
		otel.SetTracerProvider(tp)
		initPropagators()
		return shutdown
	}

	return nil
}

func newTraceProvider(ctx context.Context, c *cfg.Config, sessionID string) (trace.TracerProvider, common.ShutdownFn, error) {
	switch c.Monitoring.ExperimentalTracingMode {
	case cfg.StdoutTracingMode:
		return newStdoutTraceProvider(ctx, c.AppName, sessionID)
	default:
		return nil, nil, nil
	}
}

func newStdoutTraceProvider(ctx context.Context, appName, sessionID string) (trace.TracerProvider, common.ShutdownFn, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(traceWriter),
		stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, err
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithBatcher(exporter)}
	if res, err := getResource(ctx, appName, sessionID); err == nil {
		opts = append(opts, sdktrace.WithResource(res))
	} else {
		logger.Warnf("Tracing without resource attributes: %v", err)
	}
	tp := sdktrace.NewTracerProvider(opts...)
	return tp, tp.Shutdown, nil
}
