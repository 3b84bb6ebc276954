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

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fiosemu/fiosemu/cfg"
	"github.com/fiosemu/fiosemu/common"
	"github.com/fiosemu/fiosemu/internal/fios"
	"github.com/fiosemu/fiosemu/internal/locker"
	"github.com/fiosemu/fiosemu/internal/logger"
	"github.com/fiosemu/fiosemu/internal/monitor"
	"github.com/fiosemu/fiosemu/internal/mount"
	"github.com/fiosemu/fiosemu/internal/util"
	"github.com/fiosemu/fiosemu/metrics"
	"github.com/fiosemu/fiosemu/tracing"
	"github.com/spf13/cobra"
)

const (
	metricWorkers    = 3
	metricBufferSize = 1024
	shutdownTimeout  = 5 * time.Second
)

// session is one configured Library and the telemetry around it.
type session struct {
	config *cfg.Config
	lib    *fios.Library

	// Nil when metrics are not exported.
	metrics interface{ Close() }

	shutdown common.ShutdownFn
}

func (a *app) startSession(ctx context.Context) (*session, error) {
	c, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	if err = logger.InitLogFile(c.Logging, c.AppName); err != nil {
		return nil, fmt.Errorf("init log file: %w", err)
	}
	if c.Debug.ExitOnInvariantViolation {
		locker.EnableInvariantsCheck()
	}
	if c.Debug.LogMutex {
		locker.EnableDebugMessages()
	}

	sessionID := monitor.NewSessionID()
	logger.Debugf("fiosemu %s: session %s, backend %s", common.GetVersion(), sessionID, c.Backend.Kind)
	if stringified, err := util.YAMLStringify(c); err == nil {
		logger.Debugf("fiosemu config:\n%s", stringified)
	}

	s := &session{config: c}
	s.shutdown = common.JoinShutdownFunc(
		monitor.SetupOTelMetricExporters(ctx, c, sessionID),
		monitor.SetupTracing(ctx, c, sessionID))

	var metricHandle metrics.MetricHandle = metrics.NewNoopMetrics()
	if c.Metrics.PrometheusPort > 0 {
		mh, err := metrics.NewOTelMetrics(ctx, metricWorkers, metricBufferSize)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("create metrics: %w", err)
		}
		metricHandle = mh
		s.metrics = mh
	}
	traceHandle := tracing.NewNoopTracer()
	if c.Monitoring.ExperimentalTracingMode != "" {
		traceHandle = tracing.NewOTelTracer()
	}

	k, err := a.newKernel(c)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("create %s backend: %w", c.Backend.Kind, err)
	}

	s.lib = fios.NewLibrary(&fios.LibraryConfig{
		Kernel:       k,
		Translator:   mount.NewTable(c.Backend.Mounts),
		MetricHandle: metricHandle,
		TraceHandle:  traceHandle,
		CreateMode:   uint32(c.Backend.CreateMode),
	})
	s.lib.Initialize()
	return s, nil
}

func (s *session) close() {
	if s.lib != nil {
		s.lib.Terminate()
	}
	if s.metrics != nil {
		s.metrics.Close()
	}
	if err := common.ShutdownWithTimeout(s.shutdown, shutdownTimeout); err != nil {
		logger.Warnf("telemetry shutdown: %v", err)
	}
	logger.Close()
}

// withSession runs fn against a fresh session that is closed afterwards.
func (a *app) withSession(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := a.startSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()
		return fn(cmd, s, args)
	}
}

// requestError reports a request that recorded a failure.
type requestError struct {
	request string
	path    string
	value   int64
}

func (e *requestError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.request, e.path, fios.Result(e.value))
}
