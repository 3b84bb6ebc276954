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
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fiosemu/fiosemu/cfg"
	"github.com/fiosemu/fiosemu/internal/kernel"
	"github.com/fiosemu/fiosemu/internal/kernel/kerneltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFiles = map[string]string{
	"/data/short.txt":         "1234567",
	"/data/levels/a.lvl":      "aaaa",
	"/data/levels/b.lvl":      "bb",
	"/data/levels/nested/x":   "x",
	"/srv/game/eboot.bin":     "boot",
	"/srv/game/sce_sys/param": "param",
}

type result struct {
	out    string
	config *cfg.Config
	err    error
}

// execute runs the command line against an in-memory backend seeded with
// testFiles.
func execute(t *testing.T, args ...string) result {
	t.Helper()
	var r result
	rootCmd, err := newRootCmd(func(c *cfg.Config) (kernel.Kernel, error) {
		r.config = c
		return kerneltest.NewMemory(testFiles)
	})
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	r.err = rootCmd.ExecuteContext(context.Background())
	r.out = out.String()
	return r
}

func TestDefaultConfig(t *testing.T) {
	r := execute(t, "exists", "/data/short.txt")

	require.NoError(t, r.err)
	c := r.config
	assert.Equal(t, cfg.BackendKindOS, c.Backend.Kind)
	assert.Equal(t, cfg.DefaultCreateMode, c.Backend.CreateMode)
	assert.Empty(t, c.Backend.Mounts)
	assert.Equal(t, cfg.InfoLogSeverity, c.Logging.Severity)
	assert.Equal(t, cfg.TextLogFormat, c.Logging.Format)
	assert.Equal(t, cfg.LogRotateLoggingConfig{BackupFileCount: 10, Compress: true, MaxFileSizeMb: 512}, c.Logging.LogRotate)
	assert.Equal(t, int64(0), c.Metrics.PrometheusPort)
	assert.Empty(t, c.Monitoring.ExperimentalTracingMode)
	assert.False(t, c.Debug.ExitOnInvariantViolation)
}

func TestArgParsing(t *testing.T) {
	testcases := []struct {
		name     string
		args     []string
		actualFn func(c *cfg.Config) any
		expected any
	}{
		{
			name:     "app-name",
			args:     []string{"--app-name=PPSA01234"},
			actualFn: func(c *cfg.Config) any { return c.AppName },
			expected: "PPSA01234",
		},
		{
			name:     "backend",
			args:     []string{"--backend=MEMORY"},
			actualFn: func(c *cfg.Config) any { return c.Backend.Kind },
			expected: cfg.BackendKindMemory,
		},
		{
			name:     "create-mode",
			args:     []string{"--create-mode=640"},
			actualFn: func(c *cfg.Config) any { return c.Backend.CreateMode },
			expected: cfg.Octal(0o640),
		},
		{
			name:     "mount",
			args:     []string{"--mount=/data=/srv/data", "--mount=/tmp/=/srv/tmp"},
			actualFn: func(c *cfg.Config) any { return c.Backend.Mounts },
			expected: []cfg.MountPoint{{Virtual: "/data", Host: "/srv/data"}, {Virtual: "/tmp", Host: "/srv/tmp"}},
		},
		{
			name:     "app0-dir",
			args:     []string{"--app0-dir=/srv/game"},
			actualFn: func(c *cfg.Config) any { return c.Backend.Mounts },
			expected: []cfg.MountPoint{{Virtual: "/app0", Host: "/srv/game"}},
		},
		{
			name:     "explicit app0 mount wins",
			args:     []string{"--app0-dir=/srv/game", "--mount=/app0=/srv/other"},
			actualFn: func(c *cfg.Config) any { return c.Backend.Mounts },
			expected: []cfg.MountPoint{{Virtual: "/app0", Host: "/srv/other"}},
		},
		{
			name:     "log-severity",
			args:     []string{"--log-severity=error"},
			actualFn: func(c *cfg.Config) any { return c.Logging.Severity },
			expected: cfg.ErrorLogSeverity,
		},
		{
			name:     "log-format",
			args:     []string{"--log-format=JSON"},
			actualFn: func(c *cfg.Config) any { return c.Logging.Format },
			expected: cfg.JSONLogFormat,
		},
		{
			name:     "log-rotate",
			args:     []string{"--log-rotate-max-file-size-mb=4", "--log-rotate-backup-file-count=0", "--log-rotate-compress=false"},
			actualFn: func(c *cfg.Config) any { return c.Logging.LogRotate },
			expected: cfg.LogRotateLoggingConfig{MaxFileSizeMb: 4},
		},
		{
			name:     "debug flags",
			args:     []string{"--debug_invariants", "--debug_mutex"},
			actualFn: func(c *cfg.Config) any { return c.Debug },
			expected: cfg.DebugConfig{ExitOnInvariantViolation: true, LogMutex: true},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"exists"}, tc.args...)
			r := execute(t, append(args, "/data/short.txt")...)

			require.NoError(t, r.err)
			assert.Equal(t, tc.expected, tc.actualFn(r.config))
		})
	}
}

func TestInvalidFlags(t *testing.T) {
	testcases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"backend", []string{"--backend=ftp"}, "invalid backend value: ftp"},
		{"create-mode not octal", []string{"--create-mode=9"}, "error while unmarshaling the config"},
		{"create-mode too large", []string{"--create-mode=1777"}, "create-mode 1777 out of range"},
		{"relative mount", []string{"--mount=data=/srv/data"}, `mount point "data" is not absolute`},
		{"duplicate mount", []string{"--mount=/d=/a", "--mount=/d/=/b"}, `mount point "/d" is declared more than once`},
		{"malformed mount", []string{"--mount=/data"}, "expected <virtual>=<host>"},
		{"log format", []string{"--log-format=xml"}, `unsupported log format "xml"`},
		{"log severity", []string{"--log-severity=loud"}, "invalid log severity level"},
		{"log rotate", []string{"--log-rotate-max-file-size-mb=0"}, "max-file-size-mb should be atleast 1"},
		{"prometheus port", []string{"--prometheus-port=70000"}, "prometheus-port 70000 out of range"},
		{"tracing mode", []string{"--experimental-tracing-mode=jaeger"}, `unsupported tracing mode "jaeger"`},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"exists"}, tc.args...)
			r := execute(t, append(args, "/data/short.txt")...)

			assert.ErrorContains(t, r.err, tc.wantErr)
			assert.Nil(t, r.config, "backend must not be built from an invalid config")
		})
	}
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0644))
	return p
}

func TestConfigFile(t *testing.T) {
	p := writeConfigFile(t, `
app-name: from-file
backend:
  kind: memory
  create-mode: "755"
  mounts:
    - /data=/srv/data
logging:
  severity: warning
  log-rotate:
    max-file-size-mb: 8
`)

	r := execute(t, "exists", "--config-file="+p, "/data/short.txt")

	require.NoError(t, r.err)
	assert.Equal(t, "from-file", r.config.AppName)
	assert.Equal(t, cfg.BackendKindMemory, r.config.Backend.Kind)
	assert.Equal(t, cfg.Octal(0o755), r.config.Backend.CreateMode)
	assert.Equal(t, []cfg.MountPoint{{Virtual: "/data", Host: "/srv/data"}}, r.config.Backend.Mounts)
	assert.Equal(t, cfg.WarningLogSeverity, r.config.Logging.Severity)
	assert.Equal(t, int64(8), r.config.Logging.LogRotate.MaxFileSizeMb)
	assert.Equal(t, int64(10), r.config.Logging.LogRotate.BackupFileCount)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	p := writeConfigFile(t, "app-name: from-file\nbackend:\n  create-mode: \"755\"\n")

	r := execute(t, "exists", "--config-file="+p, "--app-name=from-flag", "/data/short.txt")

	require.NoError(t, r.err)
	assert.Equal(t, "from-flag", r.config.AppName)
	assert.Equal(t, cfg.Octal(0o755), r.config.Backend.CreateMode)
}

func TestMissingConfigFile(t *testing.T) {
	r := execute(t, "exists", "--config-file="+filepath.Join(t.TempDir(), "nope.yaml"), "/a")

	assert.ErrorContains(t, r.err, "error while reading the config file")
}

func TestInvalidConfigFile(t *testing.T) {
	p := writeConfigFile(t, "backend:\n  kind: [1, 2]\n")

	r := execute(t, "exists", "--config-file="+p, "/a")

	assert.ErrorContains(t, r.err, "error while unmarshaling the config")
}

func TestLogFileIsCreated(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "fiosemu.log")

	r := execute(t, "exists", "--log-file="+logFile, "--log-severity=trace", "/data/short.txt")

	require.NoError(t, r.err)
	assert.Equal(t, cfg.ResolvedPath(logFile), r.config.Logging.FilePath)
	contents, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "Exists")
}

func TestBackendErrorIsReported(t *testing.T) {
	rootCmd, err := newRootCmd(func(c *cfg.Config) (kernel.Kernel, error) {
		return nil, errors.New("no devices")
	})
	require.NoError(t, err)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetArgs([]string{"exists", "--backend=unix", "/a"})

	err = rootCmd.Execute()

	assert.EqualError(t, err, "create unix backend: no devices")
}

func TestArgCounts(t *testing.T) {
	testcases := [][]string{
		{"stat"},
		{"stat", "/a", "/b"},
		{"exists"},
		{"cat"},
		{"ls", "/a", "/b"},
		{"replay"},
	}

	for _, args := range testcases {
		r := execute(t, args...)

		assert.Error(t, r.err, "%v", args)
		assert.Nil(t, r.config, "%v", args)
	}
}

func TestNewKernel(t *testing.T) {
	for _, kind := range []cfg.BackendKind{cfg.BackendKindOS, cfg.BackendKindMemory} {
		k, err := newKernel(&cfg.Config{Backend: cfg.BackendConfig{Kind: kind}})

		assert.NoError(t, err, kind)
		assert.NotNil(t, k, kind)
	}

	_, err := newKernel(&cfg.Config{Backend: cfg.BackendConfig{Kind: "tape"}})
	assert.EqualError(t, err, `unsupported backend "tape"`)
}
