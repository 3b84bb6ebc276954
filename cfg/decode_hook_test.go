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

package cfg

import (
	"testing"

	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseArgs(t *testing.T, args []string) (*Config, error) {
	t.Helper()
	v := viper.New()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse(args))

	var c Config
	err := v.Unmarshal(&c, viper.DecodeHook(DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
	})
	return &c, err
}

func TestParsingDefaults(t *testing.T) {
	c, err := parseArgs(t, nil)

	require.NoError(t, err)
	assert.Equal(t, BackendKindOS, c.Backend.Kind)
	assert.Equal(t, Octal(0777), c.Backend.CreateMode)
	assert.Equal(t, TextLogFormat, c.Logging.Format)
	assert.Equal(t, InfoLogSeverity, c.Logging.Severity)
	assert.Equal(t, int64(10), c.Logging.LogRotate.BackupFileCount)
	assert.Equal(t, int64(512), c.Logging.LogRotate.MaxFileSizeMb)
	assert.True(t, c.Logging.LogRotate.Compress)
	assert.Empty(t, c.Backend.Mounts)
}

func TestParsingSuccess(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		testFn func(*testing.T, *Config)
	}{
		{
			name: "create mode",
			args: []string{"--create-mode=644"},
			testFn: func(t *testing.T, c *Config) {
				assert.Equal(t, Octal(0644), c.Backend.CreateMode)
			},
		},
		{
			name: "backend",
			args: []string{"--backend=MEMORY"},
			testFn: func(t *testing.T, c *Config) {
				assert.Equal(t, BackendKindMemory, c.Backend.Kind)
			},
		},
		{
			name: "severity",
			args: []string{"--log-severity=trace"},
			testFn: func(t *testing.T, c *Config) {
				assert.Equal(t, TraceLogSeverity, c.Logging.Severity)
			},
		},
		{
			name: "mounts",
			args: []string{"--mount=/app0=/srv/game", "--mount=/data=/srv/data"},
			testFn: func(t *testing.T, c *Config) {
				assert.Equal(t, []MountPoint{
					{Virtual: "/app0", Host: "/srv/game"},
					{Virtual: "/data", Host: "/srv/data"},
				}, c.Backend.Mounts)
			},
		},
		{
			name: "app0 dir",
			args: []string{"--app0-dir=/srv/game"},
			testFn: func(t *testing.T, c *Config) {
				assert.Equal(t, ResolvedPath("/srv/game"), c.Backend.App0Dir)
			},
		},
		{
			name: "debug",
			args: []string{"--debug_mutex", "--debug_invariants"},
			testFn: func(t *testing.T, c *Config) {
				assert.True(t, c.Debug.LogMutex)
				assert.True(t, c.Debug.ExitOnInvariantViolation)
			},
		},
		{
			name: "prometheus port",
			args: []string{"--prometheus-port=9100"},
			testFn: func(t *testing.T, c *Config) {
				assert.Equal(t, int64(9100), c.Metrics.PrometheusPort)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := parseArgs(t, tc.args)

			if assert.NoError(t, err) {
				tc.testFn(t, c)
			}
		})
	}
}

func TestParsingError(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad octal", args: []string{"--create-mode=99"}},
		{name: "bad backend", args: []string{"--backend=ftp"}},
		{name: "bad severity", args: []string{"--log-severity=loud"}},
		{name: "bad mount", args: []string{"--mount=/app0"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseArgs(t, tc.args)

			assert.Error(t, err)
		})
	}
}
