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
	"bytes"
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfigFile = `
app-name: demo
backend:
  kind: memory
  create-mode: "640"
  mounts:
    - /app0=/srv/game
    - /dev_usb=/mnt/usb
logging:
  format: json
  severity: warning
  log-rotate:
    max-file-size-mb: 16
    backup-file-count: 2
metrics:
  prometheus-port: 9100
`

func TestConfigFileDecoding(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(sampleConfigFile)))
	var c Config

	err := v.Unmarshal(&c, viper.DecodeHook(DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
	})

	require.NoError(t, err)
	assert.Equal(t, "demo", c.AppName)
	assert.Equal(t, BackendKindMemory, c.Backend.Kind)
	assert.Equal(t, Octal(0640), c.Backend.CreateMode)
	assert.Equal(t, []MountPoint{
		{Virtual: "/app0", Host: "/srv/game"},
		{Virtual: "/dev_usb", Host: "/mnt/usb"},
	}, c.Backend.Mounts)
	assert.Equal(t, JSONLogFormat, c.Logging.Format)
	assert.Equal(t, WarningLogSeverity, c.Logging.Severity)
	assert.Equal(t, int64(16), c.Logging.LogRotate.MaxFileSizeMb)
	assert.Equal(t, int64(2), c.Logging.LogRotate.BackupFileCount)
	assert.Equal(t, int64(9100), c.Metrics.PrometheusPort)
	assert.NoError(t, ValidateConfig(&c))
}
