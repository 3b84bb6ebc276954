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
	"strings"
)

// resolveApp0Mount turns app0-dir into a mount at /app0 unless a mount for
// /app0 has been declared explicitly.
func resolveApp0Mount(c *BackendConfig) {
	if c.App0Dir == "" {
		return
	}
	for _, m := range c.Mounts {
		if m.Virtual == App0MountPoint {
			return
		}
	}
	c.Mounts = append(c.Mounts, MountPoint{Virtual: App0MountPoint, Host: c.App0Dir})
}

func resolveLoggingConfig(c *LoggingConfig) {
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = TextLogFormat
	}
	if c.Severity == "" {
		c.Severity = InfoLogSeverity
	}
}

// Rationalize updates the config fields based on the values of other fields.
func Rationalize(c *Config) error {
	resolveApp0Mount(&c.Backend)
	resolveLoggingConfig(&c.Logging)
	if c.Backend.Kind == "" {
		c.Backend.Kind = BackendKindOS
	}
	return nil
}
