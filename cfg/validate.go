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
	"fmt"
	"path"
)

func isValidLogRotateConfig(config *LogRotateLoggingConfig) error {
	if config.MaxFileSizeMb <= 0 {
		return fmt.Errorf("max-file-size-mb should be atleast 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidLogFormat(format string) error {
	if format != TextLogFormat && format != JSONLogFormat {
		return fmt.Errorf("unsupported log format %q", format)
	}
	return nil
}

func isValidMounts(mounts []MountPoint) error {
	seen := make(map[string]bool)
	for _, m := range mounts {
		if !path.IsAbs(m.Virtual) {
			return fmt.Errorf("mount point %q is not absolute", m.Virtual)
		}
		if seen[m.Virtual] {
			return fmt.Errorf("mount point %q is declared more than once", m.Virtual)
		}
		seen[m.Virtual] = true
	}
	return nil
}

func isValidTracingMode(mode string) error {
	if mode != "" && mode != StdoutTracingMode {
		return fmt.Errorf("unsupported tracing mode %q", mode)
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	var err error

	if err = isValidLogRotateConfig(&config.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	if err = isValidLogFormat(config.Logging.Format); err != nil {
		return fmt.Errorf("error parsing logging config: %w", err)
	}

	if config.Logging.Severity.Rank() < 0 {
		return fmt.Errorf("error parsing logging config: unknown severity %q", config.Logging.Severity)
	}

	if err = isValidMounts(config.Backend.Mounts); err != nil {
		return fmt.Errorf("error parsing mounts config: %w", err)
	}

	if config.Backend.CreateMode < 0 || config.Backend.CreateMode > 0777 {
		return fmt.Errorf("error parsing backend config: create-mode %o out of range", config.Backend.CreateMode)
	}

	if config.Metrics.PrometheusPort < 0 || config.Metrics.PrometheusPort > MaxPrometheusPort {
		return fmt.Errorf("error parsing metrics config: prometheus-port %d out of range", config.Metrics.PrometheusPort)
	}

	if err = isValidTracingMode(config.Monitoring.ExperimentalTracingMode); err != nil {
		return fmt.Errorf("error parsing monitoring config: %w", err)
	}

	return nil
}
