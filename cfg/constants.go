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

const (
	// BackendKindOS serves requests from the host file system through go-billy.
	BackendKindOS BackendKind = "os"

	// BackendKindMemory serves requests from an in-memory file system.
	BackendKindMemory BackendKind = "memory"

	// BackendKindUnix issues raw syscalls against host file descriptors.
	BackendKindUnix BackendKind = "unix"
)

const (
	TextLogFormat = "text"
	JSONLogFormat = "json"
)

const (
	// StdoutTracingMode exports spans to stdout.
	StdoutTracingMode = "stdout"

	// App0MountPoint is the virtual prefix translated paths are rooted at.
	App0MountPoint = "/app0"

	// DefaultCreateMode is applied when a create request carries no native mode.
	DefaultCreateMode Octal = 0777

	// MaxPrometheusPort is the largest usable TCP port.
	MaxPrometheusPort = 65535
)
