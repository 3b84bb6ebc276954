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
	"fmt"
	"time"

	"github.com/fiosemu/fiosemu/internal/fios"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type statOutput struct {
	Path     string    `yaml:"path"`
	Size     int64     `yaml:"size"`
	Mode     string    `yaml:"mode"`
	Flags    []string  `yaml:"flags,flow"`
	Uid      int64     `yaml:"uid"`
	Gid      int64     `yaml:"gid"`
	Accessed time.Time `yaml:"accessed"`
	Modified time.Time `yaml:"modified"`
	Created  time.Time `yaml:"created"`
}

func flagNames(f fios.StatFlags) []string {
	names := []string{}
	if f&fios.StatDirectory != 0 {
		names = append(names, "directory")
	}
	if f&fios.StatReadable != 0 {
		names = append(names, "readable")
	}
	if f&fios.StatWritable != 0 {
		names = append(names, "writable")
	}
	return names
}

func newStatOutput(path string, st *fios.Stat) statOutput {
	return statOutput{
		Path:     path,
		Size:     int64(st.FileSize),
		Mode:     fmt.Sprintf("%06o", st.Mode),
		Flags:    flagNames(st.StatFlags),
		Uid:      st.Uid,
		Gid:      st.Gid,
		Accessed: time.Unix(0, st.AccessDate).UTC(),
		Modified: time.Unix(0, st.ModificationDate).UTC(),
		Created:  time.Unix(0, st.CreationDate).UTC(),
	}
}

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Print the stat of a path as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
			var st fios.Stat
			if res := s.lib.StatSync(cmd.Context(), nil, args[0], &st); res != fios.OK {
				return &requestError{request: "stat", path: args[0], value: int64(res)}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(newStatOutput(args[0], &st))
		}),
	}
}
