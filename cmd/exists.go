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
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type existsOutput struct {
	Path   string `yaml:"path"`
	Exists bool   `yaml:"exists"`
}

func newExistsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <path>...",
		Short: "Report whether each path exists",
		Long: `Report whether each path exists. Answers are cached for the lifetime of
the session, so repeating a path does not query the backend again.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
			out := make([]existsOutput, 0, len(args))
			for _, p := range args {
				out = append(out, existsOutput{Path: p, Exists: s.lib.ExistsSync(cmd.Context(), nil, p)})
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(out)
		}),
	}
}
