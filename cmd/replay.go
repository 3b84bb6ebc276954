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

	"github.com/fiosemu/fiosemu/internal/replay"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type workerReport struct {
	Worker   int              `yaml:"worker"`
	Outcomes []replay.Outcome `yaml:"outcomes"`
}

type replayReport struct {
	Script  string         `yaml:"script"`
	Workers []workerReport `yaml:"workers"`

	// Results left in the library when every worker finished.
	Pending int `yaml:"pending"`
}

func newReplayCmd(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Run a script of requests and print the waited results",
		Long: `Run a script of requests and print the waited results.

With --workers greater than one, every worker runs the whole script
concurrently against the same library.`,
		Args: cobra.ExactArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if workers < 1 {
				return fmt.Errorf("workers must be at least 1, got %d", workers)
			}
			script, err := replay.Load(args[0])
			if err != nil {
				return err
			}

			report := replayReport{Script: script.Name, Workers: make([]workerReport, workers)}
			g, ctx := errgroup.WithContext(cmd.Context())
			for w := range workers {
				g.Go(func() error {
					outcomes, err := replay.Run(ctx, s.lib, script)
					report.Workers[w] = workerReport{Worker: w, Outcomes: outcomes}
					return err
				})
			}
			if err = g.Wait(); err != nil {
				return err
			}
			report.Pending = s.lib.Pending()

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(report)
		}),
	}

	cmd.Flags().IntVar(&workers, "workers", 1, "The number of concurrent runs of the script.")
	return cmd
}
