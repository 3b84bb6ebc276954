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

	"github.com/fiosemu/fiosemu/internal/fios"
	"github.com/fiosemu/fiosemu/internal/logger"
	"github.com/spf13/cobra"
)

func newLsCmd(a *app) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls <dir>",
		Short: "List a directory",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
			ctx := cmd.Context()
			dir := args[0]

			dh, res := s.lib.DHOpenSync(ctx, nil, dir)
			if res < 0 {
				return &requestError{request: "opendir", path: dir, value: int64(res)}
			}
			defer func() {
				if res := s.lib.DHCloseSync(ctx, nil, dh); res != fios.OK {
					logger.Warnf("ls: closing %q: %v", dir, res)
				}
			}()

			out := cmd.OutOrStdout()
			for {
				var ent fios.DirEntry
				res := s.lib.DHReadSync(ctx, nil, dh, &ent)
				if res == fios.ErrEOF {
					return nil
				}
				if res != fios.OK {
					return &requestError{request: "readdir", path: dir, value: int64(res)}
				}

				name := ent.Name()
				if ent.StatFlags&fios.StatDirectory != 0 {
					name += "/"
				}
				if long {
					fmt.Fprintf(out, "%10d  %s\n", ent.FileSize, name)
				} else {
					fmt.Fprintln(out, name)
				}
			}
		}),
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Print the size of each entry.")
	return cmd
}
