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

func newCatCmd(a *app) *cobra.Command {
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "Copy a file to standard output",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if chunkSize <= 0 {
				return fmt.Errorf("chunk-size must be positive, got %d", chunkSize)
			}
			ctx := cmd.Context()
			path := args[0]

			fh, res := s.lib.FHOpenSync(ctx, nil, path, &fios.OpenParams{OpenFlags: fios.OpenRead})
			if res != fios.OK {
				return &requestError{request: "open", path: path, value: int64(res)}
			}
			defer func() {
				if res := s.lib.FHCloseSync(ctx, nil, fh); res != fios.OK {
					logger.Warnf("cat: closing %q: %v", path, res)
				}
			}()

			size := s.lib.FHGetSize(ctx, fh)
			if size < 0 {
				return &requestError{request: "size", path: path, value: int64(size)}
			}

			// Reads never ask for more than what is left, so none comes up short.
			buf := make([]byte, chunkSize)
			for left := int64(size); left > 0; {
				n := s.lib.FHReadSync(ctx, nil, fh, buf[:min(int64(chunkSize), left)])
				if n < 0 {
					return &requestError{request: "read", path: path, value: int64(n)}
				}
				if n == 0 {
					break
				}
				if _, err := cmd.OutOrStdout().Write(buf[:n]); err != nil {
					return err
				}
				left -= int64(n)
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 64*1024, "The number of bytes requested by each read.")
	return cmd
}
