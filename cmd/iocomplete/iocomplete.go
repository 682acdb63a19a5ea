/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package iocomplete

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/internal/wiring"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

func NewIOCompleteCmd() *cobra.Command {
	var (
		fragmentSpecs []string
		failed        bool
	)

	cmd := &cobra.Command{
		Use:   "io-complete [device-serial]",
		Short: "Record post-write statistics for the intent on device-serial",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg := config.GetConfig()

			l, err := logger.NewTag(config.NewLoggerConfig(cfg), "io-complete")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
				os.Exit(1)
			}

			fragments, err := parseFragments(fragmentSpecs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid --fragment value: %v\n", err)
				os.Exit(1)
			}

			sched, err := wiring.NewScheduler(cfg, l)
			if err != nil {
				l.Error("Failed to wire scheduler", "err", err)
				os.Exit(1)
			}

			var ioErr error
			if failed {
				ioErr = errors.New("io-complete: write reported failed by caller")
			}

			if err := sched.IOComplete(ctx, args[0], fragments, ioErr); err != nil {
				l.Error("io_complete failed", "err", err)
				os.Exit(1)
			}

			fmt.Printf("Recorded io_complete for device %s (%d fragments)\n", args[0], len(fragments))
		},
	}

	cmd.Flags().StringSliceVar(&fragmentSpecs, "fragment", nil, "location=size pair, repeatable")
	cmd.Flags().BoolVar(&failed, "failed", false, "Mark the write this io_complete follows as failed")
	return cmd
}

func parseFragments(specs []string) ([]types.Fragment, error) {
	fragments := make([]types.Fragment, 0, len(specs))
	for _, spec := range specs {
		parts := strings.SplitN(spec, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected location=size, got %q", spec)
		}
		size, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad size in %q: %w", spec, err)
		}
		fragments = append(fragments, types.Fragment{Location: parts[0], Size: size})
	}
	return fragments, nil
}
