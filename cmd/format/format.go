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

package format

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/internal/wiring"
)

func NewFormatCmd() *cobra.Command {
	var (
		fsType string
		unlock bool
	)

	cmd := &cobra.Command{
		Use:   "format [medium-id]",
		Short: "Format the medium with id medium-id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg := config.GetConfig()

			l, err := logger.NewTag(config.NewLoggerConfig(cfg), "format")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
				os.Exit(1)
			}

			sched, err := wiring.NewScheduler(cfg, l)
			if err != nil {
				l.Error("Failed to wire scheduler", "err", err)
				os.Exit(1)
			}

			if err := sched.Format(ctx, args[0], fsType, unlock); err != nil {
				l.Error("format failed", "err", err)
				os.Exit(1)
			}

			fmt.Printf("Formatted medium %s as %s\n", args[0], fsType)
		},
	}

	cmd.Flags().StringVar(&fsType, "fs-type", "ext4", "Filesystem type to format with")
	cmd.Flags().BoolVar(&unlock, "unlock", false, "Clear the medium's administrative lock after formatting")
	return cmd
}
