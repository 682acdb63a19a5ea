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

package readprepare

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/internal/wiring"
)

func NewReadPrepareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read-prepare [medium-id]",
		Short: "Mount the device holding medium-id for reading",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg := config.GetConfig()

			l, err := logger.NewTag(config.NewLoggerConfig(cfg), "read-prepare")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
				os.Exit(1)
			}

			sched, err := wiring.NewScheduler(cfg, l)
			if err != nil {
				l.Error("Failed to wire scheduler", "err", err)
				os.Exit(1)
			}

			intent, err := sched.ReadPrepare(ctx, args[0])
			if err != nil {
				l.Error("read_prepare failed", "err", err)
				os.Exit(1)
			}

			fmt.Printf("mount_root=%s medium_id=%s fs_type=%s device=%s\n",
				intent.MountRoot, intent.MediumID, intent.FSType, intent.Device.Serial)
		},
	}
	return cmd
}
