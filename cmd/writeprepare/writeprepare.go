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

package writeprepare

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/internal/wiring"
)

func NewWritePrepareCmd() *cobra.Command {
	var (
		family string
		size   uint64
		tags   string
	)

	cmd := &cobra.Command{
		Use:   "write-prepare",
		Short: "Prepare a mounted device to write size bytes of family carrying tags",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg := config.GetConfig()

			l, err := logger.NewTag(config.NewLoggerConfig(cfg), "write-prepare")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
				os.Exit(1)
			}

			sched, err := wiring.NewScheduler(cfg, l)
			if err != nil {
				l.Error("Failed to wire scheduler", "err", err)
				os.Exit(1)
			}

			var tagList []string
			if tags != "" {
				tagList = strings.Split(tags, ",")
			}

			intent, err := sched.WritePrepare(ctx, family, size, tagList)
			if err != nil {
				l.Error("write_prepare failed", "err", err)
				os.Exit(1)
			}

			fmt.Printf("mount_root=%s medium_id=%s fs_type=%s device=%s\n",
				intent.MountRoot, intent.MediumID, intent.FSType, intent.Device.Serial)
		},
	}

	cmd.Flags().StringVar(&family, "family", "tape", "Medium family")
	cmd.Flags().Uint64Var(&size, "size", 0, "Bytes the write will occupy")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated required tags")

	return cmd
}
