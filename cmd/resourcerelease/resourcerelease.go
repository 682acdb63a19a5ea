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

package resourcerelease

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/internal/wiring"
	"github.com/stratastor/lrs/pkg/lrs/ownerid"
)

func NewResourceReleaseCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "resource-release [device-serial]",
		Short: "Release the locks held by the intent on device-serial",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg := config.GetConfig()

			l, err := logger.NewTag(config.NewLoggerConfig(cfg), "resource-release")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
				os.Exit(1)
			}

			sched, err := wiring.NewScheduler(cfg, l)
			if err != nil {
				l.Error("Failed to wire scheduler", "err", err)
				os.Exit(1)
			}

			if owner == "" {
				hostname, hErr := os.Hostname()
				if hErr != nil {
					hostname = "localhost"
				}
				owner = ownerid.New(hostname)
			}

			if err := sched.ResourceRelease(ctx, args[0], owner); err != nil {
				l.Error("resource_release failed", "err", err)
				os.Exit(1)
			}

			fmt.Printf("Released resources for device %s\n", args[0])
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner id that holds the locks (defaults to a fresh local owner id)")
	return cmd
}
