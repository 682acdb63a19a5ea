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

package device

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/internal/wiring"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

func NewDeviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage the local Device Cache",
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	return cmd
}

func newAddCmd() *cobra.Command {
	var (
		family         string
		serial         string
		model          string
		libraryAddress string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a newly discovered device in the Device Cache",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg := config.GetConfig()

			l, err := logger.NewTag(config.NewLoggerConfig(cfg), "device")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
				os.Exit(1)
			}

			sched, err := wiring.NewScheduler(cfg, l)
			if err != nil {
				l.Error("Failed to wire scheduler", "err", err)
				os.Exit(1)
			}

			sched.Cache().AddDevice(ctx, &types.Device{
				Family:         family,
				Serial:         serial,
				Model:          model,
				LibraryAddress: libraryAddress,
				Status:         types.DeviceUnspec,
			})

			fmt.Printf("Added device %s (%s) at %s\n", serial, model, libraryAddress)
		},
	}

	cmd.Flags().StringVar(&family, "family", "tape", "Device family")
	cmd.Flags().StringVar(&serial, "serial", "", "Device serial number")
	cmd.Flags().StringVar(&model, "model", "", "Device model")
	cmd.Flags().StringVar(&libraryAddress, "library-address", "", "Library element address")
	_ = cmd.MarkFlagRequired("serial")
	_ = cmd.MarkFlagRequired("library-address")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List devices currently in the Device Cache",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.GetConfig()

			l, err := logger.NewTag(config.NewLoggerConfig(cfg), "device")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
				os.Exit(1)
			}

			sched, err := wiring.NewScheduler(cfg, l)
			if err != nil {
				l.Error("Failed to wire scheduler", "err", err)
				os.Exit(1)
			}

			for _, d := range sched.Cache().Snapshot() {
				fmt.Printf("%-12s %-8s %-10s %s\n", d.Serial, d.Family, d.Status, d.MountPath)
			}
		},
	}
}
