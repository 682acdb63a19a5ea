package cmd

import (
	"github.com/spf13/cobra"
	"github.com/stratastor/lrs/cmd/config"
	"github.com/stratastor/lrs/cmd/device"
	"github.com/stratastor/lrs/cmd/format"
	"github.com/stratastor/lrs/cmd/iocomplete"
	"github.com/stratastor/lrs/cmd/locate"
	"github.com/stratastor/lrs/cmd/readprepare"
	"github.com/stratastor/lrs/cmd/resourcerelease"
	"github.com/stratastor/lrs/cmd/serve"
	"github.com/stratastor/lrs/cmd/status"
	"github.com/stratastor/lrs/cmd/version"
	"github.com/stratastor/lrs/cmd/writeprepare"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lrsctl",
		Short: "lrsctl: Local Resource Scheduler control and agent",
	}

	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(status.NewStatusCmd())
	rootCmd.AddCommand(config.NewConfigCmd())
	rootCmd.AddCommand(device.NewDeviceCmd())
	rootCmd.AddCommand(writeprepare.NewWritePrepareCmd())
	rootCmd.AddCommand(readprepare.NewReadPrepareCmd())
	rootCmd.AddCommand(format.NewFormatCmd())
	rootCmd.AddCommand(iocomplete.NewIOCompleteCmd())
	rootCmd.AddCommand(resourcerelease.NewResourceReleaseCmd())
	rootCmd.AddCommand(locate.NewLocateCmd())

	return rootCmd
}
