package serve

import (
	"context"
	"fmt"
	"os"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/internal/constants"
	"github.com/stratastor/lrs/internal/managers"
	"github.com/stratastor/lrs/internal/wiring"
	"github.com/stratastor/lrs/pkg/lifecycle"
	"github.com/stratastor/lrs/pkg/lrs/maintenance"
	"github.com/stratastor/lrs/pkg/server"
)

var detached bool

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the lrsd server",
		Run:   runServe,
	}

	cmd.Flags().BoolVarP(&detached, "detach", "d", false, "Run as a daemon")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) {
	rc := config.GetConfig()
	pidFile := constants.LRSPIDFilePath
	// Check for existing instance before proceeding
	if err := lifecycle.EnsureSingleInstance(pidFile); err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}

	if detached {
		ctx := &daemon.Context{
			PidFileName: pidFile,
			PidFilePerm: 0644,
			LogFileName: rc.Logs.Path,
			LogFilePerm: 0640,
			WorkDir:     "/",
			Umask:       027,
			Args:        []string{"lrsd", "serve"},
		}

		d, err := ctx.Reborn()
		if err != nil {
			fmt.Printf("Failed to start daemon: %v\n", err)
			os.Exit(1)
		}

		if d != nil {
			fmt.Println("lrsd is running as a daemon")
			return
		}
		defer ctx.Release()
	}

	startServer()
}

func startServer() {
	cfg := config.GetConfig()

	log, err := logger.NewTag(config.NewLoggerConfig(cfg), "lrs")
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	sched, err := wiring.NewScheduler(cfg, log)
	if err != nil {
		fmt.Printf("Failed to wire scheduler: %v\n", err)
		os.Exit(1)
	}
	managers.SetScheduler(sched)

	upkeep, err := maintenance.New(log, sched, maintenance.DefaultOptions())
	if err != nil {
		fmt.Printf("Failed to create maintenance runner: %v\n", err)
		os.Exit(1)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Register the context canceller
	lifecycle.RegisterContextCanceller(cancel)

	if err := upkeep.Start(ctx); err != nil {
		fmt.Printf("Failed to start maintenance job: %v\n", err)
		os.Exit(1)
	}

	// Register shutdown hook for server cleanup
	lifecycle.RegisterShutdownHook(func() {
		fmt.Println("Shutting down server")
		if err := upkeep.Stop(); err != nil {
			fmt.Printf("Error stopping maintenance job: %v\n", err)
		}
		if err := server.Shutdown(ctx); err != nil {
			fmt.Printf("Error during server shutdown: %v\n", err)
		}
	})

	// Start handling lifecycle signals (e.g., SIGTERM, SIGHUP)
	go lifecycle.HandleSignals(ctx)

	// Start the server
	fmt.Printf("Starting lrsd server on port %d\n", cfg.Server.Port)
	if err := server.Start(ctx, cfg.Server.Port); err != nil {
		fmt.Printf("Failed to start server: %v", err)
	}
}
