package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/order-alarm/internal/config"
	"github.com/oshokin/order-alarm/internal/service/client"
	"github.com/oshokin/order-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string

	// rootCmd reports the host application leaving the foreground.
	rootCmd = &cobra.Command{
		Use:   "alarm-pause [control-address]",
		Short: "Report that the application left the foreground.",
		Long: `Tells the agent the host application went to the background. Until the
next resume every order push rings the alarm, even while the application
process is still running.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var controlAddress string
			if len(args) > 0 {
				controlAddress = args[0]
			}

			return client.Run(ctx, &client.Options{
				ConfigPath:     cfgPath,
				ControlAddress: controlAddress,
				Action:         client.ActionPause,
			})
		},
	}
)

// Execute runs the alarm-pause CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
