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

	// rootCmd represents the base command for silencing the alarm.
	rootCmd = &cobra.Command{
		Use:   "alarm-stop [control-address]",
		Short: "Silence the ringing alarm.",
		Long: `Asks the agent to stop the alarm sound and remove the alarm notification.

This is the target of the notification's stop action. Stopping an idle alarm
is harmless. The local hostname and username are sent for the audit log.
Control address can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use control address argument if provided, otherwise rely on config.
			var controlAddress string
			if len(args) > 0 {
				controlAddress = args[0]
			}

			options := &client.Options{
				ConfigPath:     cfgPath,
				ControlAddress: controlAddress,
				Action:         client.ActionStop,
			}

			return client.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-stop CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
