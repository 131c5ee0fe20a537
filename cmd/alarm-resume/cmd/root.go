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
	// launch reports application creation before the resume.
	launch bool

	// rootCmd represents the entry activity of the host application.
	rootCmd = &cobra.Command{
		Use:   "alarm-resume [control-address]",
		Short: "Report that the application came to the foreground.",
		Long: `Tells the agent the host application is in the foreground, which always
stops the alarm.

With --launch the creation of the application is reported first, and the
agent requests the permissions that are not granted yet in a single batch.`,
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
				Action:         client.ActionResume,
				Launch:         launch,
			}

			return client.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-resume CLI and exits with non-zero status on error.
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
	rootCmd.Flags().BoolVarP(&launch, "launch", "l", false, "report application launch and request permissions")
}
